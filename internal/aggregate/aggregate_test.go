package aggregate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnt/stablewatch/internal/models"
)

func rec(date, symbol string, supply float64) models.StablecoinRecord {
	return models.StablecoinRecord{
		Date:        date,
		Symbol:      symbol,
		Name:        symbol + " Stablecoin",
		MintAddress: "mint-" + symbol,
		Supply:      supply,
	}
}

func day(n int) string {
	return fmt.Sprintf("2024-01-%02d", n)
}

func TestBuildEmptyInput(t *testing.T) {
	dash := Build(nil)

	require.NotNil(t, dash)
	assert.Empty(t, dash.Raw)
	assert.Empty(t, dash.Stablecoins)
	assert.Empty(t, dash.Dates)
	assert.Equal(t, 0.0, dash.TotalSupply)
	assert.Equal(t, 0.0, dash.TotalVolume)
	assert.Equal(t, 0, dash.TotalTransactions)
	assert.Equal(t, 0.0, dash.SupplyChange7d)
	assert.Equal(t, 0.0, dash.SupplyChange30d)
}

func TestBuildSevenDayChange(t *testing.T) {
	// USDX reports on the first and eighth of eight distinct dates.
	// The 7d anchor is the 8th-from-last distinct date, so the change
	// is measured from day one.
	records := []models.StablecoinRecord{
		rec(day(1), "USDX", 1000),
		rec(day(8), "USDX", 1100),
	}
	// Filler token so every day between exists in the date index.
	for n := 2; n <= 7; n++ {
		records = append(records, rec(day(n), "FILL", 10))
	}

	dash := Build(records)

	require.Len(t, dash.Dates, 8)
	usdx := findToken(t, dash, "USDX")
	assert.InDelta(t, 10.0, usdx.SupplyChange7d, 1e-9)
	assert.Equal(t, day(8), usdx.LatestDate)
	assert.Equal(t, 1100.0, usdx.CurrentSupply)
}

func TestBuildGlobalAndPerTokenRulesDiverge(t *testing.T) {
	// Nine distinct dates: the 7d anchor is dates[1]. Token A has a
	// row exactly on the anchor; token B only has one before it. The
	// global change uses exact-anchor sums, the per-token change uses
	// the <=-anchor fallback, and the two must legitimately differ.
	records := []models.StablecoinRecord{
		rec(day(1), "B", 50),
		rec(day(2), "A", 100),
		rec(day(9), "A", 200),
		rec(day(9), "B", 100),
	}
	for n := 3; n <= 8; n++ {
		records = append(records, rec(day(n), "A", 150))
	}

	dash := Build(records)

	require.Len(t, dash.Dates, 9)

	a := findToken(t, dash, "A")
	b := findToken(t, dash, "B")

	// Per-token: A anchored at 100, B falls back to the 50 row.
	assert.InDelta(t, 100.0, a.SupplyChange7d, 1e-9)
	assert.InDelta(t, 100.0, b.SupplyChange7d, 1e-9)

	// Global: anchor-date sum is A's 100 only; latest sum is 300.
	assert.InDelta(t, 200.0, dash.SupplyChange7d, 1e-9)
}

func TestBuildZeroBaseChangeIsZero(t *testing.T) {
	records := []models.StablecoinRecord{}
	for n := 1; n <= 8; n++ {
		supply := 0.0
		if n == 8 {
			supply = 500
		}
		records = append(records, rec(day(n), "NEW", supply))
	}

	dash := Build(records)

	token := findToken(t, dash, "NEW")
	assert.Equal(t, 0.0, token.SupplyChange7d, "zero anchor supply must read as 0%%, not infinity")
	assert.Equal(t, 0.0, dash.SupplyChange7d)
}

func TestBuildDescendingSupplyOrder(t *testing.T) {
	records := []models.StablecoinRecord{
		rec(day(1), "SMALL", 10),
		rec(day(1), "BIG", 1000),
		rec(day(1), "MID", 100),
	}

	dash := Build(records)

	require.Len(t, dash.Stablecoins, 3)
	for i := 0; i < len(dash.Stablecoins)-1; i++ {
		assert.GreaterOrEqual(t,
			dash.Stablecoins[i].CurrentSupply,
			dash.Stablecoins[i+1].CurrentSupply)
	}
	assert.Equal(t, "BIG", dash.Stablecoins[0].Symbol)
}

func TestBuildTokenMissingLatestDate(t *testing.T) {
	// STALE stopped reporting before the latest date; its summary
	// comes from its chronologically last row.
	records := []models.StablecoinRecord{
		rec(day(1), "STALE", 700),
		rec(day(2), "STALE", 800),
		rec(day(3), "FRESH", 900),
	}

	dash := Build(records)

	stale := findToken(t, dash, "STALE")
	assert.Equal(t, day(2), stale.LatestDate)
	assert.Equal(t, 800.0, stale.CurrentSupply)
}

func TestBuildTotalsSumDerivedValues(t *testing.T) {
	records := []models.StablecoinRecord{
		{Date: day(1), Symbol: "X", MintAddress: "mx", Supply: 100, Volume: 10, Transactions: 5, Holders: 2},
		{Date: day(2), Symbol: "Y", MintAddress: "my", Supply: 200, Volume: 20, Transactions: 7, Holders: 3},
	}

	dash := Build(records)

	// X has no row on the latest date, so its totals come from its own
	// last row, not from a latest-date row.
	assert.Equal(t, 300.0, dash.TotalSupply)
	assert.Equal(t, 30.0, dash.TotalVolume)
	assert.Equal(t, 12, dash.TotalTransactions)
	assert.Equal(t, 5, dash.TotalActiveWallets)
}

func TestBuildGroupKeyFallback(t *testing.T) {
	records := []models.StablecoinRecord{
		{Date: day(1), MintAddress: "mint-only"},
		{Date: day(1), Name: "Named Coin"},
		{Date: day(1)}, // no key at all: dropped
	}

	dash := Build(records)

	assert.Len(t, dash.Stablecoins, 2)
	assert.Len(t, dash.Raw, 3, "raw keeps every record, keyed or not")
}

func TestBuildAnchorCompressionOnReportingGap(t *testing.T) {
	// Only five distinct dates exist, so both anchors clamp to the
	// earliest date with data. Lookback is by sample count, not by
	// calendar day.
	records := []models.StablecoinRecord{}
	for n := 1; n <= 5; n++ {
		records = append(records, rec(day(n*3), "GAP", float64(100+n)))
	}

	dash := Build(records)

	token := findToken(t, dash, "GAP")
	want := ((105.0 - 101.0) / 101.0) * 100
	assert.InDelta(t, want, token.SupplyChange7d, 1e-9)
	assert.InDelta(t, want, token.SupplyChange30d, 1e-9)
}

func findToken(t *testing.T, dash *Dashboard, symbol string) TokenSummary {
	t.Helper()
	for _, token := range dash.Stablecoins {
		if token.Symbol == symbol {
			return token
		}
	}
	t.Fatalf("token %s not found in dashboard", symbol)
	return TokenSummary{}
}
