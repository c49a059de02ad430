// Package aggregate folds stored stablecoin records into the
// query-ready dashboard model: per-token summaries, global totals and
// a date index.
package aggregate

import (
	"sort"

	"github.com/wnt/stablewatch/internal/models"
	"github.com/wnt/stablewatch/internal/utils"
)

// TokenSummary is the derived state of one stablecoin as of the most
// recent reporting date. It is rebuilt on every aggregation pass and
// never mutated afterwards.
type TokenSummary struct {
	Name               string                    `json:"name"`
	Symbol             string                    `json:"symbol"`
	MintAddress        string                    `json:"mint_address"`
	CurrentSupply      float64                   `json:"current_supply"`
	SupplyChange7d     float64                   `json:"supply_change_7d"`
	SupplyChange30d    float64                   `json:"supply_change_30d"`
	DailyVolume        float64                   `json:"daily_volume"`
	DailyTransactions  int                       `json:"daily_transactions"`
	DailyActiveWallets int                       `json:"daily_active_wallets"`
	LatestDate         string                    `json:"latest_date"`
	History            []models.StablecoinRecord `json:"history"`
}

// Dashboard is the aggregate served to the dashboard client. Tokens
// are ordered by descending current supply; ranking views rely on it.
type Dashboard struct {
	Raw                []models.StablecoinRecord `json:"raw"`
	Stablecoins        []TokenSummary            `json:"stablecoins"`
	TotalSupply        float64                   `json:"totalSupply"`
	TotalVolume        float64                   `json:"totalVolume"`
	TotalTransactions  int                       `json:"totalTransactions"`
	TotalActiveWallets int                       `json:"totalActiveWallets"`
	SupplyChange7d     float64                   `json:"supplyChange7d"`
	SupplyChange30d    float64                   `json:"supplyChange30d"`
	Dates              []string                  `json:"dates"`
}

// Build computes a Dashboard from a set of records. Empty input yields
// a zeroed Dashboard, never an error.
func Build(records []models.StablecoinRecord) *Dashboard {
	dash := &Dashboard{
		Raw:         []models.StablecoinRecord{},
		Stablecoins: []TokenSummary{},
		Dates:       []string{},
	}
	if len(records) == 0 {
		return dash
	}

	sorted := make([]models.StablecoinRecord, len(records))
	copy(sorted, records)
	// ISO dates compare lexicographically; stable sort keeps the input
	// order of same-date rows.
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	dash.Raw = sorted

	dash.Dates = distinctDates(sorted)
	latestDate := dash.Dates[len(dash.Dates)-1]

	// Anchors pick the 8th- and 31st-from-last distinct dates with
	// data, not literal calendar offsets: a reporting gap compresses
	// the lookback window. Kept as-is; changing it would rewrite all
	// historical percentage figures.
	anchor7d := dash.Dates[max(0, len(dash.Dates)-8)]
	anchor30d := dash.Dates[max(0, len(dash.Dates)-31)]

	groups, order := groupByToken(sorted)

	for _, key := range order {
		history := groups[key]

		latestRow := findLast(history, func(r models.StablecoinRecord) bool {
			return r.Date == latestDate
		})
		if latestRow == nil {
			latestRow = &history[len(history)-1]
		}

		currentSupply := latestRow.Supply

		summary := TokenSummary{
			Name:               coalesce(latestRow.Name, latestRow.Symbol),
			Symbol:             coalesce(latestRow.Symbol, latestRow.Name),
			MintAddress:        latestRow.MintAddress,
			CurrentSupply:      currentSupply,
			SupplyChange7d:     pctChange(currentSupply, anchorSupply(history, anchor7d, currentSupply)),
			SupplyChange30d:    pctChange(currentSupply, anchorSupply(history, anchor30d, currentSupply)),
			DailyVolume:        latestRow.Volume,
			DailyTransactions:  latestRow.Transactions,
			DailyActiveWallets: latestRow.Holders,
			LatestDate:         latestRow.Date,
			History:            history,
		}
		dash.Stablecoins = append(dash.Stablecoins, summary)
	}

	sort.SliceStable(dash.Stablecoins, func(i, j int) bool {
		return dash.Stablecoins[i].CurrentSupply > dash.Stablecoins[j].CurrentSupply
	})

	// Global totals sum per-token derived values, not raw per-day
	// rows: with uneven reporting cadences each token's "current" row
	// can come from a different date.
	for _, coin := range dash.Stablecoins {
		dash.TotalSupply += coin.CurrentSupply
		dash.TotalVolume += coin.DailyVolume
		dash.TotalTransactions += coin.DailyTransactions
		dash.TotalActiveWallets += coin.DailyActiveWallets
	}

	// The global change windows use exact-anchor-date sums. This is a
	// stricter rule than the per-token <=-anchor fallback above and
	// the two must stay distinct.
	latestSum := supplyOn(sorted, latestDate)
	dash.SupplyChange7d = pctChange(latestSum, supplyOn(sorted, anchor7d))
	dash.SupplyChange30d = pctChange(latestSum, supplyOn(sorted, anchor30d))

	return dash
}

// distinctDates returns the sorted unique dates present in the
// already-sorted record set.
func distinctDates(sorted []models.StablecoinRecord) []string {
	dates := make([]string, 0, len(sorted))
	for _, r := range sorted {
		if len(dates) == 0 || dates[len(dates)-1] != r.Date {
			dates = append(dates, r.Date)
		}
	}
	return dates
}

// groupByToken folds records into per-token histories. The grouping
// key prefers symbol, then name, then mint address; records with none
// of the three cannot be keyed and are dropped.
func groupByToken(sorted []models.StablecoinRecord) (map[string][]models.StablecoinRecord, []string) {
	groups := make(map[string][]models.StablecoinRecord)
	var order []string
	for _, r := range sorted {
		key := r.GroupKey()
		if key == "" {
			continue
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}
	return groups, order
}

// anchorSupply finds the supply of the last record on or before the
// anchor date. Tokens reporting sparser than the global date set still
// get a reference value; a token with no record that early falls back
// to its current supply, which reads as a 0% change.
func anchorSupply(history []models.StablecoinRecord, anchor string, current float64) float64 {
	row := findLast(history, func(r models.StablecoinRecord) bool {
		return r.Date <= anchor
	})
	if row == nil {
		return current
	}
	return row.Supply
}

// supplyOn sums the supply of every record on exactly the given date.
func supplyOn(sorted []models.StablecoinRecord, date string) float64 {
	var sum float64
	for _, r := range utils.Filter(sorted, func(r models.StablecoinRecord) bool {
		return r.Date == date
	}) {
		sum += r.Supply
	}
	return sum
}

// pctChange computes percent change against a past value, defined as
// exactly 0 when the past value is not positive. A zero base must not
// read as infinite growth.
func pctChange(current, past float64) float64 {
	if past <= 0 {
		return 0
	}
	return ((current - past) / past) * 100
}

func findLast(records []models.StablecoinRecord, match func(models.StablecoinRecord) bool) *models.StablecoinRecord {
	for i := len(records) - 1; i >= 0; i-- {
		if match(records[i]) {
			return &records[i]
		}
	}
	return nil
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
