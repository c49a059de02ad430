package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeKnownSourceShape(t *testing.T) {
	// The shape the analytics source actually returns today.
	row := map[string]any{
		"block_date": "2024-01-15T00:00:00Z",
		"mint":       "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
		"mint_name":  "USDC (Circle)",
		"holders":    float64(120000),
		"volume":     float64(1500000.5),
		"p2p_volume": float64(42000),
		"fee_payer":  float64(88000),
	}

	rec := Normalize(row)

	assert.Equal(t, "2024-01-15", rec.Date)
	assert.Equal(t, "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", rec.MintAddress)
	assert.Equal(t, "USDC (Circle)", rec.Name)
	assert.Equal(t, "USDC", rec.Symbol, "symbol derives from first word of name")
	assert.Equal(t, 6, rec.Decimals)
	assert.Equal(t, 120000, rec.Holders)
	assert.Equal(t, 88000, rec.Transactions)
	assert.Equal(t, 1500000.5, rec.Volume)
	assert.Equal(t, 42000.0, rec.P2PVolume)
	assert.Equal(t, 0.0, rec.Supply, "supply stays zero until enrichment")
}

func TestNormalizeAliasPriority(t *testing.T) {
	// Both supply aliases present: the one earlier in the priority
	// list must win, regardless of map iteration order.
	row := map[string]any{
		"daily_supply": float64(999),
		"supply":       float64(1234),
		"date":         "2024-02-01",
		"symbol":       "USDT",
	}

	for i := 0; i < 50; i++ {
		rec := Normalize(row)
		assert.Equal(t, 1234.0, rec.Supply)
	}
}

func TestNormalizeCaseInsensitiveKeys(t *testing.T) {
	row := map[string]any{
		"Date":         "2024-03-01T12:30:00Z",
		"MINT_ADDRESS": "So11111111111111111111111111111111111111112",
		"Symbol":       "WSOL",
		"Total_Supply": float64(5),
	}

	rec := Normalize(row)

	assert.Equal(t, "2024-03-01", rec.Date)
	assert.Equal(t, "So11111111111111111111111111111111111111112", rec.MintAddress)
	assert.Equal(t, "WSOL", rec.Symbol)
	assert.Equal(t, 5.0, rec.Supply)
}

func TestNormalizeDefaults(t *testing.T) {
	rec := Normalize(map[string]any{})

	assert.Equal(t, "", rec.Date)
	assert.Equal(t, "", rec.MintAddress)
	assert.Equal(t, "", rec.Name)
	assert.Equal(t, "", rec.Symbol)
	assert.Equal(t, 6, rec.Decimals)
	assert.Equal(t, 0.0, rec.Supply)
	assert.Equal(t, 0.0, rec.Volume)
	assert.Equal(t, 0, rec.Transactions)
	assert.Equal(t, 0, rec.Holders)
}

func TestNormalizeCoercion(t *testing.T) {
	tests := []struct {
		name   string
		row    map[string]any
		supply float64
	}{
		{"string number", map[string]any{"supply": "123.5"}, 123.5},
		{"integer", map[string]any{"supply": 42}, 42},
		{"garbage string", map[string]any{"supply": "n/a"}, 0},
		{"nil value", map[string]any{"supply": nil}, 0},
		{"bool value", map[string]any{"supply": true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := Normalize(tt.row)
			assert.Equal(t, tt.supply, rec.Supply)
		})
	}
}

func TestNormalizeExplicitSymbolWins(t *testing.T) {
	row := map[string]any{
		"mint_name": "Tether USD",
		"ticker":    "USDT",
	}

	rec := Normalize(row)
	assert.Equal(t, "USDT", rec.Symbol)
	assert.Equal(t, "Tether USD", rec.Name)
}

func TestNormalizeDecimalsAlias(t *testing.T) {
	rec := Normalize(map[string]any{"decimal": float64(9)})
	assert.Equal(t, 9, rec.Decimals)
}

func TestNormalizeAll(t *testing.T) {
	rows := []map[string]any{
		{"date": "2024-01-01", "symbol": "USDC"},
		{"date": "2024-01-02", "symbol": "USDT"},
	}

	records := NormalizeAll(rows)
	assert.Len(t, records, 2)
	assert.Equal(t, "USDC", records[0].Symbol)
	assert.Equal(t, "USDT", records[1].Symbol)
}
