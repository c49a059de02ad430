// Package normalize maps loosely-shaped analytics rows onto the
// canonical stablecoin record. External field names are not
// contractually fixed, so every canonical field carries an ordered
// list of accepted aliases and the first match wins.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/wnt/stablewatch/internal/models"
)

// Ordered alias lists per canonical field. Order is priority: the
// earliest alias present in a row is the one used, regardless of the
// row's own key order.
var (
	dateAliases     = []string{"date", "dt", "day", "block_date", "period"}
	mintAliases     = []string{"mint_address", "mint", "token_mint", "token_address", "address"}
	nameAliases     = []string{"name", "token_name", "stablecoin_name", "stablecoin", "mint_name"}
	symbolAliases   = []string{"symbol", "token_symbol", "ticker"}
	decimalsAliases = []string{"decimals", "decimal"}
	supplyAliases   = []string{
		"supply", "daily_supply", "total_supply", "circulating_supply", "market_cap",
		"daily_circulating_supply", "current_supply",
	}
	volumeAliases = []string{
		"daily_transfer_volume", "transfer_volume", "volume", "daily_volume",
		"total_volume", "usd_volume",
	}
	txAliases = []string{
		"daily_transactions", "transactions", "tx_count", "num_transactions",
		"daily_txns", "txns", "total_transactions", "num_txns", "fee_payer",
	}
	walletsAliases = []string{
		"daily_active_wallets", "active_wallets", "unique_wallets", "active_addresses",
		"daily_active_addresses", "wallets", "unique_addresses", "holders",
	}
	p2pVolumeAliases = []string{"p2p_volume", "p2p_vol"}
)

const defaultDecimals = 6

// Normalize converts one externally-sourced row into a canonical
// record. It never fails: unresolvable fields degrade to zeroed or
// empty defaults so a single odd row cannot reject a batch.
func Normalize(row map[string]any) models.StablecoinRecord {
	lowered := lowerKeys(row)

	name := asString(lookup(lowered, nameAliases))

	symbol := asString(lookup(lowered, symbolAliases))
	if symbol == "" {
		// The analytics source often packs the symbol into the first
		// word of the display name, e.g. "USDC (Circle)".
		symbol = firstWord(name)
	}

	rec := models.StablecoinRecord{
		Date:         truncateDate(asString(lookup(lowered, dateAliases))),
		MintAddress:  asString(lookup(lowered, mintAliases)),
		Name:         name,
		Symbol:       symbol,
		Decimals:     defaultDecimals,
		Supply:       asFloat(lookup(lowered, supplyAliases)),
		Volume:       asFloat(lookup(lowered, volumeAliases)),
		P2PVolume:    asFloat(lookup(lowered, p2pVolumeAliases)),
		Transactions: asInt(lookup(lowered, txAliases)),
		Holders:      asInt(lookup(lowered, walletsAliases)),
	}

	if v, ok := lookupOK(lowered, decimalsAliases); ok {
		rec.Decimals = asInt(v)
	}

	return rec
}

// NormalizeAll converts a batch of rows.
func NormalizeAll(rows []map[string]any) []models.StablecoinRecord {
	records := make([]models.StablecoinRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, Normalize(row))
	}
	return records
}

// lowerKeys rebuilds the row with lower-cased keys so alias matching
// is case-insensitive.
func lowerKeys(row map[string]any) map[string]any {
	lowered := make(map[string]any, len(row))
	for k, v := range row {
		lk := strings.ToLower(k)
		if _, exists := lowered[lk]; !exists {
			lowered[lk] = v
		}
	}
	return lowered
}

// lookup returns the value of the first alias present in the row, or
// nil when none match.
func lookup(lowered map[string]any, aliases []string) any {
	v, _ := lookupOK(lowered, aliases)
	return v
}

func lookupOK(lowered map[string]any, aliases []string) (any, bool) {
	for _, alias := range aliases {
		if v, ok := lowered[alias]; ok {
			return v, true
		}
	}
	return nil, false
}

// truncateDate strips the time-of-day portion of a timestamp string.
// This is deliberately a string cut at the first 'T', not a full
// date-time parse.
func truncateDate(s string) string {
	if i := strings.IndexByte(s, 'T'); i >= 0 {
		return s[:i]
	}
	return s
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	return fields[0]
}

func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	default:
		return ""
	}
}

// asFloat coerces a scalar to float64. Anything non-numeric becomes 0
// so downstream arithmetic never sees NaN or a missing value.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return sanitize(n)
	case float32:
		return sanitize(float64(n))
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return sanitize(f)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return sanitize(f)
	default:
		return 0
	}
}

func asInt(v any) int {
	return int(asFloat(v))
}

// sanitize zeroes NaN so downstream arithmetic stays well-defined.
func sanitize(f float64) float64 {
	if f != f {
		return 0
	}
	return f
}
