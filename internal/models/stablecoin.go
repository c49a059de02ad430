package models

import (
	"time"
)

// StablecoinRecord is one normalized (date, mint) observation of a
// stablecoin's daily usage on Solana. The (Date, MintAddress) pair is
// unique; re-ingesting the same pair replaces the earlier row.
type StablecoinRecord struct {
	ID uint `gorm:"primaryKey" json:"-"`

	// Date is the calendar day in ISO-8601 date-only form (no time part).
	Date        string `gorm:"size:10;not null;uniqueIndex:idx_date_mint;index" json:"date"`
	MintAddress string `gorm:"size:44;not null;uniqueIndex:idx_date_mint;index" json:"mint_address"`

	// Name is the raw display name as reported by the analytics source.
	// It may embed the symbol as its first word.
	Name     string `gorm:"index" json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `gorm:"default:6" json:"decimals"`

	Holders      int     `gorm:"default:0" json:"daily_active_wallets"`
	Transactions int     `gorm:"default:0" json:"daily_transactions"`
	Volume       float64 `gorm:"default:0" json:"daily_transfer_volume"`
	P2PVolume    float64 `gorm:"column:p2p_volume;default:0" json:"p2p_volume"`

	// Supply is the circulating supply in UI units. It starts at 0 and
	// is overwritten by the on-chain enrichment pass.
	Supply float64 `gorm:"default:0" json:"daily_supply"`

	CreatedAt time.Time `json:"-"`
}

// GroupKey identifies the token a record belongs to when folding rows
// into per-token histories. Symbol wins, then name, then mint address.
// Empty means the record cannot be keyed and is dropped.
func (r StablecoinRecord) GroupKey() string {
	if r.Symbol != "" {
		return r.Symbol
	}
	if r.Name != "" {
		return r.Name
	}
	return r.MintAddress
}

// DataUpdate is one append-only audit entry recording an ingestion batch.
type DataUpdate struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	LastUpdate     time.Time `gorm:"autoCreateTime;index" json:"last_update"`
	RecordsUpdated int       `gorm:"default:0" json:"records_updated"`
	Status         string    `gorm:"size:20;default:success" json:"status"`
}
