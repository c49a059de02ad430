// Package store provides durable keyed storage of stablecoin records.
// Rows are keyed by (date, mint_address); upserts are idempotent and
// every ingestion batch leaves one audit entry behind.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wnt/stablewatch/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store wraps the database for stablecoin record access
type Store struct {
	db *gorm.DB
}

// Mint is one distinct token known to the store
type Mint struct {
	MintAddress string
	Name        string
}

// New creates a Store on top of an open database
func New(db *gorm.DB) (*Store, error) {
	if db == nil {
		return nil, errors.New("database connection is required")
	}
	return &Store{db: db}, nil
}

// upsertColumns are the columns replaced when an ingested row collides
// with an existing (date, mint_address) key.
var upsertColumns = []string{
	"name", "symbol", "decimals", "holders", "transactions",
	"volume", "p2p_volume", "supply",
}

// UpsertMany writes a batch of records in a single transaction,
// replacing any existing row with the same (date, mint_address) key,
// and appends one audit entry for the batch. Either the whole batch
// and its audit row commit, or nothing does.
func (s *Store) UpsertMany(ctx context.Context, records []models.StablecoinRecord) error {
	if len(records) == 0 {
		return nil
	}

	// Within one batch the last occurrence of a key wins, mirroring
	// the replace semantics across batches.
	records = dedupeByKey(records)

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "mint_address"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).CreateInBatches(records, 500).Error; err != nil {
			return fmt.Errorf("failed to upsert records: %w", err)
		}

		audit := models.DataUpdate{
			RecordsUpdated: len(records),
			Status:         "success",
		}
		if err := tx.Create(&audit).Error; err != nil {
			return fmt.Errorf("failed to record data update: %w", err)
		}

		return nil
	})
}

// ReadAll returns every stored record ordered by date then name
func (s *Store) ReadAll(ctx context.Context) ([]models.StablecoinRecord, error) {
	var records []models.StablecoinRecord
	if err := s.db.WithContext(ctx).
		Order("date ASC, name ASC").
		Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// DistinctMints returns the unique tokens currently stored, ordered by name
func (s *Store) DistinctMints(ctx context.Context) ([]Mint, error) {
	var mints []Mint
	if err := s.db.WithContext(ctx).
		Model(&models.StablecoinRecord{}).
		Distinct("mint_address", "name").
		Order("name ASC").
		Find(&mints).Error; err != nil {
		return nil, fmt.Errorf("failed to read distinct mints: %w", err)
	}
	return mints, nil
}

// UpdateSupply overwrites the supply field on every stored record for
// the given mint, across all dates. Supply enrichment is a
// cross-sectional overwrite, not a new row: historical rows always
// carry the most recent on-chain reading.
func (s *Store) UpdateSupply(ctx context.Context, mintAddress string, supply float64) error {
	if err := s.db.WithContext(ctx).
		Model(&models.StablecoinRecord{}).
		Where("mint_address = ?", mintAddress).
		Update("supply", supply).Error; err != nil {
		return fmt.Errorf("failed to update supply for %s: %w", mintAddress, err)
	}
	return nil
}

// UpdateSupplies applies a batch of supply overwrites in one transaction
func (s *Store) UpdateSupplies(ctx context.Context, supplies map[string]float64) error {
	if len(supplies) == 0 {
		return nil
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for mintAddress, supply := range supplies {
			if err := tx.Model(&models.StablecoinRecord{}).
				Where("mint_address = ?", mintAddress).
				Update("supply", supply).Error; err != nil {
				return fmt.Errorf("failed to update supply for %s: %w", mintAddress, err)
			}
		}
		return nil
	})
}

// LastUpdateTime returns the timestamp of the most recent ingestion,
// or nil if no ingestion has ever happened.
func (s *Store) LastUpdateTime(ctx context.Context) (*time.Time, error) {
	var update models.DataUpdate
	err := s.db.WithContext(ctx).
		Order("id DESC").
		First(&update).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last update time: %w", err)
	}
	return &update.LastUpdate, nil
}

// dedupeByKey keeps the last record per (date, mint_address) while
// preserving first-seen order of the surviving keys.
func dedupeByKey(records []models.StablecoinRecord) []models.StablecoinRecord {
	type key struct {
		date string
		mint string
	}

	index := make(map[key]int, len(records))
	deduped := make([]models.StablecoinRecord, 0, len(records))
	for _, rec := range records {
		k := key{date: rec.Date, mint: rec.MintAddress}
		if i, seen := index[k]; seen {
			deduped[i] = rec
			continue
		}
		index[k] = len(deduped)
		deduped = append(deduped, rec)
	}
	return deduped
}
