// Package enrich overwrites stored supply figures with authoritative
// on-chain readings.
package enrich

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnt/stablewatch/internal/metrics"
	"github.com/wnt/stablewatch/internal/store"
)

// SupplySource reads the current circulating supply of a token mint
type SupplySource interface {
	TokenSupply(ctx context.Context, mintAddress string) (float64, error)
}

// Enricher walks every known mint and writes its on-chain supply back
// to the store
type Enricher struct {
	store  *store.Store
	source SupplySource
	delay  time.Duration
	logger zerolog.Logger
}

// New creates a new supply enricher. The delay is the pause between
// consecutive RPC calls.
func New(st *store.Store, source SupplySource, delay time.Duration, logger zerolog.Logger) *Enricher {
	return &Enricher{
		store:  st,
		source: source,
		delay:  delay,
		logger: logger.With().Str("component", "enrich").Logger(),
	}
}

// Run fetches the supply of every distinct mint and applies the whole
// batch in one transaction. Calls are strictly sequential with an
// inter-call delay to respect the RPC provider's rate limits; do not
// parallelize without re-deriving a safe bound from those limits.
// A failed read degrades that mint's supply to 0 and the walk
// continues. Returns the number of mints updated.
func (e *Enricher) Run(ctx context.Context) (int, error) {
	mints, err := e.store.DistinctMints(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list mints: %w", err)
	}

	if len(mints) == 0 {
		e.logger.Info().Msg("No mints to enrich")
		return 0, nil
	}

	e.logger.Info().Int("mints", len(mints)).Msg("Fetching on-chain supply data")

	supplies := make(map[string]float64, len(mints))
	for i, mint := range mints {
		supply, err := e.source.TokenSupply(ctx, mint.MintAddress)
		if err != nil {
			e.logger.Warn().
				Err(err).
				Str("mint", mint.MintAddress).
				Str("name", mint.Name).
				Msg("Supply fetch failed, recording zero")
			metrics.RecordSupplyFetch("failed")
			supply = 0
		} else {
			metrics.RecordSupplyFetch("success")
			e.logger.Debug().
				Str("mint", mint.MintAddress).
				Float64("supply", supply).
				Msg("Fetched token supply")
		}
		supplies[mint.MintAddress] = supply

		if i < len(mints)-1 {
			select {
			case <-ctx.Done():
				return 0, ctx.Err()
			case <-time.After(e.delay):
			}
		}
	}

	if err := e.store.UpdateSupplies(ctx, supplies); err != nil {
		return 0, fmt.Errorf("failed to apply supply updates: %w", err)
	}

	e.logger.Info().Int("updated", len(supplies)).Msg("Supply enrichment complete")
	return len(supplies), nil
}
