// Package updater drives the end-to-end refresh: fetch analytics
// rows, normalize, persist, then enrich supply from chain.
package updater

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnt/stablewatch/internal/enrich"
	"github.com/wnt/stablewatch/internal/metrics"
	"github.com/wnt/stablewatch/internal/models"
	"github.com/wnt/stablewatch/internal/normalize"
	"github.com/wnt/stablewatch/internal/store"
)

// RowSource fetches raw analytics rows
type RowSource interface {
	FetchRows(ctx context.Context) ([]map[string]any, error)
}

// Updater orchestrates one refresh run
type Updater struct {
	store    *store.Store
	source   RowSource
	enricher *enrich.Enricher
	logger   zerolog.Logger
}

// New creates a new updater. The enricher may be nil when supply
// enrichment is handled elsewhere.
func New(st *store.Store, source RowSource, enricher *enrich.Enricher, logger zerolog.Logger) *Updater {
	return &Updater{
		store:    st,
		source:   source,
		enricher: enricher,
		logger:   logger.With().Str("component", "updater").Logger(),
	}
}

// Run performs one refresh: fetch, normalize, upsert, then optionally
// enrich supply. A source returning zero rows is a normal no-op, not
// an error. A transport failure fails the whole run; nothing is
// committed in that case because the upsert batch is one transaction.
func (u *Updater) Run(ctx context.Context, includeSupply bool) error {
	start := time.Now()
	defer func() {
		metrics.UpdateDurationSeconds.Observe(time.Since(start).Seconds())
	}()

	u.logger.Info().Msg("Fetching data from analytics API")

	rows, err := u.source.FetchRows(ctx)
	if err != nil {
		metrics.RecordUpdateRun("failed")
		return fmt.Errorf("fetch failed: %w", err)
	}

	if len(rows) == 0 {
		u.logger.Warn().Msg("No data received from API")
		metrics.RecordUpdateRun("empty")
		return nil
	}

	u.logger.Info().Int("rows", len(rows)).Msg("Processing rows")

	records := normalize.NormalizeAll(rows)

	if err := u.store.UpsertMany(ctx, records); err != nil {
		metrics.RecordUpdateRun("failed")
		return fmt.Errorf("upsert failed: %w", err)
	}
	metrics.RecordsUpserted.Add(float64(len(records)))

	u.logRange(records)

	if includeSupply && u.enricher != nil {
		if _, err := u.enricher.Run(ctx); err != nil {
			metrics.RecordUpdateRun("failed")
			return fmt.Errorf("supply enrichment failed: %w", err)
		}
	}

	metrics.RecordUpdateRun("success")
	return nil
}

func (u *Updater) logRange(records []models.StablecoinRecord) {
	first, last := records[0].Date, records[0].Date
	tokens := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.Date < first {
			first = r.Date
		}
		if r.Date > last {
			last = r.Date
		}
		tokens[r.GroupKey()] = struct{}{}
	}

	u.logger.Info().
		Int("records", len(records)).
		Str("from", first).
		Str("to", last).
		Int("tokens", len(tokens)).
		Msg("Successfully updated records")
}
