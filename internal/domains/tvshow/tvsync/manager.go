package tvsync

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/infrastructure/tvmaze"
)

var ErrSyncStateMismatch = errors.New("sync state mismatch")

// Manager runs one catalog sync: read state, fetch, filter, write, purge pages.
type Manager struct {
	reader Reader
	source Source
	writer Writer
	pages  PagePurger
	filter Filter
	logger zerolog.Logger
}

func NewManager(reader Reader, source Source, writer Writer, pages PagePurger, filter Filter) *Manager {
	return &Manager{
		reader: reader,
		source: source,
		writer: writer,
		pages:  pages,
		filter: filter,
		logger: log.With().Str("component", "catalog_sync").Logger(),
	}
}

// StartPage is the TVMaze page expected to hold latestOriginID.
// Half-way values round to even.
func StartPage(latestOriginID int64) int {
	return int(math.RoundToEven(float64(latestOriginID) / tvmaze.PageSize))
}

func (m *Manager) Sync(ctx context.Context) (Result, error) {
	var result Result

	// ═══════════════════════════════════════════════════════════
	// STEP 1: WHERE DID THE LAST SYNC STOP
	// ═══════════════════════════════════════════════════════════
	latest, err := m.reader.LatestSyncedOriginID(ctx)
	if err != nil {
		return result, fmt.Errorf("sync aborted: %w", err)
	}
	result.LatestOriginID = latest
	result.StartPage = StartPage(latest)

	m.logger.Info().
		Int64("latest_origin_id", latest).
		Int("start_page", result.StartPage).
		Msg("Starting catalog sync")

	// ═══════════════════════════════════════════════════════════
	// STEP 2: FETCH + FILTER
	// ═══════════════════════════════════════════════════════════
	fetched, err := m.source.FetchShows(ctx, result.StartPage)
	if err != nil {
		return result, fmt.Errorf("sync aborted: %w", err)
	}
	result.Fetched = len(fetched)
	if len(fetched) == 0 {
		m.logger.Info().Msg("No new tv shows upstream")
		return result, nil
	}

	candidates := m.filter.ByPremiere(fetched)
	if dropped := len(fetched) - len(candidates); dropped > 0 {
		m.logger.Info().
			Int("dropped", dropped).
			Time("earliest_premiere", m.filter.EarliestPremiere).
			Msg("Filtered shows premiered before the earliest premiere date")
	}

	existing, err := m.reader.ExistingShows(ctx, names(candidates))
	if err != nil {
		return result, fmt.Errorf("sync aborted: %w", err)
	}

	before := len(candidates)
	candidates = m.filter.WithoutExisting(candidates, existing)
	if dropped := before - len(candidates); dropped > 0 {
		m.logger.Info().Int("dropped", dropped).Msg("Filtered shows that already exist")
	}

	prepared := Prepare(candidates)
	result.Candidates = len(prepared)
	if len(prepared) == 0 {
		return result, nil
	}

	// ═══════════════════════════════════════════════════════════
	// STEP 3: WRITE (single transaction)
	// ═══════════════════════════════════════════════════════════
	written, err := m.writer.Write(ctx, latest, prepared)
	if err != nil {
		return result, fmt.Errorf("sync write failed: %w", err)
	}
	result.ShowsAdded = written.ShowsAdded
	result.LinksAdded = written.LinksAdded
	result.GenresAdded = written.GenresAdded

	// ═══════════════════════════════════════════════════════════
	// STEP 4: CACHED PAGES ARE NOW STALE
	// ═══════════════════════════════════════════════════════════
	if m.pages != nil {
		if err := m.pages.Purge(ctx); err != nil {
			m.logger.Warn().Err(err).Msg("Failed to purge page cache after sync")
		}
	}

	m.logger.Info().
		Int64("shows_added", result.ShowsAdded).
		Int64("links_added", result.LinksAdded).
		Int64("genres_added", result.GenresAdded).
		Msg("Catalog sync completed")

	return result, nil
}
