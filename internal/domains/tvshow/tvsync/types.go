package tvsync

import (
	"context"
	"time"

	"tvshow-catalog/internal/infrastructure/tvmaze"
)

// Source is the upstream catalog
type Source interface {
	FetchShows(ctx context.Context, startPage int) ([]tvmaze.Show, error)
}

// Reader reads the sync state from the local store
type Reader interface {
	// LatestSyncedOriginID returns the highest origin id written by a previous sync, 0 if none
	LatestSyncedOriginID(ctx context.Context) (int64, error)

	// ExistingShows returns the (name, premiere date) keys already stored for the given names
	ExistingShows(ctx context.Context, names []string) (map[ShowKey]struct{}, error)
}

// Writer persists a batch of synced shows atomically
type Writer interface {
	Write(ctx context.Context, latestOriginID int64, shows []PreparedShow) (WriteResult, error)
}

// PagePurger drops cached listing pages after the catalog changed
type PagePurger interface {
	Purge(ctx context.Context) error
}

// ShowKey identifies a show for duplicate detection
type ShowKey struct {
	Name      string
	Premiered string // yyyy-MM-dd
}

// PreparedShow is an upstream show that passed filtering, ready to be written
type PreparedShow struct {
	OriginID    int64
	Name        string
	PremieredOn time.Time
	Genres      []string
}

type WriteResult struct {
	ShowsAdded  int64
	LinksAdded  int64
	GenresAdded int64
}

// Result summarizes one sync run
type Result struct {
	LatestOriginID int64 `json:"latest_origin_id"`
	StartPage      int   `json:"start_page"`
	Fetched        int   `json:"fetched"`
	Candidates     int   `json:"candidates"`
	ShowsAdded     int64 `json:"shows_added"`
	LinksAdded     int64 `json:"links_added"`
	GenresAdded    int64 `json:"genres_added"`
}
