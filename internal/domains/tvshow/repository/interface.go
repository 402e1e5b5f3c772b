package repository

import (
	"context"

	"tvshow-catalog/internal/domains/tvshow/model"
)

// ShowRepository is the data access contract for shows.
// Every show returned carries its current IndexPosition; genre links are not loaded.
type ShowRepository interface {
	// Create inserts a show and returns it with its id and index position
	Create(ctx context.Context, show *model.Show) (*model.Show, error)

	// CreateMany inserts shows and the genre links set on them (ShowGenre.GenreID)
	// in one transaction. Returns the new ids in input order.
	CreateMany(ctx context.Context, shows []model.Show) ([]int64, error)

	// GetByID returns model.ErrShowNotFound when the id does not exist
	GetByID(ctx context.Context, id int64) (*model.Show, error)

	// Query returns the shows matching filter, ordered by index position
	Query(ctx context.Context, filter model.ShowFilter) ([]model.Show, error)

	// Update persists name and premiere date and returns the show with its new index position.
	// Errors: model.ErrShowNotFound
	Update(ctx context.Context, show *model.Show) (*model.Show, error)

	// Delete removes the show and its genre links in one transaction.
	// Errors: model.ErrShowNotFound, in which case nothing is deleted
	Delete(ctx context.Context, id int64) error
}

// GenreRepository is the data access contract for genres.
type GenreRepository interface {
	// FindByNames returns the genres whose name is in names (exact, case-sensitive)
	FindByNames(ctx context.Context, names []string) ([]model.Genre, error)

	// CreateIfNotExists inserts the names that are not stored yet.
	// Returns the number of rows actually inserted.
	CreateIfNotExists(ctx context.Context, names []string) (int64, error)
}

// ShowGenreRepository is the data access contract for show-genre links.
type ShowGenreRepository interface {
	// ListByShows returns the links of every show in showIDs, with Genre loaded, keyed by show id
	ListByShows(ctx context.Context, showIDs []int64) (map[int64][]model.ShowGenre, error)

	// AddLinks links showID to every genre in genreIDs in one batch; existing links are kept
	AddLinks(ctx context.Context, showID int64, genreIDs []int64) error

	// ReplaceLinks adds and removes links of showID in one transaction
	ReplaceLinks(ctx context.Context, showID int64, addGenreIDs, removeGenreIDs []int64) error
}
