package service

import (
	"context"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/pkg/pagination"
)

// ServiceInterface is the data controller for TV shows
type ServiceInterface interface {
	// Add creates a show with its genres. Unknown genre names are created.
	Add(ctx context.Context, view model.ShowView) (*model.ShowView, error)

	// AddMany creates several shows in one transaction and returns how many were added
	AddMany(ctx context.Context, views []model.ShowView) (int, error)

	// Get returns model.ErrShowNotFound when id does not exist
	Get(ctx context.Context, id int64) (*model.ShowView, error)

	// GetPage returns page pageNumber (1-based) of all shows, most recent premiere first
	GetPage(ctx context.Context, pageNumber int) (*pagination.Page[model.ShowView], error)

	// Update applies the fields present in view. Genres nil: links untouched,
	// Genres empty: every link removed.
	Update(ctx context.Context, id int64, view model.ShowView) (*model.ShowView, error)

	// Delete removes a show and its genre links
	Delete(ctx context.Context, id int64) error

	Query(ctx context.Context, filter model.ShowFilter) ([]model.ShowView, error)
}

// PageCache is the slice of pagination.PageCollection the service uses
type PageCache interface {
	MaxPageSize() int
	GetOrCachePage(ctx context.Context, pageNumber int, factory pagination.PageFactory[model.ShowView]) (*pagination.Page[model.ShowView], error)
	RefreshIndexed(ctx context.Context, item pagination.Indexable) pagination.RefreshResult
	Purge(ctx context.Context) error
}
