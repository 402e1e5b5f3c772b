package pagination

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"tvshow-catalog/pkg/cache"
)

// PageFactory loads the values for an index range from the source of truth.
type PageFactory[T any] func(ctx context.Context, r IndexRange) ([]T, error)

// RefreshResult reports the outcome of a best-effort invalidation.
// Err is informational; invalidation never fails the caller.
type RefreshResult struct {
	PageNumber int
	Key        string
	Err        error
}

// PageCollection is a read-through cache of fixed-size pages keyed by page number.
// Pages are built on demand by a PageFactory and dropped when a write touches
// an index position they cover.
type PageCollection[T any] struct {
	store  cache.Cache
	opts   Options
	group  singleflight.Group
	logger zerolog.Logger
}

func NewPageCollection[T any](store cache.Cache, opts Options) (*PageCollection[T], error) {
	if store == nil {
		return nil, fmt.Errorf("page store is required")
	}
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid page collection options: %w", err)
	}
	opts = opts.withDefaults()

	return &PageCollection[T]{
		store:  store,
		opts:   opts,
		logger: opts.Logger.With().Str("component", "page_cache").Str("namespace", opts.Namespace).Logger(),
	}, nil
}

// MaxPageSize returns S.
func (pc *PageCollection[T]) MaxPageSize() int {
	return pc.opts.MaxPageSize
}

// Key returns the cache key of a page.
func (pc *PageCollection[T]) Key(pageNumber int) string {
	return fmt.Sprintf("page:%s:%d", pc.opts.Namespace, pageNumber)
}

// GetOrCachePage returns the cached page or builds it with factory.
// Concurrent misses for the same page share one factory call.
func (pc *PageCollection[T]) GetOrCachePage(ctx context.Context, pageNumber int, factory PageFactory[T]) (*Page[T], error) {
	if factory == nil {
		return nil, ErrNilFactory
	}
	if pageNumber < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidPageNumber, pageNumber)
	}

	key := pc.Key(pageNumber)

	var cached Page[T]
	found, err := pc.store.GetAndTouch(ctx, key, &cached, pc.opts.SlidingExpiration)
	if err != nil {
		// Backend trouble degrades to a miss
		pc.logger.Warn().Err(err).Str("key", key).Msg("Page cache read failed")
	} else if found {
		return &cached, nil
	}

	// The build is detached from the caller that started it; each caller
	// waits on its own ctx.
	ch := pc.group.DoChan(key, func() (interface{}, error) {
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pc.opts.BuildTimeout)
		defer cancel()
		return pc.build(buildCtx, pageNumber, key, factory)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Page[T]), nil
	}
}

func (pc *PageCollection[T]) build(ctx context.Context, pageNumber int, key string, factory PageFactory[T]) (*Page[T], error) {
	r := RangeForPage(pageNumber, pc.opts.MaxPageSize)

	values, err := factory(ctx, r)
	if err != nil {
		return nil, err
	}

	if len(values) > pc.opts.MaxPageSize {
		return nil, fmt.Errorf("%w: page %d got %d values, max page size is %d",
			ErrPageOverflow, pageNumber, len(values), pc.opts.MaxPageSize)
	}

	page := NewPage(values, pageNumber)

	if err := pc.store.Set(ctx, key, page, pc.opts.SlidingExpiration); err != nil {
		pc.logger.Warn().Err(err).Str("key", key).Msg("Page cache write failed")
	}

	return page, nil
}

// RefreshPage drops the cached page containing indexPosition so the next read
// rebuilds it. Non-positive positions are a no-op. The call survives
// cancellation of ctx and never returns an error to the caller.
func (pc *PageCollection[T]) RefreshPage(ctx context.Context, indexPosition int64) (result RefreshResult) {
	if indexPosition < 1 {
		return RefreshResult{}
	}

	pageNumber := PageNumberFor(indexPosition, pc.opts.MaxPageSize)
	key := pc.Key(pageNumber)
	result = RefreshResult{PageNumber: pageNumber, Key: key}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pc.opts.RefreshTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			result.Err = fmt.Errorf("page invalidation panicked: %v", r)
		}
		if result.Err != nil {
			pc.logger.Warn().Err(result.Err).Str("key", key).Int64("index_position", indexPosition).
				Msg("Page invalidation failed")
		}
	}()

	// A build started before this write must not be handed to later readers
	pc.group.Forget(key)
	result.Err = pc.store.Delete(ctx, key)

	return result
}

// RefreshIndexed is RefreshPage for a persisted record.
func (pc *PageCollection[T]) RefreshIndexed(ctx context.Context, item Indexable) RefreshResult {
	if item == nil {
		return RefreshResult{}
	}
	return pc.RefreshPage(ctx, item.GetIndexPosition())
}

// Purge drops every cached page of this collection.
// Used after writes that shift many index positions at once.
func (pc *PageCollection[T]) Purge(ctx context.Context) error {
	if err := pc.store.DeletePattern(ctx, fmt.Sprintf("page:%s:*", pc.opts.Namespace)); err != nil {
		return fmt.Errorf("failed to purge page cache: %w", err)
	}
	return nil
}
