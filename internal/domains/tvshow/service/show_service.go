package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/internal/domains/tvshow/repository"
	"tvshow-catalog/pkg/pagination"
)

type showService struct {
	shows      repository.ShowRepository
	links      repository.ShowGenreRepository
	reconciler *GenreReconciler
	pages      PageCache
}

func NewShowService(
	shows repository.ShowRepository,
	genres repository.GenreRepository,
	links repository.ShowGenreRepository,
	pages PageCache,
) ServiceInterface {
	return &showService{
		shows:      shows,
		links:      links,
		reconciler: NewGenreReconciler(genres, links),
		pages:      pages,
	}
}

func (s *showService) Add(ctx context.Context, view model.ShowView) (*model.ShowView, error) {
	// ═══════════════════════════════════════════════════════════
	// STEP 1: VALIDATE + MAP
	// ═══════════════════════════════════════════════════════════
	if err := view.ValidateForCreate(); err != nil {
		return nil, err
	}

	show, err := model.FromView(view)
	if err != nil {
		return nil, err
	}

	// ═══════════════════════════════════════════════════════════
	// STEP 2: PERSIST SHOW + GENRE LINKS
	// ═══════════════════════════════════════════════════════════
	created, err := s.shows.Create(ctx, show)
	if err != nil {
		return nil, err
	}

	genres, err := s.reconciler.ResolveGenres(ctx, view.Genres)
	if err != nil {
		return nil, err
	}

	if err := s.reconciler.ApplyGenresOnCreate(ctx, genres, created.ID); err != nil {
		return nil, err
	}

	if err := s.attachGenres(ctx, []*model.Show{created}); err != nil {
		return nil, err
	}

	// ═══════════════════════════════════════════════════════════
	// STEP 3: INVALIDATE THE PAGE THE SHOW LANDED ON
	// ═══════════════════════════════════════════════════════════
	s.pages.RefreshIndexed(ctx, created)

	result := model.ToView(*created)
	return &result, nil
}

func (s *showService) AddMany(ctx context.Context, views []model.ShowView) (int, error) {
	if len(views) == 0 {
		return 0, fmt.Errorf("%w: at least one show is required", model.ErrInvalidArgument)
	}

	shows := make([]model.Show, 0, len(views))
	var allNames []string

	for i, view := range views {
		if err := view.ValidateForCreate(); err != nil {
			return 0, fmt.Errorf("show %d: %w", i, err)
		}

		show, err := model.FromView(view)
		if err != nil {
			return 0, fmt.Errorf("show %d: %w", i, err)
		}

		shows = append(shows, *show)
		allNames = append(allNames, view.Genres...)
	}

	genres, err := s.reconciler.ResolveGenres(ctx, allNames)
	if err != nil {
		return 0, err
	}

	byName := make(map[string]model.Genre, len(genres))
	for _, g := range genres {
		byName[g.Name] = g
	}

	for i, view := range views {
		for _, name := range model.NormalizeGenreNames(view.Genres) {
			if g, ok := byName[name]; ok {
				genre := g
				shows[i].Genres = append(shows[i].Genres, model.ShowGenre{GenreID: g.ID, Genre: &genre})
			}
		}
	}

	ids, err := s.shows.CreateMany(ctx, shows)
	if err != nil {
		return 0, err
	}

	// Many positions shifted at once, drop every page
	if err := s.pages.Purge(ctx); err != nil {
		log.Warn().Err(err).Int("added", len(ids)).Msg("Failed to purge page cache after bulk add")
	}

	log.Info().Int("added", len(ids)).Msg("Bulk added tv shows")

	return len(ids), nil
}

func (s *showService) Get(ctx context.Context, id int64) (*model.ShowView, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidShowID, id)
	}

	show, err := s.shows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.attachGenres(ctx, []*model.Show{show}); err != nil {
		return nil, err
	}

	result := model.ToView(*show)
	return &result, nil
}

func (s *showService) GetPage(ctx context.Context, pageNumber int) (*pagination.Page[model.ShowView], error) {
	return s.pages.GetOrCachePage(ctx, pageNumber, s.loadPage)
}

// loadPage is the page factory: shows in the index range plus their links, fetched in one query.
func (s *showService) loadPage(ctx context.Context, r pagination.IndexRange) ([]model.ShowView, error) {
	shows, err := s.shows.Query(ctx, model.ShowFilter{IndexRange: &r})
	if err != nil {
		return nil, err
	}

	return s.toViews(ctx, shows)
}

func (s *showService) Update(ctx context.Context, id int64, view model.ShowView) (*model.ShowView, error) {
	if id < 1 {
		return nil, fmt.Errorf("%w: %d", model.ErrInvalidShowID, id)
	}
	if err := view.ValidateForUpdate(); err != nil {
		return nil, err
	}

	// ═══════════════════════════════════════════════════════════
	// STEP 1: FETCH CURRENT SHOW
	// ═══════════════════════════════════════════════════════════
	current, err := s.shows.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := *current

	// ═══════════════════════════════════════════════════════════
	// STEP 2: APPLY PARTIAL UPDATE
	// ═══════════════════════════════════════════════════════════
	if err := view.ApplyToEntity(current); err != nil {
		return nil, err
	}

	updated, err := s.shows.Update(ctx, current)
	if err != nil {
		return nil, err
	}

	// ═══════════════════════════════════════════════════════════
	// STEP 3: RECONCILE GENRES (only when the field was sent)
	// ═══════════════════════════════════════════════════════════
	if view.Genres != nil {
		genres, err := s.reconciler.ResolveGenres(ctx, view.Genres)
		if err != nil {
			return nil, err
		}

		if _, err := s.reconciler.ReconcileGenresOnUpdate(ctx, genres, updated.ID); err != nil {
			return nil, err
		}
	}

	if err := s.attachGenres(ctx, []*model.Show{updated}); err != nil {
		return nil, err
	}

	// ═══════════════════════════════════════════════════════════
	// STEP 4: INVALIDATE (old and new page when the date moved the show)
	// ═══════════════════════════════════════════════════════════
	s.pages.RefreshIndexed(ctx, updated)
	if pagination.PageNumberFor(previous.IndexPosition, s.pages.MaxPageSize()) !=
		pagination.PageNumberFor(updated.IndexPosition, s.pages.MaxPageSize()) {
		s.pages.RefreshIndexed(ctx, previous)
	}

	result := model.ToView(*updated)
	return &result, nil
}

func (s *showService) Delete(ctx context.Context, id int64) error {
	if id < 1 {
		return fmt.Errorf("%w: %d", model.ErrInvalidShowID, id)
	}

	show, err := s.shows.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.shows.Delete(ctx, id); err != nil {
		return err
	}

	s.pages.RefreshIndexed(ctx, show)

	return nil
}

func (s *showService) Query(ctx context.Context, filter model.ShowFilter) ([]model.ShowView, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	if filter.Limit == 0 {
		filter.Limit = model.DefaultQueryLimit
	}

	shows, err := s.shows.Query(ctx, filter)
	if err != nil {
		return nil, err
	}

	return s.toViews(ctx, shows)
}

func (s *showService) toViews(ctx context.Context, shows []model.Show) ([]model.ShowView, error) {
	ptrs := make([]*model.Show, len(shows))
	for i := range shows {
		ptrs[i] = &shows[i]
	}

	if err := s.attachGenres(ctx, ptrs); err != nil {
		return nil, err
	}

	return model.ToViews(shows), nil
}

// attachGenres loads the links of all shows with a single query
func (s *showService) attachGenres(ctx context.Context, shows []*model.Show) error {
	if len(shows) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(shows))
	for _, show := range shows {
		ids = append(ids, show.ID)
	}

	links, err := s.links.ListByShows(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load genres: %w", err)
	}

	for _, show := range shows {
		show.Genres = links[show.ID]
	}

	return nil
}
