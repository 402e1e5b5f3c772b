package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/internal/infrastructure/cache"
	pagecache "tvshow-catalog/pkg/cache"
	"tvshow-catalog/pkg/pagination"
)

// fakeStore is an in-memory stand-in for the three repositories.
// It ranks shows exactly like the SQL window function does.
type fakeStore struct {
	mu sync.Mutex

	nextShowID  int64
	nextGenreID int64
	shows       map[int64]model.Show
	genres      map[int64]model.Genre
	links       map[int64]map[int64]bool

	findByNamesCalls int
	createGenreCalls int
	replaceCalls     int
	deleteCalls      int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		shows:  map[int64]model.Show{},
		genres: map[int64]model.Genre{},
		links:  map[int64]map[int64]bool{},
	}
}

func date(s string) time.Time {
	t, err := time.Parse(model.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func (f *fakeStore) seedGenre(name string) model.Genre {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextGenreID++
	g := model.Genre{ID: f.nextGenreID, Name: name}
	f.genres[g.ID] = g
	return g
}

func (f *fakeStore) seedShow(name, premiered string, genres ...model.Genre) model.Show {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextShowID++
	s := model.Show{ID: f.nextShowID, Name: name, ManuallyCreated: true}
	if premiered != "" {
		s.PremieredOn = date(premiered)
	}
	f.shows[s.ID] = s
	f.links[s.ID] = map[int64]bool{}
	for _, g := range genres {
		f.links[s.ID][g.ID] = true
	}
	return s
}

func (f *fakeStore) genreCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.genres)
}

func (f *fakeStore) linkIDs(showID int64) []int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	var ids []int64
	for id := range f.links[showID] {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ranked returns shows ordered by premiere date desc (unknown last), then id, with positions set. Caller holds mu.
func (f *fakeStore) ranked() []model.Show {
	all := make([]model.Show, 0, len(f.shows))
	for _, s := range f.shows {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.PremieredOn.IsZero() != b.PremieredOn.IsZero() {
			return !a.PremieredOn.IsZero()
		}
		if !a.PremieredOn.Equal(b.PremieredOn) {
			return a.PremieredOn.After(b.PremieredOn)
		}
		return a.ID < b.ID
	})
	for i := range all {
		all[i].IndexPosition = int64(i + 1)
	}
	return all
}

// ShowRepository

type fakeShowRepo struct{ *fakeStore }

func (r fakeShowRepo) Create(ctx context.Context, show *model.Show) (*model.Show, error) {
	r.mu.Lock()
	r.nextShowID++
	s := *show
	s.ID = r.nextShowID
	s.Genres = nil
	r.shows[s.ID] = s
	r.links[s.ID] = map[int64]bool{}
	r.mu.Unlock()
	return r.GetByID(ctx, s.ID)
}

func (r fakeShowRepo) CreateMany(_ context.Context, shows []model.Show) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(shows))
	for _, show := range shows {
		r.nextShowID++
		s := show
		s.ID = r.nextShowID
		s.Genres = nil
		r.shows[s.ID] = s
		r.links[s.ID] = map[int64]bool{}
		for _, link := range show.Genres {
			r.links[s.ID][link.GenreID] = true
		}
		ids = append(ids, s.ID)
	}
	return ids, nil
}

func (r fakeShowRepo) GetByID(_ context.Context, id int64) (*model.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.ranked() {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, fmt.Errorf("%w: id %d", model.ErrShowNotFound, id)
}

func (r fakeShowRepo) Query(_ context.Context, filter model.ShowFilter) ([]model.Show, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := []model.Show{}
	for _, s := range r.ranked() {
		if filter.IndexRange != nil && !filter.IndexRange.Contains(s.IndexPosition) {
			continue
		}
		if filter.Name != "" && !strings.Contains(strings.ToLower(s.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if !filter.PremieredFrom.IsZero() && (s.PremieredOn.IsZero() || s.PremieredOn.Before(filter.PremieredFrom)) {
			continue
		}
		if filter.Limit > 0 && len(result) == filter.Limit {
			break
		}
		result = append(result, s)
	}
	return result, nil
}

func (r fakeShowRepo) Update(ctx context.Context, show *model.Show) (*model.Show, error) {
	r.mu.Lock()
	stored, ok := r.shows[show.ID]
	if !ok {
		r.mu.Unlock()
		return nil, model.ErrShowNotFound
	}
	stored.Name = show.Name
	stored.PremieredOn = show.PremieredOn
	r.shows[show.ID] = stored
	r.mu.Unlock()
	return r.GetByID(ctx, show.ID)
}

func (r fakeShowRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleteCalls++
	if _, ok := r.shows[id]; !ok {
		return model.ErrShowNotFound
	}
	delete(r.links, id)
	delete(r.shows, id)
	return nil
}

// GenreRepository

type fakeGenreRepo struct{ *fakeStore }

func (r fakeGenreRepo) FindByNames(_ context.Context, names []string) ([]model.Genre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.findByNamesCalls++
	wanted := map[string]bool{}
	for _, n := range names {
		wanted[n] = true
	}
	result := []model.Genre{}
	for _, g := range r.genres {
		if wanted[g.Name] {
			result = append(result, g)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r fakeGenreRepo) CreateIfNotExists(_ context.Context, names []string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.createGenreCalls++
	var created int64
	for _, n := range names {
		exists := false
		for _, g := range r.genres {
			if g.Name == n {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.nextGenreID++
		r.genres[r.nextGenreID] = model.Genre{ID: r.nextGenreID, Name: n}
		created++
	}
	return created, nil
}

// ShowGenreRepository

type fakeLinkRepo struct{ *fakeStore }

func (r fakeLinkRepo) ListByShows(_ context.Context, showIDs []int64) (map[int64][]model.ShowGenre, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := map[int64][]model.ShowGenre{}
	for _, showID := range showIDs {
		for genreID := range r.links[showID] {
			g := r.genres[genreID]
			result[showID] = append(result[showID], model.ShowGenre{ShowID: showID, GenreID: genreID, Genre: &g})
		}
		sort.Slice(result[showID], func(i, j int) bool {
			return result[showID][i].Genre.Name < result[showID][j].Genre.Name
		})
	}
	return result, nil
}

func (r fakeLinkRepo) AddLinks(_ context.Context, showID int64, genreIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.links[showID] == nil {
		r.links[showID] = map[int64]bool{}
	}
	for _, id := range genreIDs {
		r.links[showID][id] = true
	}
	return nil
}

func (r fakeLinkRepo) ReplaceLinks(_ context.Context, showID int64, add, remove []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaceCalls++
	for _, id := range remove {
		delete(r.links[showID], id)
	}
	for _, id := range add {
		r.links[showID][id] = true
	}
	return nil
}

type testEnv struct {
	store   *fakeStore
	pages   *pagination.PageCollection[model.ShowView]
	service ServiceInterface
}

func newTestEnv(t *testing.T, pageSize int) *testEnv {
	t.Helper()
	return newTestEnvWithCache(t, pageSize, cache.NewMemoryCache(0))
}

func newTestEnvWithCache(t *testing.T, pageSize int, pageStore pagecache.Cache) *testEnv {
	t.Helper()

	store := newFakeStore()
	pages, err := pagination.NewPageCollection[model.ShowView](pageStore, pagination.Options{
		MaxPageSize: pageSize,
		Namespace:   "tvshow",
	})
	require.NoError(t, err)

	return &testEnv{
		store:   store,
		pages:   pages,
		service: NewShowService(fakeShowRepo{store}, fakeGenreRepo{store}, fakeLinkRepo{store}, pages),
	}
}

// brokenDeleteCache serves reads and writes but fails every invalidation.
type brokenDeleteCache struct {
	pagecache.Cache
}

func (brokenDeleteCache) Delete(context.Context, ...string) error {
	return fmt.Errorf("cache unavailable")
}
