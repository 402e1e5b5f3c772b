package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tvshow-catalog/internal/domains/tvshow/model"
)

func link(showID int64, g model.Genre) model.ShowGenre {
	genre := g
	return model.ShowGenre{ShowID: showID, GenreID: g.ID, Genre: &genre}
}

func TestDiffGenreLinks(t *testing.T) {
	drama := model.Genre{ID: 1, Name: "Drama"}
	horror := model.Genre{ID: 2, Name: "Horror"}
	comedy := model.Genre{ID: 3, Name: "Comedy"}

	tests := []struct {
		name       string
		existing   []model.ShowGenre
		desired    []model.Genre
		wantAdd    []model.Genre
		wantRemove []model.ShowGenre
	}{
		{
			name:       "same set",
			existing:   []model.ShowGenre{link(1, drama), link(1, horror)},
			desired:    []model.Genre{horror, drama},
			wantAdd:    []model.Genre{},
			wantRemove: []model.ShowGenre{},
		},
		{
			name:       "empty desired removes all",
			existing:   []model.ShowGenre{link(1, drama), link(1, horror)},
			desired:    []model.Genre{},
			wantAdd:    []model.Genre{},
			wantRemove: []model.ShowGenre{link(1, drama), link(1, horror)},
		},
		{
			name:       "add and remove",
			existing:   []model.ShowGenre{link(1, drama)},
			desired:    []model.Genre{horror, comedy},
			wantAdd:    []model.Genre{horror, comedy},
			wantRemove: []model.ShowGenre{link(1, drama)},
		},
		{
			name:       "duplicates in desired added once",
			existing:   nil,
			desired:    []model.Genre{drama, drama},
			wantAdd:    []model.Genre{drama},
			wantRemove: []model.ShowGenre{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diff := DiffGenreLinks(tt.existing, tt.desired)
			assert.Equal(t, tt.wantAdd, diff.ToAdd)
			assert.Equal(t, tt.wantRemove, diff.ToRemove)
		})
	}
}

func TestResolveGenres_EmptyInputSkipsStore(t *testing.T) {
	store := newFakeStore()
	r := NewGenreReconciler(fakeGenreRepo{store}, fakeLinkRepo{store})

	genres, err := r.ResolveGenres(context.Background(), []string{" ", ""})

	require.NoError(t, err)
	assert.Empty(t, genres)
	assert.Zero(t, store.findByNamesCalls)
	assert.Zero(t, store.createGenreCalls)
}

func TestResolveGenres_AllExisting(t *testing.T) {
	store := newFakeStore()
	drama := store.seedGenre("Drama")
	r := NewGenreReconciler(fakeGenreRepo{store}, fakeLinkRepo{store})

	genres, err := r.ResolveGenres(context.Background(), []string{"Drama", "Drama "})

	require.NoError(t, err)
	assert.Equal(t, []model.Genre{drama}, genres)
	assert.Equal(t, 1, store.findByNamesCalls)
	assert.Zero(t, store.createGenreCalls)
}

func TestResolveGenres_CreatesMissingOnce(t *testing.T) {
	store := newFakeStore()
	store.seedGenre("Horror")
	r := NewGenreReconciler(fakeGenreRepo{store}, fakeLinkRepo{store})

	genres, err := r.ResolveGenres(context.Background(), []string{"Unknown Genre", "Horror", "Unknown Genre"})

	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Unknown Genre", genres[0].Name)
	assert.Equal(t, "Horror", genres[1].Name)
	assert.Equal(t, 2, store.genreCount())
	assert.Equal(t, 1, store.createGenreCalls)
}

func TestResolveGenres_CaseSensitive(t *testing.T) {
	store := newFakeStore()
	store.seedGenre("Drama")
	r := NewGenreReconciler(fakeGenreRepo{store}, fakeLinkRepo{store})

	genres, err := r.ResolveGenres(context.Background(), []string{"drama"})

	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "drama", genres[0].Name)
	assert.Equal(t, 2, store.genreCount())
}

func TestReconcileGenresOnUpdate_NoopDoesNotWrite(t *testing.T) {
	store := newFakeStore()
	drama := store.seedGenre("Drama")
	horror := store.seedGenre("Horror")
	show := store.seedShow("Lost", "2004-09-22", drama, horror)
	r := NewGenreReconciler(fakeGenreRepo{store}, fakeLinkRepo{store})

	diff, err := r.ReconcileGenresOnUpdate(context.Background(), []model.Genre{horror, drama}, show.ID)

	require.NoError(t, err)
	assert.True(t, diff.IsEmpty())
	assert.Zero(t, store.replaceCalls)
	assert.Equal(t, []int64{drama.ID, horror.ID}, store.linkIDs(show.ID))
}

func TestReconcileGenresOnUpdate_AppliesDiff(t *testing.T) {
	store := newFakeStore()
	drama := store.seedGenre("Drama")
	horror := store.seedGenre("Horror")
	comedy := store.seedGenre("Comedy")
	show := store.seedShow("Lost", "2004-09-22", drama, horror)
	r := NewGenreReconciler(fakeGenreRepo{store}, fakeLinkRepo{store})

	diff, err := r.ReconcileGenresOnUpdate(context.Background(), []model.Genre{horror, comedy}, show.ID)

	require.NoError(t, err)
	assert.Equal(t, []model.Genre{comedy}, diff.ToAdd)
	require.Len(t, diff.ToRemove, 1)
	assert.Equal(t, drama.ID, diff.ToRemove[0].GenreID)
	assert.Equal(t, 1, store.replaceCalls)
	assert.Equal(t, []int64{horror.ID, comedy.ID}, store.linkIDs(show.ID))
}
