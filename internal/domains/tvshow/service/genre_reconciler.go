package service

import (
	"context"
	"fmt"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/internal/domains/tvshow/repository"
)

// GenreDiff is the set of link changes that turns the current genres of a
// show into the desired ones.
type GenreDiff struct {
	ToAdd    []model.Genre
	ToRemove []model.ShowGenre
}

func (d GenreDiff) IsEmpty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// DiffGenreLinks compares links by genre id. An empty desired set removes every link.
func DiffGenreLinks(existing []model.ShowGenre, desired []model.Genre) GenreDiff {
	existingIDs := make(map[int64]struct{}, len(existing))
	for _, link := range existing {
		existingIDs[link.GenreID] = struct{}{}
	}

	desiredIDs := make(map[int64]struct{}, len(desired))
	diff := GenreDiff{ToAdd: []model.Genre{}, ToRemove: []model.ShowGenre{}}

	for _, g := range desired {
		if _, dup := desiredIDs[g.ID]; dup {
			continue
		}
		desiredIDs[g.ID] = struct{}{}

		if _, ok := existingIDs[g.ID]; !ok {
			diff.ToAdd = append(diff.ToAdd, g)
		}
	}

	for _, link := range existing {
		if _, ok := desiredIDs[link.GenreID]; !ok {
			diff.ToRemove = append(diff.ToRemove, link)
		}
	}

	return diff
}

// GenreReconciler maps genre names to stored genres and keeps the links of a
// show in line with a desired genre set.
type GenreReconciler struct {
	genres repository.GenreRepository
	links  repository.ShowGenreRepository
}

func NewGenreReconciler(genres repository.GenreRepository, links repository.ShowGenreRepository) *GenreReconciler {
	return &GenreReconciler{genres: genres, links: links}
}

// ResolveGenres returns one stored genre per distinct name, creating the
// missing ones. Result order follows the first occurrence of each name.
func (r *GenreReconciler) ResolveGenres(ctx context.Context, names []string) ([]model.Genre, error) {
	names = model.NormalizeGenreNames(names)
	if len(names) == 0 {
		return []model.Genre{}, nil
	}

	found, err := r.genres.FindByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve genres: %w", err)
	}

	if missing := missingNames(names, found); len(missing) > 0 {
		if _, err := r.genres.CreateIfNotExists(ctx, missing); err != nil {
			return nil, fmt.Errorf("failed to create genres: %w", err)
		}

		found, err = r.genres.FindByNames(ctx, names)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve genres: %w", err)
		}
	}

	byName := make(map[string]model.Genre, len(found))
	for _, g := range found {
		byName[g.Name] = g
	}

	resolved := make([]model.Genre, 0, len(names))
	for _, name := range names {
		if g, ok := byName[name]; ok {
			resolved = append(resolved, g)
		}
	}

	return resolved, nil
}

// ApplyGenresOnCreate links a freshly created show to genres in one batch.
func (r *GenreReconciler) ApplyGenresOnCreate(ctx context.Context, genres []model.Genre, showID int64) error {
	if len(genres) == 0 {
		return nil
	}
	return r.links.AddLinks(ctx, showID, genreIDs(genres))
}

// ReconcileGenresOnUpdate makes the links of showID match genres exactly.
// Additions and removals are applied in one transaction.
func (r *GenreReconciler) ReconcileGenresOnUpdate(ctx context.Context, genres []model.Genre, showID int64) (GenreDiff, error) {
	current, err := r.links.ListByShows(ctx, []int64{showID})
	if err != nil {
		return GenreDiff{}, fmt.Errorf("failed to load show genres: %w", err)
	}

	diff := DiffGenreLinks(current[showID], genres)
	if diff.IsEmpty() {
		return diff, nil
	}

	removeIDs := make([]int64, 0, len(diff.ToRemove))
	for _, link := range diff.ToRemove {
		removeIDs = append(removeIDs, link.GenreID)
	}

	if err := r.links.ReplaceLinks(ctx, showID, genreIDs(diff.ToAdd), removeIDs); err != nil {
		return GenreDiff{}, err
	}

	return diff, nil
}

func missingNames(names []string, found []model.Genre) []string {
	have := make(map[string]struct{}, len(found))
	for _, g := range found {
		have[g.Name] = struct{}{}
	}

	var missing []string
	for _, name := range names {
		if _, ok := have[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func genreIDs(genres []model.Genre) []int64 {
	ids := make([]int64, 0, len(genres))
	for _, g := range genres {
		ids = append(ids, g.ID)
	}
	return ids
}
