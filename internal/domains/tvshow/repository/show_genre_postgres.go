package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/pkg/database"
)

type postgresShowGenreRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresShowGenreRepository(pool *pgxpool.Pool) ShowGenreRepository {
	return &postgresShowGenreRepository{pool: pool}
}

// ListByShows loads links for many shows with a single query
func (r *postgresShowGenreRepository) ListByShows(ctx context.Context, showIDs []int64) (map[int64][]model.ShowGenre, error) {
	result := make(map[int64][]model.ShowGenre, len(showIDs))
	if len(showIDs) == 0 {
		return result, nil
	}

	query := `
		SELECT sg.show_id, sg.genre_id, g.name
		FROM tv.show_genres sg
		JOIN tv.genres g ON g.id = sg.genre_id
		WHERE sg.show_id = ANY($1)
		ORDER BY sg.show_id, g.name
	`

	rows, err := r.pool.Query(ctx, query, showIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query show genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			link model.ShowGenre
			name string
		)
		if err := rows.Scan(&link.ShowID, &link.GenreID, &name); err != nil {
			return nil, fmt.Errorf("failed to scan show genre: %w", err)
		}
		link.Genre = &model.Genre{ID: link.GenreID, Name: name}
		result[link.ShowID] = append(result[link.ShowID], link)
	}

	return result, rows.Err()
}

func (r *postgresShowGenreRepository) AddLinks(ctx context.Context, showID int64, genreIDs []int64) error {
	if len(genreIDs) == 0 {
		return nil
	}
	return addLinks(ctx, r.pool, showID, genreIDs)
}

func (r *postgresShowGenreRepository) ReplaceLinks(ctx context.Context, showID int64, addGenreIDs, removeGenreIDs []int64) error {
	if len(addGenreIDs) == 0 && len(removeGenreIDs) == 0 {
		return nil
	}

	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if len(removeGenreIDs) > 0 {
			_, err := tx.Exec(ctx,
				`DELETE FROM tv.show_genres WHERE show_id = $1 AND genre_id = ANY($2)`,
				showID, removeGenreIDs,
			)
			if err != nil {
				return fmt.Errorf("failed to remove show genres: %w", err)
			}
		}

		if len(addGenreIDs) > 0 {
			if err := addLinks(ctx, tx, showID, addGenreIDs); err != nil {
				return err
			}
		}

		return nil
	})
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func addLinks(ctx context.Context, db execer, showID int64, genreIDs []int64) error {
	_, err := db.Exec(ctx, `
		INSERT INTO tv.show_genres (show_id, genre_id)
		SELECT $1, unnest($2::bigint[])
		ON CONFLICT (show_id, genre_id) DO NOTHING
	`, showID, genreIDs)
	if err != nil {
		return fmt.Errorf("failed to add show genres: %w", err)
	}
	return nil
}
