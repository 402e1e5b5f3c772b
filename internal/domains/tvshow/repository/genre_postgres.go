package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"tvshow-catalog/internal/domains/tvshow/model"
)

type postgresGenreRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresGenreRepository(pool *pgxpool.Pool) GenreRepository {
	return &postgresGenreRepository{pool: pool}
}

func (r *postgresGenreRepository) FindByNames(ctx context.Context, names []string) ([]model.Genre, error) {
	if len(names) == 0 {
		return []model.Genre{}, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, name FROM tv.genres WHERE name = ANY($1) ORDER BY id`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to query genres: %w", err)
	}
	defer rows.Close()

	genres := []model.Genre{}
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.Name); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, g)
	}

	return genres, rows.Err()
}

// CreateIfNotExists relies on the unique index on name, so concurrent
// callers resolving the same new name never create two rows.
func (r *postgresGenreRepository) CreateIfNotExists(ctx context.Context, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}

	tag, err := r.pool.Exec(ctx, `
		INSERT INTO tv.genres (name)
		SELECT DISTINCT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
	`, names)
	if err != nil {
		return 0, fmt.Errorf("failed to create genres: %w", err)
	}

	return tag.RowsAffected(), nil
}
