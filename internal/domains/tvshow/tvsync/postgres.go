package tvsync

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/pkg/database"
)

type postgresReader struct {
	pool *pgxpool.Pool
}

func NewPostgresReader(pool *pgxpool.Pool) Reader {
	return &postgresReader{pool: pool}
}

func (r *postgresReader) LatestSyncedOriginID(ctx context.Context) (int64, error) {
	var latest int64
	err := r.pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(origin_id), 0)
		FROM tv.shows
		WHERE manually_created = false AND origin_id IS NOT NULL
	`).Scan(&latest)
	if err != nil {
		return 0, fmt.Errorf("failed to read latest synced origin id: %w", err)
	}
	return latest, nil
}

func (r *postgresReader) ExistingShows(ctx context.Context, names []string) (map[ShowKey]struct{}, error) {
	existing := make(map[ShowKey]struct{})
	if len(names) == 0 {
		return existing, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT name, premiered_on FROM tv.shows WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing shows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			name      string
			premiered *time.Time
		)
		if err := rows.Scan(&name, &premiered); err != nil {
			return nil, fmt.Errorf("failed to scan existing show: %w", err)
		}

		key := ShowKey{Name: name}
		if premiered != nil {
			key.Premiered = premiered.Format(model.DateLayout)
		}
		existing[key] = struct{}{}
	}

	return existing, rows.Err()
}

type postgresWriter struct {
	pool *pgxpool.Pool
}

func NewPostgresWriter(pool *pgxpool.Pool) Writer {
	return &postgresWriter{pool: pool}
}

// Write stores genres, shows and links in one transaction. Nothing is written
// when latestOriginID no longer matches a stored show.
func (w *postgresWriter) Write(ctx context.Context, latestOriginID int64, shows []PreparedShow) (WriteResult, error) {
	if len(shows) == 0 {
		return WriteResult{}, nil
	}

	return database.WithTransactionResult(ctx, w.pool, func(tx pgx.Tx) (WriteResult, error) {
		var result WriteResult

		// STEP 1: the previous sync must still be there, otherwise paging restarts in the wrong place
		if latestOriginID > 0 {
			var exists bool
			err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tv.shows WHERE origin_id = $1)`, latestOriginID).Scan(&exists)
			if err != nil {
				return result, fmt.Errorf("failed to validate latest origin id: %w", err)
			}
			if !exists {
				return result, fmt.Errorf("%w: latest synced show with origin id %d is not in the database",
					ErrSyncStateMismatch, latestOriginID)
			}
		}

		// STEP 2: genres
		genreIDs, added, err := upsertGenres(ctx, tx, shows)
		if err != nil {
			return result, err
		}
		result.GenresAdded = added

		// STEP 3: shows
		showRows := make([][]interface{}, 0, len(shows))
		originIDs := make([]int64, 0, len(shows))
		for _, s := range shows {
			var premiered *time.Time
			if !s.PremieredOn.IsZero() {
				p := s.PremieredOn
				premiered = &p
			}
			showRows = append(showRows, []interface{}{s.Name, premiered, s.OriginID, false})
			originIDs = append(originIDs, s.OriginID)
		}

		result.ShowsAdded, err = tx.CopyFrom(ctx,
			pgx.Identifier{"tv", "shows"},
			[]string{"name", "premiered_on", "origin_id", "manually_created"},
			pgx.CopyFromRows(showRows),
		)
		if err != nil {
			return result, fmt.Errorf("failed to copy shows: %w", err)
		}

		showIDs, err := insertedShowIDs(ctx, tx, originIDs)
		if err != nil {
			return result, err
		}

		// STEP 4: links
		var linkRows [][]interface{}
		for _, s := range shows {
			showID, ok := showIDs[s.OriginID]
			if !ok {
				continue
			}
			for _, name := range s.Genres {
				if genreID, ok := genreIDs[name]; ok {
					linkRows = append(linkRows, []interface{}{showID, genreID})
				}
			}
		}

		if len(linkRows) > 0 {
			result.LinksAdded, err = tx.CopyFrom(ctx,
				pgx.Identifier{"tv", "show_genres"},
				[]string{"show_id", "genre_id"},
				pgx.CopyFromRows(linkRows),
			)
			if err != nil {
				return result, fmt.Errorf("failed to copy show genres: %w", err)
			}
		}

		return result, nil
	})
}

func upsertGenres(ctx context.Context, tx pgx.Tx, shows []PreparedShow) (map[string]int64, int64, error) {
	var all []string
	for _, s := range shows {
		all = append(all, s.Genres...)
	}
	names := model.NormalizeGenreNames(all)

	ids := make(map[string]int64, len(names))
	if len(names) == 0 {
		return ids, 0, nil
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO tv.genres (name)
		SELECT unnest($1::text[])
		ON CONFLICT (name) DO NOTHING
	`, names)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to upsert genres: %w", err)
	}

	rows, err := tx.Query(ctx, `SELECT id, name FROM tv.genres WHERE name = ANY($1)`, names)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read genres: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id   int64
			name string
		)
		if err := rows.Scan(&id, &name); err != nil {
			return nil, 0, fmt.Errorf("failed to scan genre: %w", err)
		}
		ids[name] = id
	}

	return ids, tag.RowsAffected(), rows.Err()
}

func insertedShowIDs(ctx context.Context, tx pgx.Tx, originIDs []int64) (map[int64]int64, error) {
	rows, err := tx.Query(ctx, `
		SELECT origin_id, MAX(id)
		FROM tv.shows
		WHERE manually_created = false AND origin_id = ANY($1)
		GROUP BY origin_id
	`, originIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to read inserted shows: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]int64, len(originIDs))
	for rows.Next() {
		var originID, id int64
		if err := rows.Scan(&originID, &id); err != nil {
			return nil, fmt.Errorf("failed to scan inserted show: %w", err)
		}
		ids[originID] = id
	}

	return ids, rows.Err()
}
