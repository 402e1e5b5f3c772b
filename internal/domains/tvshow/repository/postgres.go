package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tvshow-catalog/internal/domains/tvshow/model"
	"tvshow-catalog/pkg/database"
)

// indexedShowsCTE ranks every show: most recent premiere first, unknown dates last, ties by id
const indexedShowsCTE = `
	WITH indexed_shows AS (
		SELECT
			ROW_NUMBER() OVER (ORDER BY premiered_on DESC NULLS LAST, id ASC) AS index_position,
			id, name, premiered_on, origin_id, manually_created
		FROM tv.shows
	)
`

const selectIndexedShows = indexedShowsCTE + `
	SELECT index_position, id, name, premiered_on, origin_id, manually_created
	FROM indexed_shows
`

type postgresShowRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresShowRepository(pool *pgxpool.Pool) ShowRepository {
	return &postgresShowRepository{pool: pool}
}

func (r *postgresShowRepository) Create(ctx context.Context, show *model.Show) (*model.Show, error) {
	query := `
		INSERT INTO tv.shows (name, premiered_on, origin_id, manually_created)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		show.Name,
		nullableDate(show.PremieredOn),
		show.OriginID,
		show.ManuallyCreated,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("failed to create tv show: %w", err)
	}

	return r.GetByID(ctx, id)
}

// CreateMany queues every insert in one batch so ids come back in input order,
// then writes the links with COPY.
func (r *postgresShowRepository) CreateMany(ctx context.Context, shows []model.Show) ([]int64, error) {
	if len(shows) == 0 {
		return []int64{}, nil
	}

	return database.WithTransactionResult(ctx, r.pool, func(tx pgx.Tx) ([]int64, error) {
		batch := &pgx.Batch{}
		for _, s := range shows {
			batch.Queue(`
				INSERT INTO tv.shows (name, premiered_on, origin_id, manually_created)
				VALUES ($1, $2, $3, $4)
				RETURNING id
			`, s.Name, nullableDate(s.PremieredOn), s.OriginID, s.ManuallyCreated)
		}

		results := tx.SendBatch(ctx, batch)
		ids := make([]int64, 0, len(shows))
		for range shows {
			var id int64
			if err := results.QueryRow().Scan(&id); err != nil {
				_ = results.Close()
				return nil, fmt.Errorf("failed to bulk insert tv shows: %w", err)
			}
			ids = append(ids, id)
		}
		if err := results.Close(); err != nil {
			return nil, fmt.Errorf("failed to bulk insert tv shows: %w", err)
		}

		var links [][]interface{}
		for i, s := range shows {
			for _, link := range s.Genres {
				links = append(links, []interface{}{ids[i], link.GenreID})
			}
		}

		if len(links) > 0 {
			_, err := tx.CopyFrom(ctx,
				pgx.Identifier{"tv", "show_genres"},
				[]string{"show_id", "genre_id"},
				pgx.CopyFromRows(links),
			)
			if err != nil {
				return nil, fmt.Errorf("failed to bulk insert show genres: %w", err)
			}
		}

		return ids, nil
	})
}

func (r *postgresShowRepository) GetByID(ctx context.Context, id int64) (*model.Show, error) {
	query := selectIndexedShows + ` WHERE id = $1`

	show, err := scanShow(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: id %d", model.ErrShowNotFound, id)
		}
		return nil, fmt.Errorf("failed to get tv show by id: %w", err)
	}

	return show, nil
}

func (r *postgresShowRepository) Query(ctx context.Context, filter model.ShowFilter) ([]model.Show, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(selectIndexedShows)
	queryBuilder.WriteString(" WHERE 1=1")

	args := []interface{}{}
	argPos := 1

	if filter.Name != "" {
		if filter.ExactName {
			queryBuilder.WriteString(fmt.Sprintf(" AND name = $%d", argPos))
			args = append(args, filter.Name)
		} else {
			queryBuilder.WriteString(fmt.Sprintf(" AND name ILIKE $%d", argPos))
			args = append(args, "%"+escapeLike(filter.Name)+"%")
		}
		argPos++
	}

	if !filter.PremieredFrom.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND premiered_on >= $%d", argPos))
		args = append(args, filter.PremieredFrom)
		argPos++
	}

	if !filter.PremieredTo.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND premiered_on <= $%d", argPos))
		args = append(args, filter.PremieredTo)
		argPos++
	}

	if filter.OriginID != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND origin_id = $%d", argPos))
		args = append(args, *filter.OriginID)
		argPos++
	}

	if filter.IndexRange != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND index_position BETWEEN $%d AND $%d", argPos, argPos+1))
		args = append(args, filter.IndexRange.Start, filter.IndexRange.End)
		argPos += 2
	}

	queryBuilder.WriteString(" ORDER BY index_position")

	if filter.Limit > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argPos))
		args = append(args, filter.Limit)
	}

	rows, err := r.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tv shows: %w", err)
	}
	defer rows.Close()

	shows := []model.Show{}
	for rows.Next() {
		show, err := scanShow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tv show: %w", err)
		}
		shows = append(shows, *show)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tv shows: %w", err)
	}

	return shows, nil
}

func (r *postgresShowRepository) Update(ctx context.Context, show *model.Show) (*model.Show, error) {
	query := `
		UPDATE tv.shows
		SET name = $2, premiered_on = $3
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, show.ID, show.Name, nullableDate(show.PremieredOn))
	if err != nil {
		return nil, fmt.Errorf("failed to update tv show: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, fmt.Errorf("%w: id %d", model.ErrShowNotFound, show.ID)
	}

	return r.GetByID(ctx, show.ID)
}

func (r *postgresShowRepository) Delete(ctx context.Context, id int64) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		// Lock the row first so links are only touched for a show that exists
		var exists int64
		err := tx.QueryRow(ctx, `SELECT id FROM tv.shows WHERE id = $1 FOR UPDATE`, id).Scan(&exists)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("%w: id %d", model.ErrShowNotFound, id)
			}
			return fmt.Errorf("failed to lock tv show: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tv.show_genres WHERE show_id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete tv show genres: %w", err)
		}

		if _, err := tx.Exec(ctx, `DELETE FROM tv.shows WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to delete tv show: %w", err)
		}

		return nil
	})
}

func scanShow(row pgx.Row) (*model.Show, error) {
	var (
		s         model.Show
		premiered *time.Time
	)

	if err := row.Scan(&s.IndexPosition, &s.ID, &s.Name, &premiered, &s.OriginID, &s.ManuallyCreated); err != nil {
		return nil, err
	}
	if premiered != nil {
		s.PremieredOn = *premiered
	}

	return &s, nil
}

// nullableDate maps the zero time to SQL NULL
func nullableDate(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
