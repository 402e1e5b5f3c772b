package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// schemaStatements are idempotent; EnsureSchema can run on every deploy.
var schemaStatements = []string{
	`CREATE SCHEMA IF NOT EXISTS tv`,
	`CREATE TABLE IF NOT EXISTS tv.shows (
		id               BIGSERIAL PRIMARY KEY,
		name             TEXT NOT NULL,
		premiered_on     DATE NULL,
		origin_id        BIGINT NULL,
		manually_created BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS tv.genres (
		id   BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_genres_name ON tv.genres (name)`,
	`CREATE TABLE IF NOT EXISTS tv.show_genres (
		show_id  BIGINT NOT NULL REFERENCES tv.shows (id) ON DELETE CASCADE,
		genre_id BIGINT NOT NULL REFERENCES tv.genres (id) ON DELETE CASCADE,
		PRIMARY KEY (show_id, genre_id)
	)`,
	`CREATE INDEX IF NOT EXISTS ix_shows_premiered_on ON tv.shows (premiered_on DESC NULLS LAST, id)`,
	`CREATE INDEX IF NOT EXISTS ix_shows_origin_id ON tv.shows (origin_id) WHERE origin_id IS NOT NULL`,
	`CREATE INDEX IF NOT EXISTS ix_shows_name ON tv.shows (name)`,
	`CREATE INDEX IF NOT EXISTS ix_show_genres_genre_id ON tv.show_genres (genre_id)`,
}

// EnsureSchema creates the tv schema, its tables and indexes if missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	log.Info().Int("statements", len(schemaStatements)).Msg("[DATABASE] Schema is up to date")
	return nil
}

// CreateDatabase creates cfg.DBName on the server when it does not exist yet.
// It connects through the "postgres" maintenance database.
func CreateDatabase(ctx context.Context, cfg *DBConfig) error {
	conn, err := pgx.Connect(ctx, cfg.ConnectionString("postgres"))
	if err != nil {
		return fmt.Errorf("connect to maintenance database: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	err = conn.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = $1)`, cfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database: %w", err)
	}
	if exists {
		log.Info().Str("database", cfg.DBName).Msg("[DATABASE] Database already exists")
		return nil
	}

	// CREATE DATABASE does not accept bind parameters
	stmt := "CREATE DATABASE " + pgx.Identifier{cfg.DBName}.Sanitize()
	if _, err := conn.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("create database %s: %w", cfg.DBName, err)
	}

	log.Info().Str("database", cfg.DBName).Msg("[DATABASE] Database created")
	return nil
}
