package main

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"tvshow-catalog/internal/config"
	"tvshow-catalog/internal/infrastructure/database"
)

const schemaOnlyFlag = "schema-only"

func makeCreateDatabaseCMD() cli.Command {
	return cli.Command{
		Name:    "create-database",
		Aliases: []string{"c"},
		Usage:   "Creates the database if missing and applies the tv schema",
		Flags: []cli.Flag{
			cli.BoolFlag{
				Name:   schemaOnlyFlag,
				Usage:  "skip CREATE DATABASE, only apply the schema",
				EnvVar: "MIGRATOR_SCHEMA_ONLY",
			},
		},
		Action: createDatabase,
	}
}

func createDatabase(c *cli.Context) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return errors.Wrap(err, "failed to load database config")
	}

	log.Info().Str("database", dbConfig.DBName).Msg("Starting to create database")

	if !c.Bool(schemaOnlyFlag) {
		if err := database.CreateDatabase(ctx, dbConfig); err != nil {
			return errors.Wrap(err, "failed to create database")
		}
	}

	db := database.NewPostgresDB(dbConfig)
	if err := db.Connect(ctx); err != nil {
		return errors.Wrap(err, "failed to connect to database")
	}
	defer db.Close()

	if err := database.EnsureSchema(ctx, db.Pool); err != nil {
		return errors.Wrap(err, "failed to apply schema")
	}

	log.Info().Msg("Successfully created database")
	return nil
}
