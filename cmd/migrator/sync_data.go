package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"tvshow-catalog/internal/config"
	"tvshow-catalog/pkg/container"
)

const (
	earliestPremiereFlag = "earliest-premiere"
	maxExecutionFlag     = "max-execution-time"
	jsonOutputFlag       = "json"
)

func makeSyncDataCMD() cli.Command {
	return cli.Command{
		Name:    "sync-data",
		Aliases: []string{"s"},
		Usage:   "Imports shows added to TVMaze since the last sync",
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  earliestPremiereFlag,
				Usage: "skip shows premiered before this date (yyyy-MM-dd), overrides SYNC_EARLIEST_PREMIERE_DATE",
			},
			cli.DurationFlag{
				Name:  maxExecutionFlag,
				Usage: "budget for reading TVMaze pages, overrides SYNC_MAX_EXECUTION_TIME",
			},
			cli.BoolFlag{
				Name:  jsonOutputFlag,
				Usage: "print the sync result as JSON",
			},
		},
		Action: syncData,
	}
}

func syncData(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	if v := c.String(earliestPremiereFlag); v != "" {
		cfg.Sync.EarliestPremiereDate = v
	}
	if v := c.Duration(maxExecutionFlag); v > 0 {
		cfg.Sync.MaxExecutionTime = v
	}
	if err := cfg.Validate(); err != nil {
		return errors.Wrap(err, "invalid sync options")
	}

	appContainer, err := container.NewContainerWithConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "failed to initialize container")
	}
	defer appContainer.Cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := appContainer.SyncManager.Sync(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to sync data")
	}

	if c.Bool(jsonOutputFlag) {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return errors.Wrap(err, "failed to encode result")
		}
		fmt.Fprintln(c.App.Writer, string(out))
		return nil
	}

	log.Info().
		Int64("latest_origin_id", result.LatestOriginID).
		Int("fetched", result.Fetched).
		Int64("shows_added", result.ShowsAdded).
		Msg("Sync finished")
	return nil
}
