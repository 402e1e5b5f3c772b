package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli"

	"tvshow-catalog/pkg/logger"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	app := cli.NewApp()
	app.Name = "tvshow-migrator"
	app.Usage = "Creates the catalog database and imports shows from TVMaze"
	app.Version = "1.0.0"
	configure(app)

	if err := app.Run(os.Args); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

func configure(app *cli.App) {
	app.Commands = []cli.Command{
		makeCreateDatabaseCMD(),
		makeSyncDataCMD(),
	}
}
