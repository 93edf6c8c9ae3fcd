package main

import (
	"fmt"
	"os"
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"wheelhouse/src/database"
	"wheelhouse/src/server"
)

var Version string

func SetupLogger() {
	levelStr := strings.ToLower(os.Getenv("LOG_LEVEL"))

	level, err := logger.ParseLevel(levelStr)
	if err != nil {
		level = logger.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logger.TextFormatter{
		FullTimestamp: true,
	})
}

func main() {
	app := cli.NewApp()
	app.Name = "wheelhouse"
	app.Usage = "The Wheelhouse command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		{
			Name:        "serve",
			Usage:       "run the API server",
			Action:      serveAction,
			Flags:       []cli.Flag{},
			Description: `Run the Wheelhouse REST API`,
		},
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveAction(c *cli.Context) error {
	SetupLogger()

	if err := database.InitMainDB(); err != nil {
		logger.WithError(err).Fatal("Failed to connect to database")
	}

	server.StartServer(os.Getenv("SERVER_PORT"))
	return nil
}
