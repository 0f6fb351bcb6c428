package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradejournal/src/database"
	"tradejournal/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Trade Journal CMD"
	app.Usage = "The trade journal command line interface"

	app.Commands = []cli.Command{
		serveCMD,
		migrateCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the API server",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the journal API server`,
	}
	migrateCMD = cli.Command{
		Name:        "migrate",
		Usage:       "run database migrations",
		Action:      migrateAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Apply the schema migrations and exit`,
	}
)

func serveAction(_ *cli.Context) error {

	logrus.Info("Starting serve CMD")
	logrus.WithField("cmd", "serve")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	server.StartServer(server.GetConfig().Port)
	return nil
}

func migrateAction(_ *cli.Context) error {

	logrus.Info("Starting migrate CMD")
	logrus.WithField("cmd", "migrate")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	logrus.Info("Migrations applied")
	return nil
}
