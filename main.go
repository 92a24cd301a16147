package main

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const logLevelFlag = "log-level"

func main() {
	app := cli.NewApp()
	app.Name = "ophim-bot"
	app.Usage = "telegram bot for searching and browsing the ophim movie catalog"
	app.Version = "0.0.1"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   logLevelFlag,
			Usage:  "log level",
			Value:  "info",
			EnvVar: "LOG_LEVEL",
		},
	}
	app.Before = func(c *cli.Context) error {
		lvl, err := log.ParseLevel(c.GlobalString(logLevelFlag))
		if err != nil {
			return err
		}
		log.SetLevel(lvl)
		return nil
	}
	configure(app)
	err := app.Run(os.Args)
	if err != nil {
		log.WithError(err).Fatal("failed to run app")
	}
}
