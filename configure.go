package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const logLevelFlag = "log-level"

func configure(app *cli.App) {
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   logLevelFlag,
			Usage:  "log level (debug, info, warn, error)",
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
	serveCMD := makeServeCMD()
	migrationCMD := makePGMigrationCMD()
	queryCMD := makeQueryCMD()
	mirrorsCMD := makeMirrorsCMD()
	app.Commands = []cli.Command{serveCMD, migrationCMD, queryCMD, mirrorsCMD}
}
