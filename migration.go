package main

import (
	"github.com/go-pg/migrations/v8"
	m "github.com/kantan-tube/web-ui/migrations"
	"github.com/kantan-tube/web-ui/services/i18n"
	"github.com/kantan-tube/web-ui/services/migration"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"golang.org/x/text/language"
)

func makePGMigrationCMD() cli.Command {
	migrateCmd := cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrates board database",
	}
	configurePGMigration(&migrateCmd)
	return migrateCmd
}

func configurePGMigration(c *cli.Command) {
	c.Subcommands = []cli.Command{
		makeMigrationSubCMD("up", "u", "Runs all available migrations"),
		makeMigrationSubCMD("down", "d", "Reverts last migration"),
		makeMigrationSubCMD("reset", "r", "Reverts all migrations"),
		makeMigrationSubCMD("version", "v", "Prints current db version"),
	}
}

func makeMigrationSubCMD(name, alias, usage string) cli.Command {
	return cli.Command{
		Name:    name,
		Usage:   usage,
		Aliases: []string{alias},
		Flags:   cs.RegisterPGFlags([]cli.Flag{}),
		Action: func(c *cli.Context) error {
			pg := cs.NewPG(c)
			defer pg.Close()
			return pgMigrate(pg, name)
		},
	}
}

func pgMigrate(pg *cs.PG, a ...string) error {
	col := migrations.NewCollection()
	m.SeedBoardWelcome(col, i18n.New(language.Japanese).T(i18n.BoardWelcome))
	return migration.NewPGMigration(pg, col).Run(a...)
}
