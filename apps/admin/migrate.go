package main

import (
	"github.com/trezcool/repostnet/apps"
	"github.com/trezcool/repostnet/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	if cli.deps.DB == nil {
		return apps.NewArgumentError("migrations need a postgres database")
	}
	return gooseRunFunc(cli.deps.DB, args[0], args[1:]...)
}
