package main

import (
	"context"

	"github.com/pressly/goose/v3"

	appfs "github.com/azedu/quizdesk/fs"
)

var gooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrate(args []string) error {
	goose.SetBaseFS(appfs.FS)
	if err := goose.SetDialect(cli.conf.Database.Engine); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(context.Background(), args[0], cli.db.DB, "migrations", arguments...)
}
