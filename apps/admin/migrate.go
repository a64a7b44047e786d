package main

import (
	"context"

	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	appfs "github.com/trezcool/hostel/fs"
	"github.com/trezcool/hostel/storage/database"
)

var gooseRunFunc = goose.RunContext // mockable

func (cli *commandLine) migrate(ctx context.Context, args []string) error {
	dialect, err := database.Dialect(cli.db.DriverName())
	if err != nil {
		return err
	}
	if err := goose.SetDialect(string(dialect)); err != nil {
		return errors.Wrap(err, "setting goose dialect")
	}
	goose.SetBaseFS(appfs.FS)
	defer goose.SetBaseFS(nil)

	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(ctx, args[0], cli.db.DB, "migrations", arguments...)
}
