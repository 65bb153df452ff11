package main

import (
	"path/filepath"

	"github.com/pressly/goose"

	"github.com/padhaihq/padhai/core"
)

var gooseRunFunc = goose.Run // mocked in tests

// migrateCmd applies database migrations via goose.
// usage: admin migrate <command> [args]; e.g. `admin migrate up`, `admin migrate down`.
func (cli *commandLine) migrateCmd(args []string) error {
	if len(args) == 0 {
		cli.printUsage()
		return errHelp
	}
	command, cmdArgs := args[0], args[1:]

	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	dir := filepath.Join(core.Getwd(), "storage", "database", "migrations")
	return gooseRunFunc(command, db.DB, dir, cmdArgs...)
}
