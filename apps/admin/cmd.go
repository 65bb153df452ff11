package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"syscall"

	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	openDBFunc       = database.Open     // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	conf *core.Config
	std  *log.Logger
	in   io.Reader
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  listusers   -email ADMIN_EMAIL [-search TEXT] [-role all|student|mentor|admin] [-status all|enabled|disabled] [-premium all|true|false] [-page N] - list users")
	fmt.Fprintln(cli.out, "  setrole     -email ADMIN_EMAIL -user ID|EMAIL -role student|mentor|admin - change a user's role")
	fmt.Fprintln(cli.out, "  setpremium  -email ADMIN_EMAIL -user ID|EMAIL - toggle a user's premium access")
	fmt.Fprintln(cli.out, "  setstatus   -email ADMIN_EMAIL -user ID|EMAIL - enable or disable a user's account")
	fmt.Fprintln(cli.out, "  impersonate -email ADMIN_EMAIL -user ID|EMAIL - switch the session to a user")
	fmt.Fprintln(cli.out, "  adduser     -name NAME -email EMAIL [-role ROLE] [-owner] [-paid] - create a user; the password is prompted")
	fmt.Fprintln(cli.out, "  migrate     COMMAND [args] - run database migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "listusers":
		return cli.listUsersCmd(args[2:])
	case "setrole":
		return cli.setRoleCmd(args[2:])
	case "setpremium":
		return cli.setPremiumCmd(args[2:])
	case "setstatus":
		return cli.setStatusCmd(args[2:])
	case "impersonate":
		return cli.impersonateCmd(args[2:])
	case "adduser":
		return cli.addUserCmd(args[2:])
	case "migrate":
		return cli.migrateCmd(args[2:])
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) openDB() (*sqlx.DB, error) {
	return openDBFunc(cli.conf)
}

func (cli *commandLine) promptPassword(label string) (string, error) {
	fmt.Fprint(cli.out, label)
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	return string(pwd), nil
}
