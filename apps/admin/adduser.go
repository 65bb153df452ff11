package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/padhaihq/padhai/core"
	"github.com/padhaihq/padhai/core/user"
	sqlxrepos "github.com/padhaihq/padhai/storage/database/sqlx"
)

// addUserCmd writes straight to the database: it is the bootstrap path for
// the very first owner account, before any admin can log in over the API.
func (cli *commandLine) addUserCmd(args []string) error {
	fs := flag.NewFlagSet("adduser", flag.ExitOnError)
	name := fs.String("name", "", "The user's full name.")
	email := fs.String("email", "", "The user's email.")
	role := fs.String("role", user.RoleStudent, "The user's role: student, mentor or admin.")
	owner := fs.Bool("owner", false, "Mark the user as the platform owner. Implies the admin role.")
	paid := fs.Bool("paid", false, "Grant premium access.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" {
		fs.Usage()
		return errHelp
	}

	pwd, err := cli.promptPassword("Enter password: ")
	if err != nil {
		return err
	}
	pwd2, err := cli.promptPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if pwd != pwd2 {
		return fmt.Errorf("passwords do not match")
	}

	nu := user.NewUser{
		Name:       *name,
		Email:      *email,
		Password:   pwd,
		Role:       *role,
		IsOwner:    *owner,
		IsPaidUser: *paid,
	}
	if nu.IsOwner {
		nu.Role = user.RoleAdmin
	}
	if err := nu.Validate(newValidator()); err != nil {
		return err
	}

	db, err := cli.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	usr, err := user.NewService(sqlxrepos.NewUserRepository(db)).Create(context.Background(), nu)
	if err != nil {
		return err
	}

	fmt.Fprintf(cli.out, "User created: %s <%s> (%s)\n", usr.Name, usr.Email, usr.ID)
	return nil
}

func newValidator() *validator.Validate {
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.RegisterCustomValidators(validate, translator)
	return validate
}
