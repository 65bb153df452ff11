package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core/panel"
	"github.com/padhaihq/padhai/core/user"
	apisvc "github.com/padhaihq/padhai/services/api"
)

var errUserNotInList = errors.New("user not found in the list")

// login authenticates the acting admin and builds the panel controller
// driving the user-management workflow.
func (cli *commandLine) login(ctx context.Context, email string) (*panel.Controller, error) {
	pwd, err := cli.promptPassword("Enter password: ")
	if err != nil {
		return nil, err
	}

	client := apisvc.NewClient(cli.conf, "")
	identity, err := client.Login(ctx, email, pwd)
	if err != nil {
		return nil, errors.Wrap(err, "logging in")
	}

	return panel.NewController(&panel.Options{
		Actor:  identity.User,
		Client: client.WithToken(identity.Token),
		OnReset: func(id panel.Identity) {
			// full context reset: everything tied to the admin session is stale now
			fmt.Fprintln(cli.out, id.Message)
			fmt.Fprintln(cli.out, "New session token (the current session is discarded):")
			fmt.Fprintln(cli.out, id.Token)
		},
	}), nil
}

func (cli *commandLine) listUsersCmd(args []string) error {
	fs := flag.NewFlagSet("listusers", flag.ExitOnError)
	email := fs.String("email", "", "The acting admin's email. The password will be prompted next.")
	search := fs.String("search", "", "Match on user name or email.")
	role := fs.String("role", user.FilterAll, "Filter by role.")
	status := fs.String("status", user.FilterAll, "Filter by account status.")
	premium := fs.String("premium", user.FilterAll, "Filter by premium access.")
	page := fs.Int("page", 1, "Page number.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fs.Usage()
		return errHelp
	}

	ctx := context.Background()
	ctrl, err := cli.login(ctx, *email)
	if err != nil {
		return err
	}

	ctrl.Apply(ctx, func(f *panel.Filters) {
		if *search != "" {
			f.SetSearchInput(*search)
			f.SubmitSearch()
		}
		f.SetRole(*role)
		f.SetStatus(*status)
		f.SetPremium(*premium)
		f.SetPage(*page) // last; filter changes reset the page
	})
	return cli.renderList(ctrl.State())
}

func (cli *commandLine) renderList(state panel.State) error {
	if state.Err != nil {
		return state.Err
	}
	if state.NoUsersFound() {
		fmt.Fprintln(cli.out, "No users found")
		return nil
	}

	w := tabwriter.NewWriter(cli.out, 0, 8, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE\tPREMIUM\tSTATUS\tLEVEL\tPOINTS\tCREATED")
	for _, usr := range state.Users {
		status := "enabled"
		if usr.IsDisabled {
			status = "disabled"
		}
		premium := "-"
		if usr.IsPaidUser {
			premium = "premium"
		}
		role := usr.Role
		if usr.IsOwner {
			role += " (owner)"
		}
		fmt.Fprintf(
			w, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			usr.ID, usr.Name, usr.Email, role, premium, status,
			usr.CurrentLevel, usr.TotalPoints, usr.CreatedAt.Format("2006-01-02"),
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	p := state.Pagination
	fmt.Fprintf(cli.out, "\nPage %d of %d (%d users)\n", p.Page, p.TotalPages, p.Total)
	return nil
}

// findTarget locates the target row the way the panel does: by re-querying
// the list, either searching by email or paging through by ID.
func (cli *commandLine) findTarget(ctx context.Context, ctrl *panel.Controller, needle string) (user.User, error) {
	if strings.Contains(needle, "@") {
		ctrl.Apply(ctx, func(f *panel.Filters) {
			f.SetSearchInput(needle)
			f.SubmitSearch()
		})
		state := ctrl.State()
		if state.Err != nil {
			return user.User{}, state.Err
		}
		for _, usr := range state.Users {
			if strings.EqualFold(usr.Email, needle) {
				return usr, nil
			}
		}
		return user.User{}, errUserNotInList
	}

	for page := 1; ; page++ {
		ctrl.SetPage(ctx, page)
		state := ctrl.State()
		if state.Err != nil {
			return user.User{}, state.Err
		}
		for _, usr := range state.Users {
			if usr.ID == needle {
				return usr, nil
			}
		}
		if page >= state.Pagination.TotalPages {
			return user.User{}, errUserNotInList
		}
	}
}

// confirm renders the pending confirmation dialog and reads the answer.
func (cli *commandLine) confirm(action panel.Action) (bool, error) {
	if action.Destructive() {
		fmt.Fprintln(cli.out, "WARNING: this action is destructive.")
	}
	fmt.Fprintf(cli.out, "%s [y/N]: ", action.Describe())

	scanner := bufio.NewScanner(cli.in)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes", nil
}

// runConfirmed walks the pending action through the confirmation gate.
func (cli *commandLine) runConfirmed(ctx context.Context, ctrl *panel.Controller) error {
	ok, err := cli.confirm(ctrl.Pending())
	if err != nil {
		return err
	}
	if !ok {
		ctrl.Cancel()
		fmt.Fprintln(cli.out, "Cancelled. No changes made.")
		return nil
	}

	msg, err := ctrl.Confirm(ctx)
	if err != nil {
		// the gate stays open for interactive retry; the CLI just reports
		ctrl.Cancel()
		return err
	}
	fmt.Fprintln(cli.out, msg)
	return nil
}

func (cli *commandLine) setRoleCmd(args []string) error {
	fs := flag.NewFlagSet("setrole", flag.ExitOnError)
	email := fs.String("email", "", "The acting admin's email. The password will be prompted next.")
	target := fs.String("user", "", "The target user's ID or email.")
	role := fs.String("role", "", "The new role: student, mentor or admin.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *target == "" || *role == "" {
		fs.Usage()
		return errHelp
	}

	ctx := context.Background()
	ctrl, err := cli.login(ctx, *email)
	if err != nil {
		return err
	}
	usr, err := cli.findTarget(ctx, ctrl, *target)
	if err != nil {
		return err
	}
	if err := ctrl.OpenRoleChange(usr, strings.ToLower(*role)); err != nil {
		return err
	}
	return cli.runConfirmed(ctx, ctrl)
}

func (cli *commandLine) setPremiumCmd(args []string) error {
	fs := flag.NewFlagSet("setpremium", flag.ExitOnError)
	email := fs.String("email", "", "The acting admin's email. The password will be prompted next.")
	target := fs.String("user", "", "The target user's ID or email.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *target == "" {
		fs.Usage()
		return errHelp
	}

	ctx := context.Background()
	ctrl, err := cli.login(ctx, *email)
	if err != nil {
		return err
	}
	usr, err := cli.findTarget(ctx, ctrl, *target)
	if err != nil {
		return err
	}
	if err := ctrl.OpenPremiumToggle(usr); err != nil {
		return err
	}
	return cli.runConfirmed(ctx, ctrl)
}

func (cli *commandLine) setStatusCmd(args []string) error {
	fs := flag.NewFlagSet("setstatus", flag.ExitOnError)
	email := fs.String("email", "", "The acting admin's email. The password will be prompted next.")
	target := fs.String("user", "", "The target user's ID or email.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *target == "" {
		fs.Usage()
		return errHelp
	}

	ctx := context.Background()
	ctrl, err := cli.login(ctx, *email)
	if err != nil {
		return err
	}
	usr, err := cli.findTarget(ctx, ctrl, *target)
	if err != nil {
		return err
	}
	if err := ctrl.OpenStatusToggle(usr); err != nil {
		return err
	}
	return cli.runConfirmed(ctx, ctrl)
}

func (cli *commandLine) impersonateCmd(args []string) error {
	fs := flag.NewFlagSet("impersonate", flag.ExitOnError)
	email := fs.String("email", "", "The acting admin's email. The password will be prompted next.")
	target := fs.String("user", "", "The target user's ID or email.")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *target == "" {
		fs.Usage()
		return errHelp
	}

	ctx := context.Background()
	ctrl, err := cli.login(ctx, *email)
	if err != nil {
		return err
	}
	usr, err := cli.findTarget(ctx, ctrl, *target)
	if err != nil {
		return err
	}

	// the OnReset hook prints the new session; the old controller is stale now
	if _, err := ctrl.Impersonate(ctx, usr); err != nil {
		return err
	}
	return nil
}
