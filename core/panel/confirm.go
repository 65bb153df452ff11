package panel

import (
	"context"
	"fmt"

	"github.com/padhaihq/padhai/core/user"
)

// Action is one pending confirmation: a snapshot of the target row and the
// intended new value, taken when the dialog opened. Each kind carries only
// the fields it needs.
type Action interface {
	UserID() string
	UserName() string
	// Describe renders the confirmation prompt for this action.
	Describe() string
	// Destructive marks actions that warrant distinct warning styling.
	Destructive() bool

	dispatch(ctx context.Context, client Client) (string, error)
}

type RoleChange struct {
	ID          string
	Name        string
	CurrentRole string
	NewRole     string
}

func (a RoleChange) UserID() string    { return a.ID }
func (a RoleChange) UserName() string  { return a.Name }
func (a RoleChange) Destructive() bool { return false }

func (a RoleChange) Describe() string {
	return fmt.Sprintf("Are you sure you want to change %s's role from %q to %q?", a.Name, a.CurrentRole, a.NewRole)
}

func (a RoleChange) dispatch(ctx context.Context, client Client) (string, error) {
	return client.ChangeRole(ctx, a.ID, a.NewRole)
}

type PremiumToggle struct {
	ID      string
	Name    string
	Current bool
	New     bool
}

func (a PremiumToggle) UserID() string    { return a.ID }
func (a PremiumToggle) UserName() string  { return a.Name }
func (a PremiumToggle) Destructive() bool { return false }

func (a PremiumToggle) Describe() string {
	if a.New {
		return fmt.Sprintf("Are you sure you want to grant premium access to %s?", a.Name)
	}
	return fmt.Sprintf("Are you sure you want to revoke premium access from %s?", a.Name)
}

func (a PremiumToggle) dispatch(ctx context.Context, client Client) (string, error) {
	return client.SetPremium(ctx, a.ID, a.New)
}

type StatusToggle struct {
	ID      string
	Name    string
	Current bool // isDisabled before the toggle
	New     bool
}

func (a StatusToggle) UserID() string   { return a.ID }
func (a StatusToggle) UserName() string { return a.Name }

// Destructive: disabling locks the user out.
func (a StatusToggle) Destructive() bool { return a.New }

func (a StatusToggle) Describe() string {
	if a.New {
		return fmt.Sprintf("Are you sure you want to disable %s's account? They will not be able to log in.", a.Name)
	}
	return fmt.Sprintf("Are you sure you want to enable %s's account?", a.Name)
}

func (a StatusToggle) dispatch(ctx context.Context, client Client) (string, error) {
	return client.SetDisabled(ctx, a.ID, a.New)
}

// OpenRoleChange opens the confirmation dialog for a role change.
// At most one confirmation may be pending at a time.
func (c *Controller) OpenRoleChange(target user.User, newRole string) error {
	if !user.CanAssignRole(c.actor, target, newRole) {
		return errNotPermitted
	}
	return c.open(RoleChange{
		ID:          target.ID,
		Name:        target.Name,
		CurrentRole: target.Role,
		NewRole:     newRole,
	})
}

// OpenPremiumToggle opens the confirmation dialog flipping target's premium flag.
func (c *Controller) OpenPremiumToggle(target user.User) error {
	if !c.CanModify(target) {
		return errNotPermitted
	}
	return c.open(PremiumToggle{
		ID:      target.ID,
		Name:    target.Name,
		Current: target.IsPaidUser,
		New:     !target.IsPaidUser,
	})
}

// OpenStatusToggle opens the confirmation dialog flipping target's disabled flag.
func (c *Controller) OpenStatusToggle(target user.User) error {
	if !c.CanModify(target) {
		return errNotPermitted
	}
	return c.open(StatusToggle{
		ID:      target.ID,
		Name:    target.Name,
		Current: target.IsDisabled,
		New:     !target.IsDisabled,
	})
}

func (c *Controller) open(action Action) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return errConfirmPending
	}
	c.pending = action
	return nil
}

// Pending returns the open confirmation, or nil when the dialog is closed.
func (c *Controller) Pending() Action {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Cancel closes the dialog with no side effect.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = nil
}

// Confirm dispatches the pending mutation. On success the dialog closes, the
// shared list version is invalidated (forcing a re-fetch) and the server's
// success message is returned. On failure the dialog stays open so the admin
// can retry or cancel, and the server's error message is returned verbatim.
func (c *Controller) Confirm(ctx context.Context) (string, error) {
	c.mu.Lock()
	action := c.pending
	c.mu.Unlock()
	if action == nil {
		return "", errNoConfirmPending
	}

	msg, err := action.dispatch(ctx, c.client)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
	c.inv.Invalidate()
	return msg, nil
}
