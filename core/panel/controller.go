package panel

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core/user"
)

var (
	errNotPermitted     = errors.New("action not permitted for this user")
	errConfirmPending   = errors.New("another confirmation is already pending")
	errNoConfirmPending = errors.New("no confirmation pending")
)

// State is a render snapshot of the user list.
type State struct {
	Loading    bool
	Err        error
	Users      []user.User
	Pagination user.Pagination
}

// NoUsersFound reports whether the list settled on an empty result. It is
// distinct from the loading and error states.
func (s State) NoUsersFound() bool {
	return !s.Loading && s.Err == nil && len(s.Users) == 0
}

type (
	// Options configures a Controller. Actor and Client are required; the
	// rest default to sane zero behavior.
	Options struct {
		// Actor is the acting admin; it gates per-row controls and never
		// changes for the life of the Controller.
		Actor user.User

		Client Client

		// Invalidator may be shared between several controllers so that any
		// write through one re-fetches all. A private one is created when nil.
		Invalidator *Invalidator

		// OnChange observes every State transition.
		OnChange func(State)

		// OnReset is the impersonation full-context-reset hook: the previous
		// identity's state (this Controller included) must be thrown away.
		OnReset func(Identity)
	}

	Controller struct {
		mu      sync.Mutex
		actor   user.User
		client  Client
		filters *Filters
		inv     *Invalidator
		state   State
		seq     uint64 // latest issued list query
		pending Action // open confirmation, nil when closed

		onChange func(State)
		onReset  func(Identity)
	}
)

func NewController(opts *Options) *Controller {
	c := &Controller{
		actor:    opts.Actor,
		client:   opts.Client,
		filters:  NewFilters(),
		inv:      opts.Invalidator,
		onChange: opts.OnChange,
		onReset:  opts.OnReset,
	}
	if c.inv == nil {
		c.inv = NewInvalidator()
	}
	c.inv.Subscribe(func(uint64) { c.Refresh(context.Background()) })
	return c
}

func (c *Controller) Actor() user.User { return c.actor }

func (c *Controller) Invalidator() *Invalidator { return c.inv }

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Params snapshots the committed query tuple.
func (c *Controller) Params() ListParams {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filters.Params()
}

// CanModify reports whether the acting admin may mutate target at all.
func (c *Controller) CanModify(target user.User) bool {
	return user.CanModify(c.actor, target)
}

// AssignableRoles lists the role options enabled for target's role menu.
func (c *Controller) AssignableRoles(target user.User) []string {
	return user.AssignableRoles(c.actor, target)
}

// Refresh queries one page of users with the current parameters. Every call
// supersedes any in-flight query: a response that arrives for stale
// parameters is discarded rather than overwriting newer state.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	params := c.filters.Params()
	c.state.Loading = true
	c.state.Err = nil
	snapshot := c.state
	c.mu.Unlock()
	c.notify(snapshot)

	res, err := c.client.ListUsers(ctx, params)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	c.state.Loading = false
	if err != nil {
		// no partial results: an error discards previously displayed data
		c.state.Err = err
		c.state.Users = nil
		c.state.Pagination = user.Pagination{}
	} else {
		c.state.Err = nil
		c.state.Users = res.Users
		c.state.Pagination = res.Pagination
	}
	snapshot = c.state
	c.mu.Unlock()
	c.notify(snapshot)
}

// Retry re-runs the last query after a load error. There is no automatic
// retry or backoff; this is the manual affordance.
func (c *Controller) Retry(ctx context.Context) {
	c.Refresh(ctx)
}

func (c *Controller) SetPage(ctx context.Context, page int) {
	c.mu.Lock()
	c.filters.SetPage(page)
	c.mu.Unlock()
	c.Refresh(ctx)
}

func (c *Controller) SetRole(ctx context.Context, role string) {
	c.mu.Lock()
	c.filters.SetRole(role)
	c.mu.Unlock()
	c.Refresh(ctx)
}

func (c *Controller) SetStatus(ctx context.Context, status string) {
	c.mu.Lock()
	c.filters.SetStatus(status)
	c.mu.Unlock()
	c.Refresh(ctx)
}

func (c *Controller) SetPremium(ctx context.Context, premium string) {
	c.mu.Lock()
	c.filters.SetPremium(premium)
	c.mu.Unlock()
	c.Refresh(ctx)
}

// Apply mutates the filters atomically and re-queries once. Batch callers
// use it to avoid one query per filter change.
func (c *Controller) Apply(ctx context.Context, fn func(*Filters)) {
	c.mu.Lock()
	fn(c.filters)
	c.mu.Unlock()
	c.Refresh(ctx)
}

// SetSearchInput buffers search text without querying.
func (c *Controller) SetSearchInput(s string) {
	c.mu.Lock()
	c.filters.SetSearchInput(s)
	c.mu.Unlock()
}

// SubmitSearch commits the buffered search text and re-queries from page 1.
func (c *Controller) SubmitSearch(ctx context.Context) {
	c.mu.Lock()
	c.filters.SubmitSearch()
	c.mu.Unlock()
	c.Refresh(ctx)
}

// Impersonate switches the session to target. On success the OnReset hook
// fires and this Controller must be considered stale: impersonation is a
// full context reset, never a soft transition carrying cached state over.
func (c *Controller) Impersonate(ctx context.Context, target user.User) (Identity, error) {
	if !c.CanModify(target) {
		return Identity{}, errNotPermitted
	}
	identity, err := c.client.Impersonate(ctx, target.ID)
	if err != nil {
		return Identity{}, err
	}
	if c.onReset != nil {
		c.onReset(identity)
	}
	return identity, nil
}

func (c *Controller) notify(s State) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
