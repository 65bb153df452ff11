// Package panel implements the admin user-management workflow: a filtered,
// paginated user list with confirmation-gated point-mutations (role, premium,
// account status) and impersonation. It is headless; the admin CLI (or any
// other frontend) renders its state.
package panel

import (
	"context"

	"github.com/padhaihq/padhai/core/user"
)

// ListParams is the committed query tuple. The list re-fetches whenever any
// of these change; uncommitted search input never appears here.
type ListParams struct {
	Page     int
	PageSize int
	Search   string
	Role     string
	Status   string
	Premium  string
}

type ListResult struct {
	Users      []user.User
	Pagination user.Pagination
}

// Identity is the outcome of a successful impersonation: the caller's
// session now belongs to User and any state derived from the previous
// identity must be discarded.
type Identity struct {
	User    user.User
	Token   string
	Message string
}

// Client issues the admin API requests the panel depends on. Mutation errors
// carry the server-reported message verbatim.
type Client interface {
	ListUsers(ctx context.Context, params ListParams) (ListResult, error)
	ChangeRole(ctx context.Context, userID, role string) (string, error)
	SetPremium(ctx context.Context, userID string, isPaid bool) (string, error)
	SetDisabled(ctx context.Context, userID string, isDisabled bool) (string, error)
	Impersonate(ctx context.Context, userID string) (Identity, error)
}
