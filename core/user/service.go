package user

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core"
)

var (
	// errors
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")

	// policy errors; messages are surfaced verbatim to the admin panel
	ErrOwnerRole        = NewPermissionError("Cannot change owner's role")
	ErrOwnerDisable     = NewPermissionError("Cannot disable owner account")
	ErrOwnerAccount     = NewPermissionError("Cannot modify an owner account")
	ErrSelfModification = NewPermissionError("Cannot modify yourself")
	ErrAdminDemote      = NewPermissionError("Only owner can demote admin users")
	ErrAdminPromote     = NewPermissionError("Only owner can promote users to admin")
	ErrAdminPremium     = NewPermissionError("Only owner can change admin's premium status")
	ErrAdminDisable     = NewPermissionError("Only owner can disable admin accounts")
	ErrAdminImpersonate = NewPermissionError("Only owner can impersonate admin accounts")

	errInvalidRole = errors.New("Invalid role. Must be student, mentor, or admin")
)

// PermissionError is returned when the acting admin is not allowed to apply
// a mutation to the target user.
type PermissionError struct {
	msg string
}

func NewPermissionError(msg string) *PermissionError {
	return &PermissionError{msg: msg}
}

func (e *PermissionError) Error() string { return e.msg }

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields and
		// returns one page of matches ordered by CreatedAt descending.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, Pagination, error)
		UpdateUserRole(ctx context.Context, id, role string, isAdmin bool) (User, error)
		UpdateUserPremium(ctx context.Context, id string, isPaid bool) (User, error)
		UpdateUserStatus(ctx context.Context, id string, isDisabled bool) (User, error)
	}

	Service interface {
		Create(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id string) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		Filter(ctx context.Context, filter *QueryFilter) ([]User, Pagination, error)
		Authenticate(ctx context.Context, email, pwd string) (User, error)
		ChangeRole(ctx context.Context, actor User, id, role string) (User, error)
		SetPremium(ctx context.Context, actor User, id string, isPaid bool) (User, error)
		SetDisabled(ctx context.Context, actor User, id string, isDisabled bool) (User, error)
		Impersonate(ctx context.Context, actor User, id string) (User, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nu NewUser) (User, error) {
	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "checking email uniqueness")
	}

	usr := User{
		ID:           uuid.New().String(),
		Name:         nu.Name,
		Email:        nu.Email,
		IsOwner:      nu.IsOwner,
		IsPaidUser:   nu.IsPaidUser,
		CurrentLevel: 1,
		CreatedAt:    time.Now().UTC(),
	}
	usr.SetRole(nu.Role)
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}
	return svc.repo.CreateUser(ctx, usr)
}

func (svc *service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *service) Filter(ctx context.Context, filter *QueryFilter) ([]User, Pagination, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, *filter)
}

func (svc *service) Authenticate(ctx context.Context, email, pwd string) (User, error) {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return User{}, err
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrNotFound
	}
	return usr, nil
}

func (svc *service) ChangeRole(ctx context.Context, actor User, id, role string) (User, error) {
	if !ValidRole(role) {
		return User{}, core.NewValidationError(errInvalidRole, core.FieldError{Field: "role", Error: errInvalidRole.Error()})
	}

	target, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target.IsOwner {
		return User{}, ErrOwnerRole
	}
	if target.ID == actor.ID {
		return User{}, ErrSelfModification
	}
	if target.IsAdmin && !actor.IsOwner {
		return User{}, ErrAdminDemote
	}
	if role == RoleAdmin && !actor.IsOwner {
		return User{}, ErrAdminPromote
	}

	return svc.repo.UpdateUserRole(ctx, id, role, role == RoleAdmin)
}

func (svc *service) SetPremium(ctx context.Context, actor User, id string, isPaid bool) (User, error) {
	target, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target.IsOwner {
		return User{}, ErrOwnerAccount
	}
	if target.ID == actor.ID {
		return User{}, ErrSelfModification
	}
	if target.IsAdmin && !actor.IsOwner {
		return User{}, ErrAdminPremium
	}

	return svc.repo.UpdateUserPremium(ctx, id, isPaid)
}

func (svc *service) SetDisabled(ctx context.Context, actor User, id string, isDisabled bool) (User, error) {
	target, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target.IsOwner {
		return User{}, ErrOwnerDisable
	}
	if target.ID == actor.ID {
		return User{}, ErrSelfModification
	}
	if target.IsAdmin && !actor.IsOwner {
		return User{}, ErrAdminDisable
	}

	return svc.repo.UpdateUserStatus(ctx, id, isDisabled)
}

func (svc *service) Impersonate(ctx context.Context, actor User, id string) (User, error) {
	target, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if target.IsOwner {
		return User{}, ErrOwnerAccount
	}
	if target.ID == actor.ID {
		return User{}, ErrSelfModification
	}
	if target.IsAdmin && !actor.IsOwner {
		return User{}, ErrAdminImpersonate
	}
	return target, nil
}
