package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/padhaihq/padhai/core/user"
)

const userColumns = `id, name, email, role, is_admin, is_paid_user, is_owner, is_disabled,
	current_level, total_points, password_hash, created_at`

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	var created user.User
	err := repo.db.GetContext(
		ctx, &created,
		`INSERT INTO users (id, name, email, role, is_admin, is_paid_user, is_owner, is_disabled,
			current_level, total_points, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING `+userColumns,
		usr.ID, usr.Name, usr.Email, usr.Role, usr.IsAdmin, usr.IsPaidUser, usr.IsOwner,
		usr.IsDisabled, usr.CurrentLevel, usr.TotalPoints, usr.PasswordHash, usr.CreatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return created, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by ID")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM users WHERE LOWER(email) = LOWER($1)`, email)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user by email")
	}
	return usr, nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, user.Pagination, error) {
	var conds []string
	var args []interface{}

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		pattern := arg("%" + filter.Search + "%")
		conds = append(conds, fmt.Sprintf("(name ILIKE %s OR email ILIKE %s)", pattern, pattern))
	}
	if role := filter.RoleFilter(); role != "" {
		conds = append(conds, fmt.Sprintf("role = %s", arg(role)))
	}
	if isDisabled := filter.IsDisabled(); isDisabled != nil {
		conds = append(conds, fmt.Sprintf("is_disabled = %s", arg(*isDisabled)))
	}
	if isPaid := filter.IsPaidUser(); isPaid != nil {
		conds = append(conds, fmt.Sprintf("is_paid_user = %s", arg(*isPaid)))
	}

	var where string
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := repo.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM users`+where, args...); err != nil {
		return nil, user.Pagination{}, errors.Wrap(err, "counting users")
	}

	query := fmt.Sprintf(
		`SELECT `+userColumns+` FROM users%s ORDER BY created_at DESC LIMIT %s OFFSET %s`,
		where, arg(filter.PageSize), arg((filter.Page-1)*filter.PageSize),
	)
	users := make([]user.User, 0, filter.PageSize)
	if err := repo.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, user.Pagination{}, errors.Wrap(err, "querying users")
	}

	return users, user.NewPagination(filter.Page, filter.PageSize, total), nil
}

func (repo *userRepository) UpdateUserRole(ctx context.Context, id, role string, isAdmin bool) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(
		ctx, &usr,
		`UPDATE users SET role = $1, is_admin = $2 WHERE id = $3 RETURNING `+userColumns,
		role, isAdmin, id,
	)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user role")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUserPremium(ctx context.Context, id string, isPaid bool) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(
		ctx, &usr,
		`UPDATE users SET is_paid_user = $1 WHERE id = $2 RETURNING `+userColumns,
		isPaid, id,
	)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user premium")
	}
	return usr, nil
}

func (repo *userRepository) UpdateUserStatus(ctx context.Context, id string, isDisabled bool) (user.User, error) {
	var usr user.User
	err := repo.db.GetContext(
		ctx, &usr,
		`UPDATE users SET is_disabled = $1 WHERE id = $2 RETURNING `+userColumns,
		isDisabled, id,
	)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "updating user status")
	}
	return usr, nil
}
