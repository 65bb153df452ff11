package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/padhaihq/padhai/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	t := repo.db.user
	t.Lock()
	defer t.Unlock()

	if usr.ID == "" {
		usr.ID = uuid.New().String()
	}
	for _, r := range t.table {
		if r.Email == usr.Email {
			return user.User{}, user.ErrEmailExists
		}
	}
	t.seq++
	t.table[usr.ID] = &row{User: usr, seq: t.seq}
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	t := repo.db.user
	t.RLock()
	defer t.RUnlock()

	if r, ok := t.table[id]; ok {
		return r.User, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	t := repo.db.user
	t.RLock()
	defer t.RUnlock()

	for _, r := range t.table {
		if strings.EqualFold(r.Email, email) {
			return r.User, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter) ([]user.User, user.Pagination, error) {
	t := repo.db.user
	t.RLock()
	defer t.RUnlock()

	matches := make([]*row, 0, len(t.table))
	for _, r := range t.table {
		if matchesFilter(r, filter) {
			matches = append(matches, r)
		}
	}

	// newest first, as listed in the panel
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].seq > matches[j].seq
	})

	total := len(matches)
	pagination := user.NewPagination(filter.Page, filter.PageSize, total)

	offset := (filter.Page - 1) * filter.PageSize
	if offset > total {
		offset = total
	}
	end := offset + filter.PageSize
	if end > total {
		end = total
	}

	users := make([]user.User, 0, end-offset)
	for _, r := range matches[offset:end] {
		users = append(users, r.User)
	}
	return users, pagination, nil
}

func matchesFilter(r *row, filter user.QueryFilter) bool {
	if filter.Search != "" {
		search := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(r.Name), search) &&
			!strings.Contains(strings.ToLower(r.Email), search) {
			return false
		}
	}
	if role := filter.RoleFilter(); role != "" && r.Role != role {
		return false
	}
	if isDisabled := filter.IsDisabled(); isDisabled != nil && r.IsDisabled != *isDisabled {
		return false
	}
	if isPaid := filter.IsPaidUser(); isPaid != nil && r.IsPaidUser != *isPaid {
		return false
	}
	return true
}

func (repo *userRepository) UpdateUserRole(_ context.Context, id, role string, isAdmin bool) (user.User, error) {
	t := repo.db.user
	t.Lock()
	defer t.Unlock()

	r, ok := t.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	r.Role = role
	r.IsAdmin = isAdmin
	return r.User, nil
}

func (repo *userRepository) UpdateUserPremium(_ context.Context, id string, isPaid bool) (user.User, error) {
	t := repo.db.user
	t.Lock()
	defer t.Unlock()

	r, ok := t.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	r.IsPaidUser = isPaid
	return r.User, nil
}

func (repo *userRepository) UpdateUserStatus(_ context.Context, id string, isDisabled bool) (user.User, error) {
	t := repo.db.user
	t.Lock()
	defer t.Unlock()

	r, ok := t.table[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	r.IsDisabled = isDisabled
	return r.User, nil
}
