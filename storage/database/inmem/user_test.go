package inmemdb_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padhaihq/padhai/core/user"
	inmemdb "github.com/padhaihq/padhai/storage/database/inmem"
	testutil "github.com/padhaihq/padhai/tests"
)

func newRepo(t *testing.T) user.Repository {
	t.Helper()
	db, err := inmemdb.Open()
	require.NoError(t, err)
	return inmemdb.NewUserRepository(db)
}

func TestUserRepositoryCRUD(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Asha Rao", "asha@padhai.in", user.RoleStudent, false, false, false)
	require.NotEmpty(t, usr.ID)

	got, err := repo.GetUserByID(ctx, usr.ID)
	require.NoError(t, err)
	assert.Equal(t, usr, got)

	got, err = repo.GetUserByEmail(ctx, "ASHA@padhai.in")
	require.NoError(t, err)
	assert.Equal(t, usr.ID, got.ID)

	_, err = repo.GetUserByID(ctx, "ghost")
	assert.Equal(t, user.ErrNotFound, err)

	_, err = repo.CreateUser(ctx, user.User{Email: "asha@padhai.in"})
	assert.Equal(t, user.ErrEmailExists, err)
}

func TestUserRepositoryUpdates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "Asha Rao", "asha@padhai.in", user.RoleStudent, false, false, false)

	got, err := repo.UpdateUserRole(ctx, usr.ID, user.RoleAdmin, true)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, got.Role)
	assert.True(t, got.IsAdmin)

	got, err = repo.UpdateUserPremium(ctx, usr.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsPaidUser)

	got, err = repo.UpdateUserStatus(ctx, usr.ID, true)
	require.NoError(t, err)
	assert.True(t, got.IsDisabled)

	_, err = repo.UpdateUserRole(ctx, "ghost", user.RoleMentor, false)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.UpdateUserPremium(ctx, "ghost", true)
	assert.Equal(t, user.ErrNotFound, err)
	_, err = repo.UpdateUserStatus(ctx, "ghost", true)
	assert.Equal(t, user.ErrNotFound, err)
}

func TestUserRepositoryFilter(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	testutil.CreateUser(t, repo, "Asha Rao", "asha@padhai.in", user.RoleStudent, false, true, false)
	testutil.CreateUser(t, repo, "Vikram Mehta", "vikram@padhai.in", user.RoleMentor, false, false, true)
	testutil.CreateUser(t, repo, "Priya Nair", "priya@padhai.in", user.RoleStudent, false, false, false)

	filter := func(mutate func(*user.QueryFilter)) user.QueryFilter {
		qf := user.QueryFilter{Page: 1, PageSize: user.DefaultPageSize}
		mutate(&qf)
		return qf
	}

	tests := []struct {
		name       string
		filter     user.QueryFilter
		wantEmails []string
	}{
		{
			name:       "no filter, newest first",
			filter:     filter(func(*user.QueryFilter) {}),
			wantEmails: []string{"priya@padhai.in", "vikram@padhai.in", "asha@padhai.in"},
		},
		{
			name:       "search matches name",
			filter:     filter(func(qf *user.QueryFilter) { qf.Search = "mehta" }),
			wantEmails: []string{"vikram@padhai.in"},
		},
		{
			name:       "search matches email",
			filter:     filter(func(qf *user.QueryFilter) { qf.Search = "PRIYA@" }),
			wantEmails: []string{"priya@padhai.in"},
		},
		{
			name:       "role filter",
			filter:     filter(func(qf *user.QueryFilter) { qf.Role = user.RoleStudent }),
			wantEmails: []string{"priya@padhai.in", "asha@padhai.in"},
		},
		{
			name:       "status filter",
			filter:     filter(func(qf *user.QueryFilter) { qf.Status = user.StatusDisabled }),
			wantEmails: []string{"vikram@padhai.in"},
		},
		{
			name:       "premium filter",
			filter:     filter(func(qf *user.QueryFilter) { qf.Premium = user.PremiumPaid }),
			wantEmails: []string{"asha@padhai.in"},
		},
		{
			name: "filters combine with AND",
			filter: filter(func(qf *user.QueryFilter) {
				qf.Role = user.RoleStudent
				qf.Premium = user.PremiumFree
			}),
			wantEmails: []string{"priya@padhai.in"},
		},
		{
			name:       "no match",
			filter:     filter(func(qf *user.QueryFilter) { qf.Search = "nobody" }),
			wantEmails: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, pagination, err := repo.FilterUsers(ctx, tt.filter)
			require.NoError(t, err)

			emails := make([]string, 0, len(users))
			for _, usr := range users {
				emails = append(emails, usr.Email)
			}
			assert.Equal(t, tt.wantEmails, emails)
			assert.Equal(t, len(tt.wantEmails), pagination.Total)
		})
	}
}

func TestUserRepositoryFilterPaginates(t *testing.T) {
	repo := newRepo(t)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		email := fmt.Sprintf("user%02d@padhai.in", i)
		testutil.CreateUser(t, repo, fmt.Sprintf("User %02d", i), email, user.RoleStudent, false, false, false)
	}

	users, pagination, err := repo.FilterUsers(ctx, user.QueryFilter{Page: 1, PageSize: user.DefaultPageSize})
	require.NoError(t, err)
	assert.Len(t, users, 20)
	assert.Equal(t, 25, pagination.Total)
	assert.Equal(t, 2, pagination.TotalPages)

	users, _, err = repo.FilterUsers(ctx, user.QueryFilter{Page: 2, PageSize: user.DefaultPageSize})
	require.NoError(t, err)
	assert.Len(t, users, 5)

	// out of range pages return empty, not an error
	users, _, err = repo.FilterUsers(ctx, user.QueryFilter{Page: 9, PageSize: user.DefaultPageSize})
	require.NoError(t, err)
	assert.Empty(t, users)
}
