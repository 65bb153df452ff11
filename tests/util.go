package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/padhaihq/padhai/core/user"
)

// Password is the plaintext password shared by all test fixtures.
const Password = "Str0ngpwd!"

var userCount int

// CreateUser persists a user fixture with the shared test Password.
// Users are created with strictly increasing CreatedAt so list ordering
// (newest first) is deterministic.
func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, role string,
	isOwner, isPaid, isDisabled bool,
) user.User {
	t.Helper()

	userCount++
	usr := user.User{
		Name:         name,
		Email:        email,
		IsOwner:      isOwner,
		IsPaidUser:   isPaid,
		IsDisabled:   isDisabled,
		CurrentLevel: 1,
		CreatedAt:    time.Now().UTC().Add(time.Duration(userCount) * time.Millisecond),
	}
	usr.SetRole(role)
	require.NoError(t, usr.SetPassword(Password))

	usr, err := repo.CreateUser(context.Background(), usr)
	require.NoError(t, err)
	return usr
}
