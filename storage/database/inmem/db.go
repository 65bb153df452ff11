package inmemdb

import (
	"sync"

	"github.com/padhaihq/padhai/core/user"
)

type (
	// DB is a mutex-guarded in-memory store used by tests and local runs.
	DB struct {
		user *userTable
	}

	row struct {
		user.User
		seq uint64 // insertion order, tie-breaks equal timestamps
	}

	userTable struct {
		sync.RWMutex
		table map[string]*row
		seq   uint64
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[string]*row)},
	}
	return db, nil
}
