package panel

import "sync"

// Invalidator is a shared user-list version counter. Every successful
// mutation bumps the version; subscribers re-fetch when notified. This keeps
// the "any write invalidates the read" contract without hidden global cache
// state.
type Invalidator struct {
	mu      sync.Mutex
	version uint64
	subs    []func(version uint64)
}

func NewInvalidator() *Invalidator {
	return &Invalidator{}
}

func (inv *Invalidator) Version() uint64 {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	return inv.version
}

// Subscribe registers fn to run on every invalidation. Subscriptions cannot
// be removed; subscribers live as long as the panel.
func (inv *Invalidator) Subscribe(fn func(version uint64)) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	inv.subs = append(inv.subs, fn)
}

// Invalidate bumps the version and notifies subscribers. Redundant
// invalidations are harmless; they only trigger extra re-fetches.
func (inv *Invalidator) Invalidate() {
	inv.mu.Lock()
	inv.version++
	version := inv.version
	subs := make([]func(uint64), len(inv.subs))
	copy(subs, inv.subs)
	inv.mu.Unlock()

	for _, fn := range subs {
		fn(version)
	}
}
