// Package wlock enforces the single-writer rule: a willow store has at
// most one live mutator at a time. It is a guard against a second process
// opening the same graph directory concurrently, not a distributed lock
// manager.
package wlock

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// Lock guards exclusive access to a graph directory via a lock file
// alongside the graph itself.
type Lock struct {
	f *flock.Flock
}

// New returns a lock for the graph directory dir.
func New(dir string) *Lock {
	return &Lock{f: flock.New(filepath.Join(dir, ".willow.lock"))}
}

// TryLock attempts to acquire the lock without blocking. It returns an
// error if another process already holds it.
func (l *Lock) TryLock() error {
	locked, err := l.f.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring willow lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another process is writing to this willow store")
	}
	return nil
}

// Unlock releases the lock. Safe to call even if TryLock was never called
// or failed.
func (l *Lock) Unlock() error {
	return l.f.Unlock()
}
