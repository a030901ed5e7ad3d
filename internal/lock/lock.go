package lock

import "context"

// Locker runs fn while holding locks on every key.
type Locker interface {
	LockTransaction(ctx context.Context, keys []string, fn func() error) error
	Close() error
}
