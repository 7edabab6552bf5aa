package lockmgr

import "context"

// ILockManager defines the interface for an exclusive, per-key lock manager.
// Locks are owned by transaction ids. There are no shared locks.
type ILockManager interface {
	// Acquire takes the lock of every key for txID. The keys are sorted into the global
	// lexicographic order and deduplicated before they are taken one by one. The call blocks
	// while a key is held by another transaction and returns an error with code RetCLockTimeout
	// once ctx is done. Locks taken before the failure stay held until Release.
	// Keys that sort before a key txID already holds (and are not held themselves) are rejected
	// with RetCInvalidState, since taking them could form a wait cycle.
	Acquire(ctx context.Context, txID string, keys ...string) (err error)

	// Release releases every lock held by txID atomically with respect to other Acquire and
	// Release calls and wakes all waiters. It returns the number of released locks.
	// Releasing for a transaction without locks is a no-op.
	Release(txID string) (released int)

	// Holder returns the id of the transaction holding key, if any.
	Holder(key string) (txID string, ok bool)

	// HeldBy returns the keys held by txID in acquisition (= lexicographic) order.
	HeldBy(txID string) (keys []string)
}
