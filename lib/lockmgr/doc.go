// Package lockmgr implements the pessimistic locking used by dTX transactions.
// Every lock is exclusive and owned by a transaction id. There are no shared
// (read) locks since every access reads and then writes within one transaction.
//
// Core Functionality:
//   - Blocking acquisition of a set of keys in one fixed global order
//   - Atomic release of all locks of a transaction
//   - Optional bounded waits through context cancellation
//
// Implementation Approach:
//
//	The lock table is a single map from key to entry, guarded by a mutex. An entry
//	stores the holder and a channel that is closed on release. A transaction that
//	finds a key held by someone else drops the mutex, waits on that channel (or its
//	context) and retries.
//
//	- Lock Ordering: Acquire sorts and deduplicates the requested keys
//	  lexicographically and takes them one at a time. Incremental acquisitions by
//	  the same transaction may only add keys that sort after every key it already
//	  holds. Because every transaction climbs the same total order, no wait cycle
//	  can form and deadlock detection or victim selection is not needed.
//
//	- Release: Release removes every entry of the transaction in one critical
//	  section and closes their channels, waking all waiters at once. Waiters race
//	  for the lock, there is no FIFO fairness.
//
//	- Timeouts: Acquire returns a RetCLockTimeout error as soon as its context is
//	  done. Locks taken earlier in the same call are kept, the caller is expected
//	  to Release (the transaction manager does this as part of rollback).
//
// Metrics:
//
//	dtx_locks_acquired_total, dtx_lock_waits_total, dtx_lock_timeouts_total and the
//	dtx_lock_wait_duration_seconds histogram are registered with the default
//	VictoriaMetrics set.
//
// Usage Example:
//
//	locks := lockmgr.NewLockManager()
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//
//	if err := locks.Acquire(ctx, txID, "Eve", "Bob", "Dave", "Alice"); err != nil {
//	    locks.Release(txID)
//	    return err
//	}
//	// ... work on Alice, Bob, Dave, Eve ...
//	locks.Release(txID)
package lockmgr
