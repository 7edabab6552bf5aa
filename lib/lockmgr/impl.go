package lockmgr

import (
	"context"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"slices"
	"sync"
	"time"
)

var Logger = logger.GetLogger("lockmgr")

var (
	locksAcquired    = metrics.NewCounter("dtx_locks_acquired_total")
	lockWaits        = metrics.NewCounter("dtx_lock_waits_total")
	lockTimeouts     = metrics.NewCounter("dtx_lock_timeouts_total")
	lockWaitDuration = metrics.NewHistogram("dtx_lock_wait_duration_seconds")
)

// lockEntry is a single held lock. released is closed when the holder lets go,
// every waiter of the key blocks on it.
type lockEntry struct {
	holder   string
	released chan struct{}
}

type lockMgrImpl struct {
	// mu guards locks and held. It is never held while blocking on a lock.
	mu sync.Mutex
	// locks maps each locked key to its entry
	locks map[string]*lockEntry
	// held maps a transaction id to its keys in acquisition order (ascending)
	held map[string][]string
}

// NewLockManager creates a new in-process lock manager.
// There should be exactly one lock manager per key store, shared by all transactions.
func NewLockManager() ILockManager {
	return &lockMgrImpl{
		locks: make(map[string]*lockEntry),
		held:  make(map[string][]string),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see lockmgr/interface.go)
// --------------------------------------------------------------------------

func (lm *lockMgrImpl) Acquire(ctx context.Context, txID string, keys ...string) error {
	for _, key := range canonicalOrder(keys) {
		if err := lm.acquireOne(ctx, txID, key); err != nil {
			return err
		}
	}
	return nil
}

func (lm *lockMgrImpl) Release(txID string) int {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	keys := lm.held[txID]
	delete(lm.held, txID)

	for _, key := range keys {
		if entry, ok := lm.locks[key]; ok && entry.holder == txID {
			delete(lm.locks, key)
			close(entry.released)
		}
	}

	if len(keys) > 0 {
		Logger.Debugf("tx %s released %d lock(s)", txID, len(keys))
	}
	return len(keys)
}

func (lm *lockMgrImpl) Holder(key string) (string, bool) {
	lm.mu.Lock()
	defer lm.mu.Unlock()

	entry, ok := lm.locks[key]
	if !ok {
		return "", false
	}
	return entry.holder, true
}

func (lm *lockMgrImpl) HeldBy(txID string) []string {
	lm.mu.Lock()
	defer lm.mu.Unlock()
	return slices.Clone(lm.held[txID])
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// acquireOne takes the lock of a single key, waiting for the current holder if needed.
func (lm *lockMgrImpl) acquireOne(ctx context.Context, txID, key string) error {
	var waitStart time.Time

	for {
		lm.mu.Lock()

		entry, locked := lm.locks[key]

		// Case already ours
		if locked && entry.holder == txID {
			lm.mu.Unlock()
			return nil
		}

		// Case would break the global order
		if held := lm.held[txID]; len(held) > 0 && key < held[len(held)-1] {
			last := held[len(held)-1]
			lm.mu.Unlock()
			return store.NewError(store.RetCInvalidState,
				"tx %s: lock on %q requested after %q violates the global lock order", txID, key, last)
		}

		// Case free -> take it
		if !locked {
			lm.locks[key] = &lockEntry{
				holder:   txID,
				released: make(chan struct{}),
			}
			lm.held[txID] = append(lm.held[txID], key)
			lm.mu.Unlock()

			locksAcquired.Inc()
			if !waitStart.IsZero() {
				lockWaitDuration.UpdateDuration(waitStart)
			}
			return nil
		}

		// Case held by someone else -> wait for release and try again
		released := entry.released
		holder := entry.holder
		lm.mu.Unlock()

		if waitStart.IsZero() {
			waitStart = time.Now()
			lockWaits.Inc()
			Logger.Debugf("tx %s waits for lock on %q held by tx %s", txID, key, holder)
		}

		select {
		case <-released:
		case <-ctx.Done():
			lockTimeouts.Inc()
			return store.NewError(store.RetCLockTimeout,
				"tx %s: waiting for lock on %q: %v", txID, key, ctx.Err())
		}
	}
}

// canonicalOrder returns the keys sorted lexicographically without duplicates.
// The input slice is not modified.
func canonicalOrder(keys []string) []string {
	ordered := slices.Clone(keys)
	slices.Sort(ordered)
	return slices.Compact(ordered)
}
