package txn

import (
	"context"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/pkg/errors"
	"github.com/tidwall/btree"
	"sync"
	"time"
)

// entry is the transaction-local view of one key.
type entry struct {
	before  int64 // balance when loaded (meaningless for created entries)
	after   int64 // balance to apply on commit
	created bool  // key did not exist and is inserted on commit
	dirty   bool  // after differs from the stored state and must be applied
}

// Tx is a pessimistic transaction. Every key it touches is locked from the first
// access until the transaction is finished, and all writes are buffered in a
// key-ordered working set that becomes visible only on commit.
//
// A Tx is meant to be used by one goroutine. Rollback may be called from any
// goroutine at any time, e.g. to cancel a transaction blocked on a lock.
type Tx struct {
	id       string
	mgr      *Manager
	readOnly bool

	mu    sync.Mutex
	state State
	ws    *btree.Map[string, *entry]

	// closed when the transaction reaches a terminal state, aborts lock waits
	finished chan struct{}
}

// ID returns the transaction id. It is invalid once the transaction is finished.
func (tx *Tx) ID() string {
	return tx.id
}

// State returns the current lifecycle state.
func (tx *Tx) State() State {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	return tx.state
}

// Keys returns the keys in the working set in lexicographic order.
func (tx *Tx) Keys() []string {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.ws == nil {
		return nil
	}
	keys := make([]string, 0, tx.ws.Len())
	tx.ws.Scan(func(key string, _ *entry) bool {
		keys = append(keys, key)
		return true
	})
	return keys
}

// --------------------------------------------------------------------------
// Operations
// --------------------------------------------------------------------------

// Lock acquires the locks of keys in the global key order.
// Acquiring the full key set up front is what makes a transaction deadlock free.
// On failure the transaction is rolled back.
func (tx *Tx) Lock(ctx context.Context, keys ...string) error {
	tx.mu.Lock()
	if err := tx.checkActive(); err != nil {
		tx.mu.Unlock()
		return err
	}
	tx.mu.Unlock()

	// tx.mu is not held while waiting so Rollback stays possible
	lockCtx, cancel := tx.mgr.lockContext(ctx)
	lockCtx, abort := context.WithCancel(lockCtx)
	go func() {
		select {
		case <-tx.finished:
			abort()
		case <-lockCtx.Done():
		}
	}()
	err := tx.mgr.locks.Acquire(lockCtx, tx.id, keys...)
	abort()
	cancel()

	tx.mu.Lock()
	defer tx.mu.Unlock()

	if tx.state != StateActive {
		// rolled back concurrently, drop whatever was taken after that
		tx.mgr.locks.Release(tx.id)
		return tx.checkActive()
	}
	if err != nil {
		tx.abortLocked(err)
		return err
	}
	return nil
}

// Read returns the balance of key as seen by this transaction.
// The first read of a key locks it and loads it from the store into the working set.
// A missing key fails with RetCNotFound and rolls the transaction back.
func (tx *Tx) Read(ctx context.Context, key string) (int64, error) {
	tx.mu.Lock()
	if err := tx.checkActive(); err != nil {
		tx.mu.Unlock()
		return 0, err
	}
	if e, ok := tx.ws.Get(key); ok {
		tx.mu.Unlock()
		return e.after, nil
	}
	tx.mu.Unlock()

	if err := tx.Lock(ctx, key); err != nil {
		return 0, err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkActive(); err != nil {
		return 0, err
	}
	if e, ok := tx.ws.Get(key); ok {
		return e.after, nil
	}

	balance, err := tx.mgr.store.Get(key)
	if err != nil {
		tx.abortLocked(err)
		return 0, err
	}
	tx.ws.Set(key, &entry{before: balance, after: balance})
	return balance, nil
}

// Write sets the transaction-local balance of key. The key must have been read
// (or created) in this transaction before, so its lock is already held.
// A negative balance fails with RetCInvalidState and rolls the transaction back.
func (tx *Tx) Write(key string, balance int64) error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkActive(); err != nil {
		return err
	}
	if tx.readOnly {
		err := store.NewError(store.RetCInvalidState, "tx %s is read only, cannot write %q", tx.id, key)
		tx.abortLocked(err)
		return err
	}

	e, ok := tx.ws.Get(key)
	if !ok {
		err := store.NewError(store.RetCInvalidState, "tx %s writes %q without reading it first", tx.id, key)
		tx.abortLocked(err)
		return err
	}
	if balance < 0 {
		err := store.NewError(store.RetCInvalidState, "tx %s: negative balance %d for %q", tx.id, balance, key)
		tx.abortLocked(err)
		return err
	}

	e.after = balance
	e.dirty = true
	return nil
}

// Create inserts key with an initial balance into the working set. The key is locked
// first, so no other transaction can create it concurrently. If it already exists in the
// store the call fails with RetCAlreadyExists and the transaction is rolled back.
func (tx *Tx) Create(ctx context.Context, key string, balance int64) error {
	if tx.readOnly {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		err := store.NewError(store.RetCInvalidState, "tx %s is read only, cannot create %q", tx.id, key)
		if tx.state == StateActive {
			tx.abortLocked(err)
		}
		return err
	}

	if err := tx.Lock(ctx, key); err != nil {
		return err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkActive(); err != nil {
		return err
	}

	var err error
	switch _, inWorkingSet := tx.ws.Get(key); {
	case inWorkingSet || tx.mgr.store.Has(key):
		err = store.NewError(store.RetCAlreadyExists, "account %q already exists", key)
	case balance < 0:
		err = store.NewError(store.RetCInvalidState, "negative initial balance %d for %q", balance, key)
	}
	if err != nil {
		tx.abortLocked(err)
		return err
	}

	tx.ws.Set(key, &entry{after: balance, created: true, dirty: true})
	return nil
}

// Commit applies the working set to the store and releases all locks.
// If any entry would be negative, nothing is applied, the transaction is rolled back
// and the call fails with RetCInsufficientFunds.
func (tx *Tx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	if err := tx.checkActive(); err != nil {
		return err
	}

	start := time.Now()
	tx.state = StateCommitting

	// validate everything before the first write reaches the store
	var violation error
	tx.ws.Scan(func(key string, e *entry) bool {
		if e.dirty && e.after < 0 {
			violation = store.NewError(store.RetCInsufficientFunds,
				"tx %s: balance of %q would become %d", tx.id, key, e.after)
			return false
		}
		return true
	})
	if violation != nil {
		tx.abortLocked(violation)
		return violation
	}

	if err := tx.applyLocked(); err != nil {
		tx.abortLocked(err)
		return err
	}

	tx.finishLocked(StateCommitted)
	txCommitted.Inc()
	txCommitDuration.UpdateDuration(start)
	Logger.Debugf("tx %s committed", tx.id)
	return nil
}

// Rollback discards the working set and releases all locks.
// Rolling back a rolled back transaction is a no-op. Rolling back a committed
// transaction fails with RetCTxDone.
func (tx *Tx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()

	switch tx.state {
	case StateRolledBack:
		return nil
	case StateCommitted:
		return store.NewError(store.RetCTxDone, "tx %s is already committed", tx.id)
	}

	tx.abortLocked(nil)
	return nil
}

// --------------------------------------------------------------------------
// Helper Methods (tx.mu must be held)
// --------------------------------------------------------------------------

// checkActive returns an error unless the transaction is active.
func (tx *Tx) checkActive() error {
	if tx.state != StateActive {
		return store.NewError(store.RetCTxDone, "tx %s is %s", tx.id, tx.state)
	}
	return nil
}

// applyLocked writes all dirty entries to the store in key order.
// If the store rejects a write, the entries applied so far are undone.
func (tx *Tx) applyLocked() error {
	type applied struct {
		key string
		e   *entry
	}
	var done []applied
	var applyErr error

	tx.ws.Scan(func(key string, e *entry) bool {
		if !e.dirty {
			return true
		}
		var err error
		if e.created {
			err = tx.mgr.store.CreateIfAbsent(key, e.after)
		} else {
			err = tx.mgr.store.Put(key, e.after)
		}
		if err != nil {
			applyErr = errors.Wrapf(err, "tx %s: apply %q", tx.id, key)
			return false
		}
		done = append(done, applied{key: key, e: e})
		return true
	})

	if applyErr == nil {
		return nil
	}

	for i := len(done) - 1; i >= 0; i-- {
		a := done[i]
		var err error
		if a.e.created {
			err = tx.mgr.store.Delete(a.key)
		} else {
			err = tx.mgr.store.Put(a.key, a.e.before)
		}
		if err != nil {
			Logger.Errorf("tx %s: undo of %q failed: %v", tx.id, a.key, err)
		}
	}
	return applyErr
}

// abortLocked rolls the transaction back. cause is only used for logging.
func (tx *Tx) abortLocked(cause error) {
	tx.finishLocked(StateRolledBack)
	txRolledBack.Inc()
	if cause != nil {
		Logger.Debugf("tx %s rolled back: %v", tx.id, cause)
	} else {
		Logger.Debugf("tx %s rolled back", tx.id)
	}
}

// finishLocked moves the transaction into a terminal state, drops the working set,
// releases the locks and invalidates the id.
func (tx *Tx) finishLocked(state State) {
	tx.state = state
	tx.ws = nil
	close(tx.finished)
	tx.mgr.locks.Release(tx.id)
	tx.mgr.forget(tx)
}
