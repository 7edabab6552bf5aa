// Package txn implements pessimistic multi-key transactions over a store.IKeyStore.
//
// A transaction moves through the states
//
//	Active -> Committing -> Committed
//	Active -> RolledBack
//	Committing -> RolledBack
//
// Reads lock a key on first touch (through lockmgr) and copy its balance into the
// transaction's working set, a btree ordered by key. Writes only change the working
// set. Commit validates the whole working set, applies it to the store in key order
// and then releases all locks. Since locks are held from the first touch until the
// end and nothing is visible before commit, transactions are isolated and atomic
// without versioning or a log; there is no durability.
//
// Every failure (missing key, negative balance, lock timeout, duplicate create) rolls
// the transaction back before the error is returned, so callers never observe partial
// state. Rollback itself is idempotent.
//
// Deadlock freedom comes from the lock manager's global key order. Transactions should
// lock their full key set up front with Tx.Lock or the scoped helpers:
//
//	err := manager.Update(ctx, []string{"Alice", "Bob"}, func(tx *txn.Tx) error {
//	    a, err := tx.Read(ctx, "Alice")
//	    if err != nil {
//	        return err
//	    }
//	    b, err := tx.Read(ctx, "Bob")
//	    if err != nil {
//	        return err
//	    }
//	    if err := tx.Write("Alice", a-10); err != nil {
//	        return err
//	    }
//	    return tx.Write("Bob", b+10)
//	})
//
// Update commits when the callback returns nil and rolls back on every other exit path.
package txn
