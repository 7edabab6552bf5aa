// Package mstore implements a local, in-memory key store based on the
// store.IKeyStore interface. Balances live in a concurrent hash map
// (xsync.MapOf) and are not persisted between process restarts.
//
// Key Features:
//   - Pure in-memory storage without persistence
//   - Atomic create-if-absent through LoadOrStore
//   - Negative balances rejected at the store boundary
//
// Thread Safety:
//
//	Single calls are safe for concurrent use since the underlying map is.
//	Sequences of calls (read, compute, write) are not: the transaction manager
//	serializes them per key with the lock manager.
//
// Usage Example:
//
//	s := mstore.NewMemoryStore()
//	_ = s.CreateIfAbsent("Bob", 1000)
//	balance, err := s.Get("Bob")
package mstore
