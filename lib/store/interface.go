package store

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// StoreFactory is a function type that creates a new key store.
// This is used to abstract the creation of the store from its consumers (transaction manager, tests).
type StoreFactory func() IKeyStore

// IKeyStore is the interface for the ground-truth mapping from account key to balance.
// Implementations do not provide any concurrency control across keys: callers must hold the
// lock of every key they touch. All methods return a *Error (nil on success).
type IKeyStore interface {
	// Get returns the balance stored for key.
	// If the key is absent, an error with code RetCNotFound is returned.
	Get(key string) (balance int64, err error)
	// Put overwrites the balance of key, creating the key if it does not exist.
	// A negative balance is rejected with RetCInvalidState.
	Put(key string, balance int64) (err error)
	// CreateIfAbsent inserts key with the initial balance.
	// If the key already exists, RetCAlreadyExists is returned and the old balance is kept.
	// A negative balance is rejected with RetCInvalidState.
	CreateIfAbsent(key string, balance int64) (err error)
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) (err error)
	// Has reports whether key exists.
	Has(key string) (loaded bool)
	// Keys returns all keys in lexicographic order.
	Keys() (keys []string)
	// Len returns the number of keys.
	Len() (n int)
}
