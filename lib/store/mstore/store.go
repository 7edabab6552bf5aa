package mstore

import (
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/puzpuzpuz/xsync/v3"
	"slices"
)

type storeImpl struct {
	data *xsync.MapOf[string, int64]
}

// NewMemoryStore creates a new in-memory key store.
// This store implementation is not distributed and keeps nothing across process restarts.
func NewMemoryStore() store.IKeyStore {
	return &storeImpl{
		data: xsync.NewMapOf[string, int64](),
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(key string) (int64, error) {
	balance, ok := s.data.Load(key)
	if !ok {
		return 0, store.NewError(store.RetCNotFound, "account %q not found", key)
	}
	return balance, nil
}

func (s *storeImpl) Put(key string, balance int64) error {
	if balance < 0 {
		return store.NewError(store.RetCInvalidState, "negative balance %d for account %q", balance, key)
	}
	s.data.Store(key, balance)
	return nil
}

func (s *storeImpl) CreateIfAbsent(key string, balance int64) error {
	if balance < 0 {
		return store.NewError(store.RetCInvalidState, "negative balance %d for account %q", balance, key)
	}
	// atomic check-and-insert, the old balance is kept if the key is present
	if _, loaded := s.data.LoadOrStore(key, balance); loaded {
		return store.NewError(store.RetCAlreadyExists, "account %q already exists", key)
	}
	return nil
}

func (s *storeImpl) Delete(key string) error {
	s.data.Delete(key)
	return nil
}

func (s *storeImpl) Has(key string) bool {
	_, ok := s.data.Load(key)
	return ok
}

func (s *storeImpl) Keys() []string {
	keys := make([]string, 0, s.data.Size())
	s.data.Range(func(key string, _ int64) bool {
		keys = append(keys, key)
		return true
	})
	slices.Sort(keys)
	return keys
}

func (s *storeImpl) Len() int {
	return s.data.Size()
}
