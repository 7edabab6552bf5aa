package testing

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ValentinKolb/dTX/lib/store"
)

// RunKeyStoreTests runs the conformance test suite for an IKeyStore implementation.
func RunKeyStoreTests(t *testing.T, name string, factory store.StoreFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Put&Get", func(t *testing.T) {
			testPutGet(t, factory())
		})

		t.Run("NotFound", func(t *testing.T) {
			testNotFound(t, factory())
		})

		t.Run("NegativeBalance", func(t *testing.T) {
			testNegativeBalance(t, factory())
		})

		t.Run("CreateIfAbsent", func(t *testing.T) {
			testCreateIfAbsent(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Keys", func(t *testing.T) {
			testKeys(t, factory())
		})

		t.Run("ConcurrentCreate", func(t *testing.T) {
			testConcurrentCreate(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// requireCode fails the test if err does not carry the expected code
func requireCode(t testing.TB, err error, code store.RetCode) {
	t.Helper()
	if got := store.CodeOf(err); got != code {
		t.Fatalf("Expected code %s, got %s (err=%v)", code, got, err)
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testPutGet(t *testing.T, s store.IKeyStore) {
	if err := s.Put("Bob", 1000); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	balance, err := s.Get("Bob")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if balance != 1000 {
		t.Errorf("Expected balance 1000, got %d", balance)
	}

	if err := s.Put("Bob", 0); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	balance, _ = s.Get("Bob")
	if balance != 0 {
		t.Errorf("Expected balance 0 after overwrite, got %d", balance)
	}

	if !s.Has("Bob") {
		t.Errorf("Expected Has(Bob) to be true")
	}
}

func testNotFound(t *testing.T, s store.IKeyStore) {
	_, err := s.Get("nobody")
	requireCode(t, err, store.RetCNotFound)

	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Expected errors.Is(err, ErrNotFound) to hold")
	}
	if s.Has("nobody") {
		t.Errorf("Expected Has(nobody) to be false")
	}
}

func testNegativeBalance(t *testing.T, s store.IKeyStore) {
	requireCode(t, s.Put("Eve", -1), store.RetCInvalidState)
	requireCode(t, s.CreateIfAbsent("Eve", -1), store.RetCInvalidState)

	if s.Has("Eve") {
		t.Errorf("A rejected write must not create the key")
	}
}

func testCreateIfAbsent(t *testing.T, s store.IKeyStore) {
	if err := s.CreateIfAbsent("Alice", 100); err != nil {
		t.Fatalf("CreateIfAbsent failed: %v", err)
	}

	err := s.CreateIfAbsent("Alice", 5)
	requireCode(t, err, store.RetCAlreadyExists)

	balance, _ := s.Get("Alice")
	if balance != 100 {
		t.Errorf("A duplicate create must keep the old balance, got %d", balance)
	}

	// zero is a valid initial balance
	if err := s.CreateIfAbsent("Dave", 0); err != nil {
		t.Fatalf("CreateIfAbsent with zero balance failed: %v", err)
	}
}

func testDelete(t *testing.T, s store.IKeyStore) {
	_ = s.Put("Eve", 10)

	if err := s.Delete("Eve"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.Has("Eve") {
		t.Errorf("Key should not exist after Delete")
	}

	// deleting an absent key is fine
	if err := s.Delete("Eve"); err != nil {
		t.Errorf("Delete of absent key failed: %v", err)
	}
}

func testKeys(t *testing.T, s store.IKeyStore) {
	for _, k := range []string{"Eve", "Bob", "Dave", "Alice"} {
		_ = s.CreateIfAbsent(k, 1)
	}

	keys := s.Keys()
	expected := []string{"Alice", "Bob", "Dave", "Eve"}
	if !slices.Equal(keys, expected) {
		t.Errorf("Expected keys %v, got %v", expected, keys)
	}
	if s.Len() != 4 {
		t.Errorf("Expected Len 4, got %d", s.Len())
	}
}

func testConcurrentCreate(t *testing.T, s store.IKeyStore) {
	const workers = 16
	const keys = 50

	var created atomic.Int64
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < keys; i++ {
				if err := s.CreateIfAbsent(fmt.Sprintf("acc-%d", i), int64(i)); err == nil {
					created.Add(1)
				}
			}
		}()
	}
	wg.Wait()

	// every key is created exactly once
	if created.Load() != keys {
		t.Errorf("Expected %d successful creates, got %d", keys, created.Load())
	}
	if s.Len() != keys {
		t.Errorf("Expected %d keys, got %d", keys, s.Len())
	}
}
