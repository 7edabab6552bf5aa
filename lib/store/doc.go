// Package store provides the key store abstraction underlying all account state
// and the structured error taxonomy shared by every layer of dTX.
//
// The package focuses on:
//   - A unified interface (IKeyStore) for the mapping from account key to balance
//   - A structured error system with typed return codes
//
// Key Components:
//
//   - IKeyStore Interface: The ground truth of account state. A store only enforces
//     per-call rules (no negative balance, no duplicate create). It does not order
//     concurrent access itself: it is mutated exclusively by the transaction manager's
//     commit path while the relevant key locks are held.
//
//   - Error System: Every failure is reported as a *Error carrying a RetCode
//     (NotFound, AlreadyExists, InvalidState, InsufficientFunds, LockTimeout, TxDone).
//     Errors compare by code through errors.Is, so
//
//     errors.Is(err, store.ErrInsufficientFunds)
//
//     holds for every insufficient funds error, even after wrapping or after the error
//     travelled over RPC and was rebuilt by the client.
//
//   - StoreFactory: A function type that abstracts the creation of IKeyStore
//     instances, used by the conformance suite in lib/store/testing.
//
// Implementations:
//
//	- Memory Store (mstore): a concurrent in-memory map, available in the
//	  "github.com/ValentinKolb/dTX/lib/store/mstore" package.
package store
