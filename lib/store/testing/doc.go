// Package testing provides a standardised test suite for key store
// implementations that satisfy the store.IKeyStore interface.
//
// Example usage:
//
//	// Creating a factory function for your implementation
//	factory := func() store.IKeyStore {
//		return NewMyStore()
//	}
//
//	// Running the standard test suite
//	storetesting.RunKeyStoreTests(t, "MyStore", factory)
package testing
