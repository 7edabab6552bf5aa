// Package rpc exposes the dTX account service to remote clients.
//
// The package is organized into several subpackages:
//
//   - common: The Message protocol, configuration structures and logging.
//
//   - transport: Network communication abstractions. The http subpackage is the
//     implementation used by the cli.
//
//   - serializer: Message serialization with multiple format options (Binary, JSON, GOB)
//     for converting between Message objects and byte arrays.
//
//   - client: RPC client implementing account.IAccountService against a remote server.
//
//   - server: RPC server owning the key store, lock manager and transaction manager.
package rpc
