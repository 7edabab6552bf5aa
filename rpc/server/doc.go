// Package server implements the RPC server of dTX. It owns one in-memory key
// store, lock manager and transaction manager and exposes the account service
// over a pluggable transport.
//
// Key Components:
//
//   - IRPCServerAdapter: Interface defining the contract for server adapters,
//     with the Handle method that processes incoming requests against an
//     account.IAccountService.
//
//   - NewAccountServerAdapter: Factory function creating the adapter that maps
//     create, balance and transfer messages to the account service. Failures are
//     returned with their RetCode so the client can rebuild the *store.Error.
//
//   - NewRequestHandler: Glue between transport and adapter (decode, handle, encode).
//
//   - NewRPCServer: Factory function creating a configured server with the specified
//     transport and serializer mechanisms.
//
// Usage Example:
//
//	config := common.ServerConfig{
//	  Endpoint:          "0.0.0.0:8080",
//	  MetricsPath:       "/metrics",
//	  LockTimeoutMillis: 5000,
//	  LogLevel:          "info",
//	}
//
//	s := server.NewRPCServer(
//	  config,
//	  http.NewHttpServerTransport(),
//	  serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//	  log.Fatalf("Server error: %v", err)
//	}
//
// Thread Safety:
//
//	Requests are processed concurrently. Isolation between them is provided by the
//	transaction manager. Serve must be called only once.
package server
