// Package client implements the RPC client of dTX. NewRPCAccountService returns
// an account.IAccountService that forwards every operation to a remote server
// via the configured transport and serializer.
//
// Errors reported by the server keep their RetCode, so
// errors.Is(err, store.ErrInsufficientFunds) works the same for the local and the
// remote service. Failures of the rpc layer itself are RetCInternalError.
//
// Usage Example:
//
//	config := common.ClientConfig{
//	  Endpoints:     []string{"localhost:8080"},
//	  TimeoutSecond: 5,
//	  RetryCount:    3,
//	}
//
//	svc, err := client.NewRPCAccountService(config, http.NewHttpClientTransport(), serializer.NewBinarySerializer())
//	if err != nil {
//	  log.Fatal(err)
//	}
//
//	_ = svc.CreateAccount(ctx, "Bob", 1000)
//	balance, _ := svc.GetBalance(ctx, "Bob")
//
// Thread Safety:
//
//	The client is safe for concurrent use from multiple goroutines.
package client
