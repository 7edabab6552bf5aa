// Package common provides core data structures and utilities shared across
// the dTX rpc packages. It defines the message protocol, configuration
// structures and the logger setup used by server, client and cli.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication between client and
//     server. Requests carry the account names and amounts, responses carry the
//     result and, on failure, the RetCode and message of the *store.Error.
//     Message.AsError restores that error on the client side.
//
//   - MessageType: Enumeration of the supported operations (create account,
//     get balance, transfer) and control messages (success, error).
//
//   - ServerConfig: Endpoint, metrics path, lock timeout and log level of a server.
//
//   - ClientConfig: Endpoints, timeouts and retry behavior of a client.
//
//   - Logger: Custom logging implementation that plugs into the dragonboat
//     logger factory so every package logger shares one format.
package common
