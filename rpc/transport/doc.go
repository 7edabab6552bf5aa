// Package transport defines the interfaces and abstractions for RPC communication
// in dTX. It provides a common contract that all transport implementations must
// fulfill, enabling protocol-agnostic communication.
//
// Key Components:
//
//   - IRPCClientTransport: Interface for client-side transport implementations that
//     handles connection management and request sending.
//
//   - IRPCServerTransport: Interface for server-side transport implementations that
//     receives requests and hands them to the registered handler.
//
//   - ServerHandleFunc: Function type for request handling callbacks.
//
// The only implementation is the http transport in the http subpackage.
package transport
