// Package http implements the HTTP transport of dTX. Requests are posted as
// serialized messages to /rpc, the response body is the serialized answer.
//
// Key Components:
//
//   - httpClientTransport: Implements IRPCClientTransport. Requests are spread
//     round-robin over the configured endpoints. A request that could not be
//     delivered (e.g. connection refused) is retried on the next endpoint, one
//     that reached a server is never sent again.
//
//   - httpServerTransport: Implements IRPCServerTransport. Serves POST /rpc and,
//     when a metrics path is configured, the Prometheus metrics of the process.
//     With log level debug every request is logged.
//
// Thread Safety:
//
//	The client transport is safe for concurrent use. It uses atomic operations
//	for the round-robin counter.
package http
