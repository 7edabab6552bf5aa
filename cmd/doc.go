// Package cmd implements the command-line interface of dTX. It provides a
// hierarchical command structure with operations for running the server and
// interacting with it as a client.
//
// The package is organized into several subpackages:
//
//   - account: Commands for account operations (create, balance, transfer, perf)
//   - demo: Runs the broker transfer example against an in-process service
//   - serve: Commands for starting and configuring the dTX server
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See dtx -help for a list of all commands.
package cmd
