// Package account implements the account operations of dTX on top of the
// transaction manager: account creation, balance lookup and the atomic
// four-party transfer with a broker fee.
//
// Transfer semantics (TransferFundsWithBroker):
//
//	1. cash is taken from firstEmitter as far as its balance allows,
//	   the remainder from secondEmitter
//	2. recipient is credited with cash
//	3. fee is moved from recipient to broker
//
// All four steps run in one transaction that locks the four accounts up front.
// If any step would drive a balance negative the whole transfer is rolled back
// with an insufficient funds error and no balance changes.
//
// The package exposes the IAccountService interface. The local implementation is
// created with NewAccountService, the RPC client in rpc/client implements the same
// interface against a remote server.
package account
