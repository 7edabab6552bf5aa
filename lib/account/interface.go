package account

import "context"

// IAccountService is the public operation surface of dTX.
// Every failure is a *store.Error (see lib/store) and leaves all balances unchanged.
type IAccountService interface {
	// CreateAccount creates the account name with an initial balance.
	// Fails with RetCAlreadyExists if the name is taken.
	CreateAccount(ctx context.Context, name string, initialBalance int64) (err error)

	// GetBalance returns the committed balance of name.
	// Fails with RetCNotFound if the account does not exist.
	GetBalance(ctx context.Context, name string) (balance int64, err error)

	// TransferFundsWithBroker moves cash from firstEmitter and secondEmitter to recipient
	// and then moves fee from recipient to broker, all in one transaction.
	// cash is drained from firstEmitter first, the remainder is taken from secondEmitter.
	// Fails with RetCNotFound if any account is missing and with RetCInsufficientFunds if
	// any balance would become negative.
	TransferFundsWithBroker(ctx context.Context, firstEmitter, secondEmitter, recipient, broker string, cash, fee int64) (err error)
}
