package account

import (
	"context"
	"github.com/ValentinKolb/dTX/lib/store"
	"github.com/ValentinKolb/dTX/lib/txn"
	"github.com/lni/dragonboat/v4/logger"
	"math"
)

var Logger = logger.GetLogger("account")

type serviceImpl struct {
	tm *txn.Manager
}

// NewAccountService creates an account service that runs every operation as a
// transaction of the given manager.
func NewAccountService(tm *txn.Manager) IAccountService {
	return &serviceImpl{
		tm: tm,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see account/interface.go)
// --------------------------------------------------------------------------

func (s *serviceImpl) CreateAccount(ctx context.Context, name string, initialBalance int64) error {
	if err := validateName(name); err != nil {
		return err
	}
	if initialBalance < 0 {
		return store.NewError(store.RetCInvalidState, "negative initial balance %d for %q", initialBalance, name)
	}

	err := s.tm.Update(ctx, []string{name}, func(tx *txn.Tx) error {
		return tx.Create(ctx, name, initialBalance)
	})
	if err != nil {
		return err
	}

	Logger.Infof("created account %s with balance %d", name, initialBalance)
	return nil
}

func (s *serviceImpl) GetBalance(ctx context.Context, name string) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}

	var balance int64
	err := s.tm.View(ctx, []string{name}, func(tx *txn.Tx) error {
		var err error
		balance, err = tx.Read(ctx, name)
		return err
	})
	return balance, err
}

func (s *serviceImpl) TransferFundsWithBroker(ctx context.Context, firstEmitter, secondEmitter, recipient, broker string, cash, fee int64) error {
	for _, name := range []string{firstEmitter, secondEmitter, recipient, broker} {
		if err := validateName(name); err != nil {
			return err
		}
	}
	if cash < 0 || fee < 0 {
		return store.NewError(store.RetCInvalidState, "cash (%d) and fee (%d) must not be negative", cash, fee)
	}

	keys := []string{firstEmitter, secondEmitter, recipient, broker}
	err := s.tm.Update(ctx, keys, func(tx *txn.Tx) error {
		// load all four accounts first so a missing one fails before any computation
		for _, key := range keys {
			if _, err := tx.Read(ctx, key); err != nil {
				return err
			}
		}

		// drain the first emitter, take the remainder from the second
		first, err := tx.Read(ctx, firstEmitter)
		if err != nil {
			return err
		}
		fromFirst := min(first, cash)
		if err := tx.Write(firstEmitter, first-fromFirst); err != nil {
			return err
		}

		second, err := tx.Read(ctx, secondEmitter)
		if err != nil {
			return err
		}
		if rest := cash - fromFirst; rest > 0 {
			if second < rest {
				return store.NewError(store.RetCInsufficientFunds,
					"%s and %s together cannot cover %d", firstEmitter, secondEmitter, cash)
			}
			if err := tx.Write(secondEmitter, second-rest); err != nil {
				return err
			}
		}

		// credit the recipient, then move the fee to the broker
		if err := credit(ctx, tx, recipient, cash); err != nil {
			return err
		}

		received, err := tx.Read(ctx, recipient)
		if err != nil {
			return err
		}
		if received < fee {
			return store.NewError(store.RetCInsufficientFunds,
				"%s cannot pay the fee of %d with a balance of %d", recipient, fee, received)
		}
		if err := tx.Write(recipient, received-fee); err != nil {
			return err
		}
		return credit(ctx, tx, broker, fee)
	})
	if err != nil {
		Logger.Warningf("transfer %s+%s -> %s (broker %s, cash %d, fee %d) rolled back: %v",
			firstEmitter, secondEmitter, recipient, broker, cash, fee, err)
		return err
	}

	Logger.Infof("transfer %s+%s -> %s (broker %s, cash %d, fee %d) committed",
		firstEmitter, secondEmitter, recipient, broker, cash, fee)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// credit adds amount to the balance of key inside tx.
func credit(ctx context.Context, tx *txn.Tx, key string, amount int64) error {
	balance, err := tx.Read(ctx, key)
	if err != nil {
		return err
	}
	if balance > math.MaxInt64-amount {
		return store.NewError(store.RetCInvalidState, "balance of %q would overflow", key)
	}
	return tx.Write(key, balance+amount)
}

func validateName(name string) error {
	if name == "" {
		return store.NewError(store.RetCInvalidState, "account name must not be empty")
	}
	return nil
}
