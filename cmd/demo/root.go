package demo

import (
	"context"
	"fmt"
	"io"

	"github.com/ValentinKolb/dTX/cmd/util"
	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/lib/lockmgr"
	"github.com/ValentinKolb/dTX/lib/store/mstore"
	"github.com/ValentinKolb/dTX/lib/txn"
	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/spf13/cobra"
)

var (
	demoCash     int64
	demoLogLevel string

	// DemoCmd replays the broker transfer example against an in-process service
	DemoCmd = &cobra.Command{
		Use:   "demo",
		Short: "Run the broker transfer example in-process",
		Long: `Creates the accounts Bob=1000, Alice=100, Eve=0 and Dave=0 and runs two transfers
with a broker fee of 10: first Bob+Alice -> Eve (cash 1000), then the same with the cash given
by --cash (default 100). A cash above 100 makes the second transfer roll back.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := common.InitLoggers(demoLogLevel); err != nil {
				return err
			}
			tm := txn.NewTransactionManager(mstore.NewMemoryStore(), lockmgr.NewLockManager(), nil)
			return Run(cmd.Context(), cmd.OutOrStdout(), account.NewAccountService(tm), demoCash)
		},
	}
)

func init() {
	DemoCmd.Flags().Int64Var(&demoCash, "cash", 100, util.WrapString("Cash of the second transfer"))
	DemoCmd.Flags().StringVar(&demoLogLevel, "log-level", "error", util.WrapString("Log level of the in-process service (debug, info, warn, error)"))
}

// Run creates the demo accounts on svc and performs both transfers, printing the
// outcome and the balances after each one. A rolled back transfer is not an error.
func Run(ctx context.Context, out io.Writer, svc account.IAccountService, secondCash int64) error {
	for _, a := range []struct {
		name    string
		balance int64
	}{{"Bob", 1000}, {"Alice", 100}, {"Eve", 0}, {"Dave", 0}} {
		if err := svc.CreateAccount(ctx, a.name, a.balance); err != nil {
			return err
		}
	}

	if err := transferWithBroker(ctx, out, svc, "Bob", "Alice", "Eve", "Dave", 1000, 10); err != nil {
		return err
	}
	return transferWithBroker(ctx, out, svc, "Bob", "Alice", "Eve", "Dave", secondCash, 10)
}

// transferWithBroker runs one transfer and prints its outcome and the four balances
func transferWithBroker(ctx context.Context, out io.Writer, svc account.IAccountService, firstEmitter, secondEmitter, recipient, broker string, cash, fee int64) error {
	fmt.Fprintln(out, "+--------------Fund transfer operation--------------+")

	if err := svc.TransferFundsWithBroker(ctx, firstEmitter, secondEmitter, recipient, broker, cash, fee); err != nil {
		fmt.Fprintf(out, ">>> Operation was rolled back [error = %v]\n", err)
	} else {
		fmt.Fprintln(out, ">>> Operation completed successfully")
	}

	fmt.Fprintln(out, "\n>>> Account statuses:")
	for _, name := range []string{firstEmitter, secondEmitter, recipient, broker} {
		balance, err := svc.GetBalance(ctx, name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, ">>> %s balance: %d\n", name, balance)
	}
	fmt.Fprintln(out, "+---------------------------------------------------+")
	return nil
}
