package account

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [name] [balance]",
		Short: "Creates an account with an initial balance",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			balance, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("balance must be a number: %w", err)
			}
			if err := rpcAccounts.CreateAccount(cmd.Context(), name, balance); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s with balance %d\n", name, balance)
			return nil
		},
	}
	balanceCmd = &cobra.Command{
		Use:   "balance [name]",
		Short: "Reads the balance of an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]
			balance, err := rpcAccounts.GetBalance(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s balance: %d\n", name, balance)
			return nil
		},
	}
	transferCmd = &cobra.Command{
		Use:   "transfer [firstEmitter] [secondEmitter] [recipient] [broker] [cash] [fee]",
		Short: "Transfers cash from two emitters to a recipient who pays a fee to a broker",
		Long: `Transfers cash to the recipient, taking it from firstEmitter as far as its balance allows
and the remainder from secondEmitter. The recipient then pays fee to the broker.
Either all four balances change or none does.`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			cash, err := strconv.ParseInt(args[4], 10, 64)
			if err != nil {
				return fmt.Errorf("cash must be a number: %w", err)
			}
			fee, err := strconv.ParseInt(args[5], 10, 64)
			if err != nil {
				return fmt.Errorf("fee must be a number: %w", err)
			}
			if err := rpcAccounts.TransferFundsWithBroker(cmd.Context(), args[0], args[1], args[2], args[3], cash, fee); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "transfer committed")
			return nil
		},
	}
)
