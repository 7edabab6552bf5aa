package account

import (
	"github.com/ValentinKolb/dTX/cmd/util"
	"github.com/ValentinKolb/dTX/lib/account"
	"github.com/ValentinKolb/dTX/rpc/client"
	"github.com/spf13/cobra"
)

var (
	rpcAccounts account.IAccountService

	// AccountCommands represents the account command group
	AccountCommands = &cobra.Command{
		Use:               "account",
		Short:             "Perform account operations against a dTX server",
		PersistentPreRunE: setupAccountClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common RPC flags to the account command
	util.SetupRPCClientFlags(AccountCommands)

	// Add subcommands
	AccountCommands.AddCommand(createCmd)
	AccountCommands.AddCommand(balanceCmd)
	AccountCommands.AddCommand(transferCmd)
	AccountCommands.AddCommand(perfTestCmd)
}

// setupAccountClient initializes the RPC account client
func setupAccountClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	config := util.GetClientConfig()

	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	rpcAccounts, err = client.NewRPCAccountService(
		*config,
		t,
		s,
	)

	return err
}
