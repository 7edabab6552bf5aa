package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/dTX/cmd/account"
	"github.com/ValentinKolb/dTX/cmd/demo"
	"github.com/ValentinKolb/dTX/cmd/serve"
	"github.com/ValentinKolb/dTX/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dtx",
		Short: "transactional key-value store",
		Long: fmt.Sprintf(`dTX (v%s)

An in-memory key-value store with pessimistic multi-key transactions,
serving atomic account transfers with a broker fee.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dTX",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dTX v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(account.AccountCommands)
	RootCmd.AddCommand(demo.DemoCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
