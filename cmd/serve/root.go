package serve

import (
	"strings"

	cmdUtil "github.com/ValentinKolb/dTX/cmd/util"
	"github.com/ValentinKolb/dTX/rpc/common"
	"github.com/ValentinKolb/dTX/rpc/server"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the dTX server",
		Long:    `Start the dTX server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DTX_<flag> (e.g. DTX_LOCK_TIMEOUT=2000)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(initConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen (e.g. localhost:8080)"))

	key = "metrics-path"
	ServeCmd.PersistentFlags().String(key, "/metrics", cmdUtil.WrapString("Path under which Prometheus metrics are served. Empty disables the endpoint"))

	key = "lock-timeout"
	ServeCmd.PersistentFlags().Int64(key, 5000, cmdUtil.WrapString("Upper bound in milliseconds a transaction waits for a single lock before it is rolled back. 0 waits without bound, a negative value uses the default of 5000"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.MetricsPath = viper.GetString("metrics-path")
	serveCmdConfig.LockTimeoutMillis = viper.GetInt64("lock-timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	_, err := common.ParseLogLevel(serveCmdConfig.LogLevel)
	return err
}

// run starts the dTX server
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	t, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	return serv.Serve()
}

// initConfig reads in ENV variables and .env files if set.
func initConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(cmdUtil.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}
