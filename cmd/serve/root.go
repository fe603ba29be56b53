package serve

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	cmdUtil "github.com/zxliu/RedisDesktopManager/cmd/util"
	"github.com/zxliu/RedisDesktopManager/lib/store"
	"github.com/zxliu/RedisDesktopManager/lib/store/mstore"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/server"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	storeOptions   = store.DefaultOptions()
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the in-memory key-value server",
		Long:    `Start an in-memory key-value server speaking RESP. It supports the commands used by the key editors (strings, lists, sets, sorted sets, hashes and key expiry). The configuration can be set via command line flags or environment variables. The format of the environment variables is RDM_<flag> (e.g. RDM_TIMEOUT=15)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitConfig)

	// add flags
	key := "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:6379", cmdUtil.WrapString("The address on which the server will listen (e.g. localhost:6379, /tmp/rdm.sock, ...)"))

	key = "password"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("Password clients have to send with AUTH, empty disables authentication"))

	key = "databases"
	ServeCmd.PersistentFlags().Int(key, storeOptions.Databases, cmdUtil.WrapString("Number of databases that can be selected with SELECT"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 0, cmdUtil.WrapString("Close client connections after they were idle for this many seconds (0 disables)"))

	key = "gc-interval-ms"
	ServeCmd.PersistentFlags().Int(key, storeOptions.GCIntervalMs, cmdUtil.WrapString("How often expired keys are collected in milliseconds"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if err := cmdUtil.InitLogging(); err != nil {
		return err
	}

	storeOptions.Databases = viper.GetInt("databases")
	storeOptions.GCIntervalMs = viper.GetInt("gc-interval-ms")
	if storeOptions.Databases < 1 {
		return fmt.Errorf("databases must be at least 1, got %d", storeOptions.Databases)
	}

	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.Password = viper.GetString("password")
	serveCmdConfig.Databases = storeOptions.Databases
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the server and blocks until the command context ends
func run(cmd *cobra.Command, _ []string) error {
	factory, err := cmdUtil.GetServerTransport()
	if err != nil {
		return err
	}

	st := mstore.NewMemoryStore(storeOptions)
	defer st.Close()

	serv := server.NewRPCServer(*serveCmdConfig, st)

	go func() {
		<-cmd.Context().Done()
		server.Logger.Infof("shutting down")
		_ = serv.Close()
	}()

	return serv.Serve(factory)
}
