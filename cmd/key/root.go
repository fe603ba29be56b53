package key

import (
	"github.com/spf13/cobra"
	"github.com/zxliu/RedisDesktopManager/cmd/util"
	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
)

var (
	conn      *client.Connection
	connector transport.IClientConnector

	// KeyCommands represents the key editor command group
	KeyCommands = &cobra.Command{
		Use:                "key",
		Short:              "Inspect and edit keys row by row",
		PersistentPreRunE:  setupConnection,
		PersistentPostRunE: closeConnection,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add connection flags to the command groups
	util.SetupClientFlags(KeyCommands)
	util.SetupClientFlags(ExecCmd)

	key := "type"
	addCmd.Flags().String(key, "", util.WrapString("Type of the key if it does not exist yet (string, list, set, zset, hash)"))

	// Add subcommands
	KeyCommands.AddCommand(showCmd)
	KeyCommands.AddCommand(addCmd)
	KeyCommands.AddCommand(updateCmd)
	KeyCommands.AddCommand(removeRowCmd)
	KeyCommands.AddCommand(removeCmd)
	KeyCommands.AddCommand(ttlCmd)
	KeyCommands.AddCommand(renameCmd)
	KeyCommands.AddCommand(perfTestCmd)
}

// setupConnection creates the connection from flags and environment
func setupConnection(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	if err := util.InitLogging(); err != nil {
		return err
	}

	var err error
	connector, err = util.GetConnector()
	if err != nil {
		return err
	}
	conn = client.NewConnection(util.GetConnectionConfig(), connector)
	return nil
}

func closeConnection(_ *cobra.Command, _ []string) error {
	if conn == nil {
		return nil
	}
	return conn.Close()
}
