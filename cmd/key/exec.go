package key

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zxliu/RedisDesktopManager/cmd/util"
	"github.com/zxliu/RedisDesktopManager/rpc/client"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// ExecCmd runs a single raw command and prints the reply like redis-cli
var ExecCmd = &cobra.Command{
	Use:                "exec [command] [args...]",
	Short:              "Runs a raw command and prints the reply",
	Args:               cobra.MinimumNArgs(1),
	PersistentPreRunE:  setupConnection,
	PersistentPostRunE: closeConnection,
	RunE: func(cmd *cobra.Command, args []string) error {
		events, unsubscribe := conn.Subscribe(16)
		defer unsubscribe()
		go func() {
			for ev := range events {
				if ev.Type == common.EventError {
					fmt.Printf("(connection error) %s\n", ev.Message)
				}
			}
		}()

		resp, err := client.Execute(cmd.Context(), conn, util.GetDB(), args)
		if resp != nil {
			// error replies are printed like any other reply
			fmt.Println(resp.Value.String())
			return nil
		}
		return err
	},
}
