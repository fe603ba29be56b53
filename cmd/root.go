package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zxliu/RedisDesktopManager/cmd/key"
	"github.com/zxliu/RedisDesktopManager/cmd/serve"
	"github.com/zxliu/RedisDesktopManager/cmd/util"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "rdm",
		Short: "key-value store client and value editor",
		Long: fmt.Sprintf(`rdm (v%s)

A client for RESP key-value servers with row based editors for strings,
lists, sets, sorted sets and hashes, plus a bundled in-memory server.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of rdm",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rdm v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(key.KeyCommands)
	RootCmd.AddCommand(key.ExecCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	flag := "transport"
	RootCmd.PersistentFlags().String(flag, "tcp", util.WrapString("transport to use (tcp, unix, mem). mem runs an in-process server and cannot be served"))
	flag = "log-level"
	RootCmd.PersistentFlags().String(flag, "warn", util.WrapString("level at which logs are written to stderr (debug, info, warn, error)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
