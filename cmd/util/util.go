package util

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/zxliu/RedisDesktopManager/lib/store"
	"github.com/zxliu/RedisDesktopManager/lib/store/mstore"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
	"github.com/zxliu/RedisDesktopManager/rpc/server"
	"github.com/zxliu/RedisDesktopManager/rpc/transport"
	"github.com/zxliu/RedisDesktopManager/rpc/transport/mem"
	"github.com/zxliu/RedisDesktopManager/rpc/transport/tcp"
	"github.com/zxliu/RedisDesktopManager/rpc/transport/unix"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// EnvPrefix is the prefix of all environment variables (e.g. RDM_ENDPOINT)
	EnvPrefix = "rdm"
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClientFlags adds the connection flags to a command
func SetupClientFlags(cmd *cobra.Command) {
	key := "endpoint"
	cmd.PersistentFlags().String(key, "localhost:6379", WrapString("The address of the server (host:port for tcp, socket path for unix, ignored for mem)"))

	key = "name"
	cmd.PersistentFlags().String(key, "rdm", WrapString("Name of the connection used in logs and metrics"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("Password sent with AUTH after connecting"))

	key = "db"
	cmd.PersistentFlags().Int(key, 0, WrapString("Index of the database to use"))

	key = "execution-timeout-ms"
	cmd.PersistentFlags().Int(key, common.DefaultExecutionTimeoutMs, WrapString("Time in milliseconds after which a running command is considered hung (0 disables)"))

	key = "connect-timeout-ms"
	cmd.PersistentFlags().Int(key, common.DefaultConnectTimeoutMs, WrapString("Timeout of a single connection attempt in milliseconds"))

	key = "retries"
	cmd.PersistentFlags().Int(key, common.DefaultRetryCount, WrapString("How many connection attempts are made before a command fails"))

	key = "page-size"
	cmd.PersistentFlags().Int(key, common.DefaultPageSize, WrapString("Number of rows fetched per round-trip when loading keys"))

	key = "tcp-nodelay"
	cmd.PersistentFlags().Bool(key, true, WrapString("Whether to enable TCP_NODELAY (only for tcp)"))

	key = "tcp-keepalive"
	cmd.PersistentFlags().Int(key, 0, WrapString("The keepalive interval in seconds (only for tcp)"))
}

// InitConfig loads env files and initializes viper
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// InitLogging sets the level of all loggers from the log-level flag
func InitLogging() error {
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetConnectionConfig reads the connection configuration from viper
func GetConnectionConfig() common.ConnectionConfig {
	config := common.DefaultConnectionConfig(viper.GetString("name"), viper.GetString("endpoint"))
	config.Password = viper.GetString("password")
	config.ExecutionTimeoutMs = viper.GetInt("execution-timeout-ms")
	config.ConnectTimeoutMs = viper.GetInt("connect-timeout-ms")
	config.RetryCount = viper.GetInt("retries")
	config.PageSize = viper.GetInt("page-size")
	config.TCPNoDelay = viper.GetBool("tcp-nodelay")
	config.TCPKeepAliveSec = viper.GetInt("tcp-keepalive")
	return config
}

// GetDB returns the configured database index
func GetDB() int {
	return viper.GetInt("db")
}

// GetConnector creates the client connector of the configured transport.
// The mem transport serves an in-process memory store.
func GetConnector() (transport.IClientConnector, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return tcp.NewClientConnector(), nil
	case "unix":
		return unix.NewClientConnector(), nil
	case "mem":
		st := mstore.NewMemoryStore(store.DefaultOptions())
		srv := server.NewRPCServer(common.ServerConfig{
			Databases: st.Databases(),
			Password:  viper.GetString("password"),
		}, st)
		return mem.NewClientConnector(srv.ServeConn), nil
	default:
		return nil, fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}
}

// GetServerTransport returns the server transport factory of the configured transport
func GetServerTransport() (transport.ServerTransportFactory, error) {
	switch viper.GetString("transport") {
	case "tcp":
		return func(handler transport.ConnHandleFunc) transport.IServerTransport {
			return tcp.NewServer(handler)
		}, nil
	case "unix":
		return func(handler transport.ConnHandleFunc) transport.IServerTransport {
			return unix.NewServer(handler)
		}, nil
	default:
		return nil, fmt.Errorf("transport %s cannot be served", viper.GetString("transport"))
	}
}
