// Package client implements the logical connection to a key-value server and
// the helpers built on top of it.
//
// Key Components:
//
//   - Connection: owns one base.Transporter, so every command submitted through
//     it runs one at a time in submission order. Error and log events of the
//     transporter are published to subscribers (see Subscribe).
//
//   - Execute: the synchronous executor. It submits a command, blocks until the
//     response arrives and converts error replies into ProtocolErrors. When the
//     context ends the command is cancelled.
//
//   - Pool: a pool of connections of one profile for callers that want to run
//     independent commands in parallel.
//
// Usage Example:
//
//	config := common.DefaultConnectionConfig("local", "localhost:6379")
//	conn := client.NewConnection(config, tcp.NewClientConnector())
//	defer conn.Close()
//
//	resp, err := client.Execute(ctx, conn, 0, []string{"GET", "mykey"})
//	if err != nil {
//	  return err
//	}
//	fmt.Println(resp.Value.Text())
//
//	// cancel everything of a screen at once
//	scope, release := conn.NewScope()
//	defer release()
//	_, _ = client.Execute(ctx, conn, 0, []string{"LRANGE", "l", "0", "99"}, common.WithScope(scope))
//
// Thread Safety:
//
//	Connections, the executor and the pool can be used concurrently from
//	multiple goroutines. Command callbacks run on the transporter goroutine and
//	must not call Execute.
package client
