package client

import (
	"context"

	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

type result struct {
	resp *common.Response
	err  error
}

// Execute submits a command and blocks until its response arrives.
//
// An error reply of the server is returned as a ProtocolError together with
// the response. If ctx ends first the command is cancelled and ctx.Err() is
// returned. If the command is cancelled through its scope, context.Canceled
// is returned. Execute must not be called from a command callback, since those
// run on the goroutine that would have to deliver the response.
func Execute(ctx context.Context, conn ICommandRunner, dbIndex int, args []string, opts ...common.CommandOption) (*common.Response, error) {
	raw := make([][]byte, len(args))
	for i, arg := range args {
		raw[i] = []byte(arg)
	}
	return ExecuteRaw(ctx, conn, dbIndex, raw, opts...)
}

// ExecuteRaw is Execute with binary safe arguments
func ExecuteRaw(ctx context.Context, conn ICommandRunner, dbIndex int, args [][]byte, opts ...common.CommandOption) (*common.Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	done := make(chan result, 1)
	opts = append(opts,
		common.WithCallback(func(resp *common.Response) {
			done <- result{resp: resp, err: resp.Err()}
		}),
		common.WithErrorCallback(func(err error) {
			done <- result{err: err}
		}),
	)

	cmd := common.NewRawCommand(args, dbIndex, opts...)
	if err := conn.Submit(cmd); err != nil {
		return nil, err
	}

	select {
	case r := <-done:
		return r.resp, r.err
	case <-cmd.Cancelled():
		return nil, context.Canceled
	case <-ctx.Done():
		if cmd.Cancel() {
			Logger.Debugf("[execute] %s -> cancelled: %v", cmd.RawString(), ctx.Err())
			return nil, ctx.Err()
		}
		if cmd.IsCancelled() {
			return nil, ctx.Err()
		}
		// the outcome is being delivered right now
		r := <-done
		return r.resp, r.err
	}
}

// ExecuteInt runs a command whose reply is an integer
func ExecuteInt(ctx context.Context, conn ICommandRunner, dbIndex int, args ...string) (int64, error) {
	resp, err := Execute(ctx, conn, dbIndex, args)
	if err != nil {
		return 0, err
	}
	n, err := resp.Value.Integer64()
	if err != nil {
		return 0, common.WrapError(common.RetCProtocolError, "unexpected reply to "+args[0], err)
	}
	return n, nil
}
