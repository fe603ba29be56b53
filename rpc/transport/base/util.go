package base

import (
	"errors"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/zxliu/RedisDesktopManager/lib/resp"
	"github.com/zxliu/RedisDesktopManager/rpc/common"
)

// initial backoff between dial attempts in milliseconds
const initialBackoffMs = 50

// backoff returns the delay before retry attempt (0-based) using exponential
// backoff with a small random jitter (+-10%)
func backoff(attempt int) time.Duration {
	backoffMs := initialBackoffMs << attempt
	jitter := float64(backoffMs) * (0.9 + 0.2*rand.Float64())
	return time.Duration(jitter) * time.Millisecond
}

// classifyError maps an I/O or decode error of a round-trip to an error kind
func classifyError(err error) *common.Error {
	var perr *resp.ProtocolError
	if errors.As(err, &perr) {
		return common.WrapError(common.RetCProtocolError, "malformed reply", err)
	}

	if errors.Is(err, os.ErrDeadlineExceeded) {
		return common.WrapError(common.RetCExecutionTimeout, "no response within the execution timeout", err)
	}

	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return common.WrapError(common.RetCExecutionTimeout, "no response within the execution timeout", err)
	}

	return common.WrapError(common.RetCConnectionError, "connection failed", err)
}
