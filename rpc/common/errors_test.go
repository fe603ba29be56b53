package common

import (
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func TestErrorIs(t *testing.T) {
	err := WrapError(RetCExecutionTimeout, "no reply", io.ErrUnexpectedEOF)

	assert.Equal(t, errors.Is(err, ErrExecutionTimeout), true)
	assert.Equal(t, errors.Is(err, ErrProtocol), false)
	assert.Equal(t, errors.Is(err, io.ErrUnexpectedEOF), true)

	wrapped := fmt.Errorf("loading rows: %w", err)
	assert.Equal(t, errors.Is(wrapped, ErrExecutionTimeout), true)
	assert.Equal(t, err.Error(), "ExecutionTimeout: no reply: unexpected EOF")
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		want RetCode
	}{
		{nil, RetCSuccess},
		{ErrInvalidRow, RetCInvalidRow},
		{ErrConcurrentModification, RetCConcurrentModification},
		{fmt.Errorf("wrapped: %w", ErrClosed), RetCClosed},
		{errors.New("foreign"), RetCProtocolError},
	}

	for _, tc := range tests {
		assert.Equal(t, CodeOf(tc.err), tc.want)
	}
}

func TestConnectionConfigDefaults(t *testing.T) {
	config := ConnectionConfig{}
	assert.Equal(t, config.ExecutionTimeout(), time.Duration(0))
	assert.Equal(t, config.ConnectTimeout(), time.Duration(0))
	assert.Equal(t, config.Retries(), 1)
	assert.Equal(t, config.RowsPerPage(), DefaultPageSize)

	config = DefaultConnectionConfig("local", "localhost:6379")
	assert.Equal(t, config.ExecutionTimeout().Milliseconds(), int64(DefaultExecutionTimeoutMs))
	assert.Equal(t, config.Retries(), DefaultRetryCount)
}
