package common

import (
	"github.com/zxliu/RedisDesktopManager/lib/resp"
)

// Response is the parsed result of one command
type Response struct {
	// Value is the decoded reply
	Value resp.Value
	// LoadedItemsCount is the number of top level items decoded so far.
	// It only grows while the reply streams in and equals the array length once complete.
	LoadedItemsCount int
}

// NewResponse wraps a complete reply
func NewResponse(v resp.Value) *Response {
	r := &Response{Value: v}
	if v.Kind == resp.KindArray {
		r.LoadedItemsCount = len(v.Array)
	}
	return r
}

// IsErrorReply reports whether the server answered with an error reply
func (r *Response) IsErrorReply() bool {
	return r.Value.IsError()
}

// Err converts an error reply into a ProtocolError, nil otherwise
func (r *Response) Err() error {
	if !r.Value.IsError() {
		return nil
	}
	return NewError(RetCProtocolError, r.Value.Text())
}

func (r *Response) String() string {
	return r.Value.String()
}
