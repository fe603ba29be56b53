package resp

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
)

const (
	// maxBulkLen mirrors the server side proto-max-bulk-len default
	maxBulkLen = 512 * 1024 * 1024
	// maxArrayLen bounds the element count of array replies
	maxArrayLen = 1 << 24
	// memory reserved up front from a length header, larger values grow as data arrives
	maxArrayPrealloc = 1024
	maxBulkPrealloc  = 64 * 1024
	// maxDepth bounds nested arrays
	maxDepth = 32
)

// ProtocolError reports malformed input on the wire
type ProtocolError struct {
	Msg string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Msg
}

func protocolError(msg string, line []byte) error {
	if line != nil {
		msg += ": " + strconv.Quote(string(line))
	}
	return &ProtocolError{Msg: msg}
}

// ProgressFunc is invoked after each top level array element has been decoded
// with the number of elements decoded so far
type ProgressFunc func(loaded int)

// Reader decodes RESP values from a stream
type Reader struct {
	br *bufio.Reader
}

// NewReader creates a Reader with a 64 KB buffer
func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReaderSize(r, 64*1024)}
}

// ReadValue decodes exactly one reply. progress may be nil.
func (r *Reader) ReadValue(progress ProgressFunc) (Value, error) {
	return r.readValue(0, progress)
}

// ReadCommand decodes one client request. Both the array-of-bulk-strings form
// and the inline form ("PING\r\n") are accepted.
func (r *Reader) ReadCommand() ([][]byte, error) {
	for {
		first, err := r.br.Peek(1)
		if err != nil {
			return nil, err
		}
		if first[0] == '*' {
			v, err := r.readValue(0, nil)
			if err != nil {
				return nil, err
			}
			args, err := v.ByteSlices()
			if err != nil {
				return nil, protocolError(err.Error(), nil)
			}
			return args, nil
		}

		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		fields := bytes.Fields(line)
		if len(fields) == 0 {
			// empty inline commands are ignored
			continue
		}
		for i := range fields {
			fields[i] = clone(fields[i])
		}
		return fields, nil
	}
}

// readLine reads a CRLF terminated line and returns it without the terminator
func (r *Reader) readLine() ([]byte, error) {
	line, err := r.br.ReadSlice('\n')
	if err == bufio.ErrBufferFull {
		return nil, protocolError("line too long", nil)
	}
	if err != nil {
		return nil, err
	}
	if len(line) < 2 || line[len(line)-2] != '\r' {
		return nil, protocolError("line not terminated by CRLF", line)
	}
	return line[:len(line)-2], nil
}

func (r *Reader) readValue(depth int, progress ProgressFunc) (Value, error) {
	if depth > maxDepth {
		return Value{}, protocolError("nesting too deep", nil)
	}

	line, err := r.readLine()
	if err != nil {
		return Value{}, err
	}
	if len(line) == 0 {
		return Value{}, protocolError("empty reply line", nil)
	}

	switch line[0] {
	case '+':
		return Value{Kind: KindSimpleString, Str: clone(line[1:])}, nil
	case '-':
		return Value{Kind: KindError, Str: clone(line[1:])}, nil
	case ':':
		n, err := strconv.ParseInt(string(line[1:]), 10, 64)
		if err != nil {
			return Value{}, protocolError("invalid integer", line)
		}
		return Integer(n), nil
	case '$':
		n, err := strconv.ParseInt(string(line[1:]), 10, 64)
		if err != nil || n < -1 || n > maxBulkLen {
			return Value{}, protocolError("invalid bulk length", line)
		}
		if n == -1 {
			return Null(), nil
		}
		buf, err := r.readBulk(n + 2)
		if err != nil {
			return Value{}, err
		}
		if buf[n] != '\r' || buf[n+1] != '\n' {
			return Value{}, protocolError("bulk string not terminated by CRLF", nil)
		}
		return Bulk(buf[:n]), nil
	case '*':
		n, err := strconv.ParseInt(string(line[1:]), 10, 64)
		if err != nil || n < -1 || n > maxArrayLen {
			return Value{}, protocolError("invalid array length", line)
		}
		if n == -1 {
			return Null(), nil
		}
		items := make([]Value, 0, min(n, maxArrayPrealloc))
		for i := int64(0); i < n; i++ {
			item, err := r.readValue(depth+1, nil)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
			if progress != nil {
				progress(len(items))
			}
		}
		return Array(items...), nil
	default:
		return Value{}, protocolError("unknown reply type", line)
	}
}

// readBulk reads exactly n bytes
func (r *Reader) readBulk(n int64) ([]byte, error) {
	if n <= maxBulkPrealloc {
		buf := make([]byte, n)
		if _, err := io.ReadFull(r.br, buf); err != nil {
			return nil, err
		}
		return buf, nil
	}

	var buf bytes.Buffer
	if _, err := io.CopyN(&buf, r.br, n); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return buf.Bytes(), nil
}

// clone copies b, since slices returned by ReadSlice are only valid until the next read
func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
