package resp

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the tag of a Value
type Kind byte

const (
	KindNull Kind = iota
	KindSimpleString
	KindError
	KindInteger
	KindBulkString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindSimpleString:
		return "simple-string"
	case KindError:
		return "error"
	case KindInteger:
		return "integer"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	default:
		return "unknown"
	}
}

// Value is a single decoded RESP reply. Only the fields matching Kind are set.
type Value struct {
	Kind  Kind
	Str   []byte  // KindSimpleString, KindError, KindBulkString
	Int   int64   // KindInteger
	Array []Value // KindArray
}

// --------------------------------------------------------------------------
// Constructors
// --------------------------------------------------------------------------

// Null returns the null bulk reply
func Null() Value {
	return Value{Kind: KindNull}
}

// OK returns the +OK status reply
func OK() Value {
	return SimpleString("OK")
}

// SimpleString returns a status reply
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: []byte(s)}
}

// Error returns an error reply
func Error(msg string) Value {
	return Value{Kind: KindError, Str: []byte(msg)}
}

// Errorf returns a formatted error reply
func Errorf(format string, args ...interface{}) Value {
	return Error(fmt.Sprintf(format, args...))
}

// Integer returns an integer reply
func Integer(n int64) Value {
	return Value{Kind: KindInteger, Int: n}
}

// Bulk returns a bulk string reply. The slice is not copied.
func Bulk(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{Kind: KindBulkString, Str: b}
}

// BulkString returns a bulk string reply for s
func BulkString(s string) Value {
	return Value{Kind: KindBulkString, Str: []byte(s)}
}

// Array returns an array reply
func Array(values ...Value) Value {
	if values == nil {
		values = []Value{}
	}
	return Value{Kind: KindArray, Array: values}
}

// BulkArray returns an array of bulk strings
func BulkArray(items [][]byte) Value {
	values := make([]Value, len(items))
	for i, item := range items {
		values[i] = Bulk(item)
	}
	return Array(values...)
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

func (v Value) IsNull() bool {
	return v.Kind == KindNull
}

func (v Value) IsError() bool {
	return v.Kind == KindError
}

// Text returns the string payload of a string-like value.
// Integers are formatted in base 10, everything else yields "".
func (v Value) Text() string {
	switch v.Kind {
	case KindSimpleString, KindError, KindBulkString:
		return string(v.Str)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	default:
		return ""
	}
}

// Integer64 returns the value as an int64. Bulk strings holding a number are accepted.
func (v Value) Integer64() (int64, error) {
	switch v.Kind {
	case KindInteger:
		return v.Int, nil
	case KindBulkString, KindSimpleString:
		n, err := strconv.ParseInt(string(v.Str), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not an integer", v.Str)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer reply, got %s", v.Kind)
	}
}

// ByteSlices returns the elements of an array of bulk strings.
// A null reply yields an empty slice.
func (v Value) ByteSlices() ([][]byte, error) {
	switch v.Kind {
	case KindNull:
		return [][]byte{}, nil
	case KindArray:
		out := make([][]byte, len(v.Array))
		for i, item := range v.Array {
			switch item.Kind {
			case KindBulkString, KindSimpleString:
				out[i] = item.Str
			case KindInteger:
				out[i] = []byte(strconv.FormatInt(item.Int, 10))
			case KindNull:
				out[i] = nil
			default:
				return nil, fmt.Errorf("array element %d is %s, expected string", i, item.Kind)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected array reply, got %s", v.Kind)
	}
}

// Strings is like ByteSlices but converts every element to a string
func (v Value) Strings() ([]string, error) {
	items, err := v.ByteSlices()
	if err != nil {
		return nil, err
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item)
	}
	return out, nil
}

// String renders the value the way redis-cli does. Used for logging and the exec command.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb, "")
	return sb.String()
}

func (v Value) format(sb *strings.Builder, indent string) {
	switch v.Kind {
	case KindNull:
		sb.WriteString("(nil)")
	case KindSimpleString:
		sb.Write(v.Str)
	case KindError:
		sb.WriteString("(error) ")
		sb.Write(v.Str)
	case KindInteger:
		sb.WriteString("(integer) ")
		sb.WriteString(strconv.FormatInt(v.Int, 10))
	case KindBulkString:
		sb.WriteString(strconv.Quote(string(v.Str)))
	case KindArray:
		if len(v.Array) == 0 {
			sb.WriteString("(empty array)")
			return
		}
		width := len(strconv.Itoa(len(v.Array)))
		for i, item := range v.Array {
			if i > 0 {
				sb.WriteString("\n")
				sb.WriteString(indent)
			}
			prefix := fmt.Sprintf("%*d) ", width, i+1)
			sb.WriteString(prefix)
			item.format(sb, indent+strings.Repeat(" ", len(prefix)))
		}
	}
}
