package resp

import (
	"bytes"
	"errors"
	"io"
	"runtime"
	"strconv"
	"strings"
	"testing"
)

// TestReadValue tests decoding of every reply kind
func TestReadValue(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{name: "Simple string", input: "+OK\r\n", expected: SimpleString("OK")},
		{name: "Error", input: "-ERR no such key\r\n", expected: Error("ERR no such key")},
		{name: "Integer", input: ":42\r\n", expected: Integer(42)},
		{name: "Negative integer", input: ":-1\r\n", expected: Integer(-1)},
		{name: "Bulk string", input: "$5\r\nhello\r\n", expected: BulkString("hello")},
		{name: "Empty bulk string", input: "$0\r\n\r\n", expected: BulkString("")},
		{name: "Binary bulk string", input: "$4\r\na\r\nb\r\n", expected: BulkString("a\r\nb")},
		{name: "Null bulk", input: "$-1\r\n", expected: Null()},
		{name: "Null array", input: "*-1\r\n", expected: Null()},
		{name: "Empty array", input: "*0\r\n", expected: Array()},
		{
			name:     "Array",
			input:    "*2\r\n$1\r\na\r\n:1\r\n",
			expected: Array(BulkString("a"), Integer(1)),
		},
		{
			name:     "Nested array",
			input:    "*2\r\n*1\r\n+x\r\n$-1\r\n",
			expected: Array(Array(SimpleString("x")), Null()),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(strings.NewReader(tt.input))
			v, err := r.ReadValue(nil)
			if err != nil {
				t.Fatalf("ReadValue() error = %v", err)
			}
			if !equal(v, tt.expected) {
				t.Errorf("ReadValue() = %v, want %v", v, tt.expected)
			}
		})
	}
}

// TestReadValueMalformed tests that malformed input yields a ProtocolError
func TestReadValueMalformed(t *testing.T) {
	inputs := []string{
		"?what\r\n",
		":abc\r\n",
		"$x\r\n",
		"$3\r\nabcde",
		"*-5\r\n",
		"+OK\n",
	}

	for _, input := range inputs {
		r := NewReader(strings.NewReader(input))
		_, err := r.ReadValue(nil)
		var perr *ProtocolError
		if !errors.As(err, &perr) {
			t.Errorf("input %q: expected ProtocolError, got %v", input, err)
		}
	}
}

// TestReadValueEOF tests that a truncated stream surfaces the I/O error
func TestReadValueEOF(t *testing.T) {
	r := NewReader(strings.NewReader("$10\r\nabc"))
	_, err := r.ReadValue(nil)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected io.ErrUnexpectedEOF, got %v", err)
	}
}

// TestReadValueLengthHeaderOnly tests that a length header without data does
// not reserve memory for the announced length
func TestReadValueLengthHeaderOnly(t *testing.T) {
	inputs := []string{
		"*16777216\r\n",
		"$536870912\r\n",
		"*2\r\n$100000\r\nabc",
	}

	for _, input := range inputs {
		var before, after runtime.MemStats
		runtime.ReadMemStats(&before)

		r := NewReader(strings.NewReader(input))
		_, err := r.ReadValue(nil)

		runtime.ReadMemStats(&after)
		if err == nil {
			t.Errorf("input %q: expected an error", input)
		}
		if grown := after.TotalAlloc - before.TotalAlloc; grown > 1<<20 {
			t.Errorf("input %q: allocated %d bytes", input, grown)
		}
	}
}

// TestReadValueLargeBulk tests bulk strings above the pre-allocation size
func TestReadValueLargeBulk(t *testing.T) {
	payload := strings.Repeat("x", 200*1024)
	r := NewReader(strings.NewReader("$" + strconv.Itoa(len(payload)) + "\r\n" + payload + "\r\n"))
	v, err := r.ReadValue(nil)
	if err != nil {
		t.Fatalf("ReadValue failed: %v", err)
	}
	if v.Text() != payload {
		t.Errorf("got %d bytes, want %d", len(v.Text()), len(payload))
	}
}

// TestReadValueProgress tests that the progress hook counts top level elements only
func TestReadValueProgress(t *testing.T) {
	input := "*3\r\n$1\r\na\r\n*2\r\n:1\r\n:2\r\n$1\r\nc\r\n"
	r := NewReader(strings.NewReader(input))

	var seen []int
	_, err := r.ReadValue(func(loaded int) {
		seen = append(seen, loaded)
	})
	if err != nil {
		t.Fatalf("ReadValue() error = %v", err)
	}

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("progress = %v, want [1 2 3]", seen)
	}
}

// TestReadCommand tests both request forms
func TestReadCommand(t *testing.T) {
	input := string(Encode("LSET", "list", "0", "v")) + "PING\r\n\r\n  ECHO  hi \r\n"
	r := NewReader(strings.NewReader(input))

	expected := [][]string{
		{"LSET", "list", "0", "v"},
		{"PING"},
		{"ECHO", "hi"},
	}

	for i, want := range expected {
		args, err := r.ReadCommand()
		if err != nil {
			t.Fatalf("command %d: ReadCommand() error = %v", i, err)
		}
		if len(args) != len(want) {
			t.Fatalf("command %d: got %d args, want %d", i, len(args), len(want))
		}
		for j := range want {
			if string(args[j]) != want[j] {
				t.Errorf("command %d arg %d = %q, want %q", i, j, args[j], want[j])
			}
		}
	}

	if _, err := r.ReadCommand(); err != io.EOF {
		t.Errorf("expected io.EOF at end of stream, got %v", err)
	}
}

// TestWriteRead tests that values written by the Writer are decoded by the Reader
func TestWriteRead(t *testing.T) {
	values := []Value{
		OK(),
		Error("WRONGTYPE Operation against a key holding the wrong kind of value"),
		Integer(-7),
		BulkString("with\r\ncrlf"),
		Null(),
		Array(BulkString("a"), Array(Integer(1)), Null()),
	}

	var buf bytes.Buffer
	w := NewWriter(&buf)
	for _, v := range values {
		if err := w.WriteValue(v); err != nil {
			t.Fatalf("WriteValue() error = %v", err)
		}
	}
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}

	r := NewReader(&buf)
	for i, want := range values {
		got, err := r.ReadValue(nil)
		if err != nil {
			t.Fatalf("value %d: ReadValue() error = %v", i, err)
		}
		if !equal(got, want) {
			t.Errorf("value %d = %v, want %v", i, got, want)
		}
	}
}

// TestWriteCommand tests the command encoding against Encode
func TestWriteCommand(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	if err := w.WriteCommand([][]byte{[]byte("LPUSH"), []byte("k"), []byte("")}); err != nil {
		t.Fatalf("WriteCommand() error = %v", err)
	}
	_ = w.Flush()

	want := Encode("LPUSH", "k", "")
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("WriteCommand() wrote %q, want %q", buf.Bytes(), want)
	}
}

// TestValueAccessors tests conversion helpers
func TestValueAccessors(t *testing.T) {
	n, err := BulkString("12").Integer64()
	if err != nil || n != 12 {
		t.Errorf("Integer64() = %d, %v", n, err)
	}
	if _, err := Array().Integer64(); err == nil {
		t.Error("expected error converting an array to integer")
	}

	items, err := Null().Strings()
	if err != nil || len(items) != 0 {
		t.Errorf("Null().Strings() = %v, %v", items, err)
	}

	if _, err := Array(Array()).ByteSlices(); err == nil {
		t.Error("expected error for nested arrays in ByteSlices")
	}

	if s := Array(BulkString("a"), Integer(2)).String(); s != "1) \"a\"\n2) (integer) 2" {
		t.Errorf("String() = %q", s)
	}
}

func equal(a, b Value) bool {
	if a.Kind != b.Kind || a.Int != b.Int || !bytes.Equal(a.Str, b.Str) || len(a.Array) != len(b.Array) {
		return false
	}
	for i := range a.Array {
		if !equal(a.Array[i], b.Array[i]) {
			return false
		}
	}
	return true
}
