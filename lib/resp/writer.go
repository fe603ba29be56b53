package resp

import (
	"bufio"
	"io"
	"strconv"
)

// CRLF is the line separator of the protocol
const CRLF = "\r\n"

// Writer encodes commands and replies onto a buffered stream.
// Callers must Flush after the last write of a round-trip.
type Writer struct {
	bw *bufio.Writer
}

// NewWriter creates a Writer with a 64 KB buffer
func NewWriter(w io.Writer) *Writer {
	return &Writer{bw: bufio.NewWriterSize(w, 64*1024)}
}

// WriteCommand encodes args as an array of bulk strings
func (w *Writer) WriteCommand(args [][]byte) error {
	w.writeHeader('*', int64(len(args)))
	for _, arg := range args {
		w.writeBulk(arg)
	}
	return w.err()
}

// WriteValue encodes a reply value
func (w *Writer) WriteValue(v Value) error {
	w.writeValue(v)
	return w.err()
}

// Flush writes buffered data to the underlying writer
func (w *Writer) Flush() error {
	return w.bw.Flush()
}

func (w *Writer) writeValue(v Value) {
	switch v.Kind {
	case KindNull:
		w.bw.WriteString("$-1" + CRLF)
	case KindSimpleString:
		w.bw.WriteByte('+')
		w.bw.Write(v.Str)
		w.bw.WriteString(CRLF)
	case KindError:
		w.bw.WriteByte('-')
		w.bw.Write(v.Str)
		w.bw.WriteString(CRLF)
	case KindInteger:
		w.writeHeader(':', v.Int)
	case KindBulkString:
		w.writeBulk(v.Str)
	case KindArray:
		w.writeHeader('*', int64(len(v.Array)))
		for _, item := range v.Array {
			w.writeValue(item)
		}
	}
}

func (w *Writer) writeHeader(prefix byte, n int64) {
	w.bw.WriteByte(prefix)
	w.bw.WriteString(strconv.FormatInt(n, 10))
	w.bw.WriteString(CRLF)
}

func (w *Writer) writeBulk(b []byte) {
	w.writeHeader('$', int64(len(b)))
	w.bw.Write(b)
	w.bw.WriteString(CRLF)
}

// err surfaces a sticky write error. bufio.Writer keeps the first error and
// returns it from every subsequent call, so probing with a zero length write is enough.
func (w *Writer) err() error {
	_, err := w.bw.Write(nil)
	return err
}

// Encode returns the wire form of a command vector. Mostly used in tests.
func Encode(args ...string) []byte {
	buf := []byte("*" + strconv.Itoa(len(args)) + CRLF)
	for _, arg := range args {
		buf = append(buf, '$')
		buf = strconv.AppendInt(buf, int64(len(arg)), 10)
		buf = append(buf, CRLF...)
		buf = append(buf, arg...)
		buf = append(buf, CRLF...)
	}
	return buf
}
