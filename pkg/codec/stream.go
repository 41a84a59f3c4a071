package codec

import (
	"bytes"
	"io"

	"github.com/cockroachdb/errors"
)

const (
	// DefaultMaxPayload bounds a single length-prefixed value
	DefaultMaxPayload = 64 << 20

	// payloads up to this size are read into a single allocation
	smallPayload = 4 << 10
)

// Reader decodes primitive values from an underlying stream. It never reads
// ahead: each call consumes exactly the bytes of one value.
type Reader struct {
	r          io.Reader
	tmp        [8]byte
	maxPayload int64
	off        int64
}

// NewReader creates a Reader over r with DefaultMaxPayload
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r, maxPayload: DefaultMaxPayload}
}

// AsReader returns r itself when it already is a *Reader, so nested decoders
// share one offset and payload limit.
func AsReader(r io.Reader) *Reader {
	if cr, ok := r.(*Reader); ok {
		return cr
	}
	return NewReader(r)
}

// SetMaxPayload changes the largest accepted length prefix. Values <= 0
// restore the default.
func (r *Reader) SetMaxPayload(n int64) {
	if n <= 0 {
		n = DefaultMaxPayload
	}
	r.maxPayload = n
}

// Offset returns the number of bytes consumed so far
func (r *Reader) Offset() int64 {
	return r.off
}

// Read implements io.Reader so a Reader can be handed to nested decoders
func (r *Reader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	r.off += int64(n)
	return n, err
}

func (r *Reader) readFull(p []byte) error {
	n, err := io.ReadFull(r.r, p)
	r.off += int64(n)
	if err != nil {
		return errors.Wrapf(truncated(err), "after %d of %d bytes", n, len(p))
	}
	return nil
}

// ReadType decodes one fixed-width value of type t
func (r *Reader) ReadType(t Type) (any, error) {
	c, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	if c.Variable() {
		return nil, errors.Wrapf(ErrUnprimedLength, "decoding %s", t)
	}
	buf := r.tmp[:c.Width]
	if err := r.readFull(buf); err != nil {
		return nil, errors.Wrapf(err, "decoding %s", t)
	}
	return c.get(t.Endian().ByteOrder(), buf), nil
}

// ReadPayload decodes a length-prefixed value of type t holding n bytes
func (r *Reader) ReadPayload(t Type, n int64) (any, error) {
	c, err := Lookup(t)
	if err != nil {
		return nil, err
	}
	if !c.Variable() {
		return nil, errors.Wrapf(ErrTypeMismatch, "%s is not length-prefixed", t)
	}
	if n < 0 || n > r.maxPayload {
		return nil, errors.Wrapf(ErrInvalidLength, "%s length %d (max %d)", t, n, r.maxPayload)
	}
	var payload []byte
	if n <= smallPayload {
		payload = make([]byte, n)
		if err := r.readFull(payload); err != nil {
			return nil, errors.Wrapf(err, "decoding %s", t)
		}
	} else {
		// grow with the data actually present rather than trusting n
		var buf bytes.Buffer
		copied, err := io.CopyN(&buf, r.r, n)
		r.off += copied
		if err != nil {
			return nil, errors.Wrapf(truncated(err), "decoding %s after %d of %d bytes", t, copied, n)
		}
		payload = buf.Bytes()
	}
	return c.get(t.Endian().ByteOrder(), payload), nil
}

// Writer encodes primitive values onto an underlying stream
type Writer struct {
	w   io.Writer
	off int64
}

// NewWriter creates a Writer over w
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// AsWriter returns w itself when it already is a *Writer
func AsWriter(w io.Writer) *Writer {
	if cw, ok := w.(*Writer); ok {
		return cw
	}
	return NewWriter(w)
}

// Offset returns the number of bytes written so far
func (w *Writer) Offset() int64 {
	return w.off
}

// Write implements io.Writer
func (w *Writer) Write(p []byte) (int, error) {
	n, err := w.w.Write(p)
	w.off += int64(n)
	if err == nil && n != len(p) {
		err = io.ErrShortWrite
	}
	return n, err
}

// WriteType encodes v as type t. The value is fully validated before any
// byte reaches the stream.
func (w *Writer) WriteType(t Type, v any) error {
	buf, err := Encode(t, v)
	if err != nil {
		return err
	}
	if _, err := w.Write(buf); err != nil {
		return errors.Wrapf(err, "writing %s", t)
	}
	return nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
