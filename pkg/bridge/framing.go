// Package bridge speaks the browser native-messaging framing: every
// message is a 4-byte length in host byte order followed by that many
// bytes of UTF-8 JSON.
package bridge

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

// MaxMessageSize bounds a single incoming message.
const MaxMessageSize = 64 << 20

// ErrClosed is returned by Read when the input ends cleanly between
// messages.
var ErrClosed = errors.New("bridge input closed")

// ErrTooLarge is returned for a message longer than the reader's limit.
// Its body has been discarded, so the next Read starts on a frame boundary.
var ErrTooLarge = errors.New("bridge message too large")

// Reader decodes framed messages.
type Reader struct {
	r   *bufio.Reader
	max uint32
}

// NewReader returns a Reader reading from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r), max: MaxMessageSize}
}

// ReadRaw returns the next message body with the sender's escaping
// quirks removed.
func (r *Reader) ReadRaw() ([]byte, error) {
	var header [4]byte
	if _, err := io.ReadFull(r.r, header[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("reading message length: %w", err)
	}
	n := binary.NativeEndian.Uint32(header[:])
	if n > r.max {
		if _, err := io.CopyN(io.Discard, r.r, int64(n)); err != nil {
			return nil, fmt.Errorf("discarding %d byte message: %w", n, io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("message of %d bytes exceeds %d: %w", n, r.max, ErrTooLarge)
	}

	body := make([]byte, n)
	if _, err := io.ReadFull(r.r, body); err != nil {
		return nil, fmt.Errorf("reading %d byte message: %w", n, err)
	}
	return Unquirk(body), nil
}

// Read decodes the next message into v.
func (r *Reader) Read(v any) error {
	body, err := r.ReadRaw()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decoding message: %w", err)
	}
	return nil
}

var (
	escapedQuote = []byte(`\"`)
	quote        = []byte(`"`)
)

// Unquirk undoes the double encoding some senders apply: escaped quotes
// are unescaped until none remain, then quotes hugging the outer braces
// of an embedded object are dropped.
func Unquirk(body []byte) []byte {
	for bytes.Contains(body, escapedQuote) {
		body = bytes.ReplaceAll(body, escapedQuote, quote)
	}
	body = bytes.ReplaceAll(body, []byte(`"{`), []byte(`{`))
	return bytes.ReplaceAll(body, []byte(`}"`), []byte(`}`))
}

// Writer encodes framed messages. It is safe for concurrent use.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter returns a Writer writing to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write encodes v as one message.
func (w *Writer) Write(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	frame := make([]byte, 4+len(body))
	binary.NativeEndian.PutUint32(frame, uint32(len(body)))
	copy(frame[4:], body)

	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.w.Write(frame); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}
