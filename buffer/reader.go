package buffer

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"unsafe"

	"github.com/go-pgwire/pgwire/wire"
)

// ErrMissingNulTerminator is returned when no NUL terminator is found when
// interpreting a message property as a string.
var ErrMissingNulTerminator = fmt.Errorf("NUL terminator not found")

// ErrInsufficientData is returned when there is insufficient data remaining
// inside the current message to unmarshal into the requested type.
var ErrInsufficientData = fmt.Errorf("insufficient data")

// DefaultMaxMessageSize bounds the size of a single backend message. It is
// generous enough for any RowDescription/DataRow the server is likely to
// send, while still protecting the client from a runaway length prefix.
const DefaultMaxMessageSize = 1 << 24 // 16MiB

// BufferedReader extends io.Reader with the convenience methods the wire
// protocol reader needs.
type BufferedReader interface {
	io.Reader
	ReadByte() (byte, error)
}

// Reader reads framed PostgreSQL backend messages off a stream connection.
type Reader struct {
	Buffer         BufferedReader
	Msg            []byte
	MaxMessageSize int
	header         [4]byte
}

// NewReader constructs a new Reader wrapping the given stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		Buffer:         bufio.NewReaderSize(r, 4096),
		MaxMessageSize: DefaultMaxMessageSize,
	}
}

// ReadTypedMsg reads a single tagged backend message, returning its message
// tag and the number of bytes consumed (tag + length prefix + body).
func (reader *Reader) ReadTypedMsg() (wire.Backend, int, error) {
	b, err := reader.Buffer.ReadByte()
	if err != nil {
		return 0, 0, err
	}

	n, err := reader.ReadUntypedMsg()
	if err != nil {
		return 0, 0, err
	}

	return wire.Backend(b), n + 1, nil
}

// ReadUntypedMsg reads a length-prefixed message body with no leading tag
// byte into reader.Msg. ReadTypedMsg calls it for every message once the tag
// byte has been consumed; called directly, it reads a message that carries
// no tag at all, such as a StartupMessage.
func (reader *Reader) ReadUntypedMsg() (int, error) {
	nread, err := io.ReadFull(reader.Buffer, reader.header[:])
	if err != nil {
		return nread, err
	}

	size := int(binary.BigEndian.Uint32(reader.header[:]))
	size -= 4 // the length prefix includes itself

	if size < 0 || size > reader.MaxMessageSize {
		return nread, fmt.Errorf("message size %d exceeds maximum allowed size %d", size, reader.MaxMessageSize)
	}

	reader.reset(size)
	n, err := io.ReadFull(reader.Buffer, reader.Msg)
	return nread + n, err
}

// reset sets reader.Msg to exactly size, reusing spare capacity when
// available and allocating a new slice only when necessary.
func (reader *Reader) reset(size int) {
	if cap(reader.Msg) >= size {
		reader.Msg = reader.Msg[:size]
		return
	}

	alloc := size
	if alloc < 4096 {
		alloc = 4096
	}
	reader.Msg = make([]byte, size, alloc)
}

// GetString reads a NUL-terminated string from the remaining message body.
func (reader *Reader) GetString() (string, error) {
	pos := bytes.IndexByte(reader.Msg, 0)
	if pos == -1 {
		return "", ErrMissingNulTerminator
	}

	// Safe: reader.Msg only ever advances through its backing array, and
	// reset reuses only the capacity beyond the current position, so bytes
	// already returned as a string are never overwritten by a later message.
	s := reader.Msg[:pos]
	reader.Msg = reader.Msg[pos+1:]
	return *((*string)(unsafe.Pointer(&s))), nil
}

// GetBytes consumes and returns the next n bytes of the message body.
func (reader *Reader) GetBytes(n int) ([]byte, error) {
	if len(reader.Msg) < n {
		return nil, ErrInsufficientData
	}

	v := reader.Msg[:n]
	reader.Msg = reader.Msg[n:]
	return v, nil
}

// GetByte consumes a single byte.
func (reader *Reader) GetByte() (byte, error) {
	b, err := reader.GetBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// GetUint16 consumes a big-endian uint16.
func (reader *Reader) GetUint16() (uint16, error) {
	if len(reader.Msg) < 2 {
		return 0, ErrInsufficientData
	}

	v := binary.BigEndian.Uint16(reader.Msg[:2])
	reader.Msg = reader.Msg[2:]
	return v, nil
}

// GetInt32 consumes a big-endian int32.
func (reader *Reader) GetInt32() (int32, error) {
	v, err := reader.GetUint32()
	return int32(v), err
}

// GetUint32 consumes a big-endian uint32.
func (reader *Reader) GetUint32() (uint32, error) {
	if len(reader.Msg) < 4 {
		return 0, ErrInsufficientData
	}

	v := binary.BigEndian.Uint32(reader.Msg[:4])
	reader.Msg = reader.Msg[4:]
	return v, nil
}

// Remaining returns the number of unread bytes left in the current message.
func (reader *Reader) Remaining() int {
	return len(reader.Msg)
}
