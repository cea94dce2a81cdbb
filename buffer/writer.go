package buffer

import (
	"bytes"
	"encoding/binary"
	"io"
	"log/slog"

	"github.com/go-pgwire/pgwire/wire"
)

// Writer assembles and flushes length-prefixed PostgreSQL frontend messages.
type Writer struct {
	io.Writer
	logger       *slog.Logger
	frame        bytes.Buffer
	putbuf       [4]byte
	lengthOffset int
	tag          wire.Frontend
	err          error
}

// NewWriter constructs a Writer flushing frontend messages to w.
func NewWriter(logger *slog.Logger, w io.Writer) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{Writer: w, logger: logger}
}

// Start begins a new message. Pass 0 for the startup/SSLRequest messages,
// which carry no tag byte; any other value is written as the leading tag
// byte ahead of the reserved length prefix.
func (writer *Writer) Start(t wire.Frontend) {
	writer.Reset()
	writer.tag = t
	if t != 0 {
		writer.frame.WriteByte(byte(t)) //nolint:errcheck
		writer.lengthOffset = 1
	} else {
		writer.lengthOffset = 0
	}
	writer.frame.Write(writer.putbuf[:]) //nolint:errcheck // reserved length bytes
}

func (writer *Writer) AddByte(b byte) {
	if writer.err != nil {
		return
	}
	writer.err = writer.frame.WriteByte(b)
}

func (writer *Writer) AddInt16(i int16) {
	if writer.err != nil {
		return
	}
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(i))
	_, writer.err = writer.frame.Write(b[:])
}

func (writer *Writer) AddInt32(i int32) {
	if writer.err != nil {
		return
	}
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(i))
	_, writer.err = writer.frame.Write(b[:])
}

func (writer *Writer) AddBytes(b []byte) {
	if writer.err != nil {
		return
	}
	_, writer.err = writer.frame.Write(b)
}

func (writer *Writer) AddString(s string) {
	if writer.err != nil {
		return
	}
	_, writer.err = writer.frame.WriteString(s)
}

func (writer *Writer) AddNullTerminate() {
	if writer.err != nil {
		return
	}
	writer.err = writer.frame.WriteByte(0)
}

func (writer *Writer) Error() error {
	return writer.err
}

func (writer *Writer) Reset() {
	writer.frame.Reset()
	writer.err = nil
}

// End finalizes the message (patching in its length) and flushes it to the
// underlying stream in a single Write call.
func (writer *Writer) End() error {
	defer writer.Reset()
	if writer.err != nil {
		return writer.err
	}

	buf := writer.frame.Bytes()
	offset := writer.lengthOffset
	binary.BigEndian.PutUint32(buf[offset:offset+4], uint32(len(buf)-offset))

	_, err := writer.Write(buf)
	writer.logger.Debug("-> writing message", slog.Any("tag", writer.tag))
	return err
}
