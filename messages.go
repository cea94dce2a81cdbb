package pgwire

import (
	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/wire"
)

// writeQuery queues a simple-query message, the non-extended protocol path
// used for COPY and other statements that cannot go through Parse/Bind.
func (s *Session) writeQuery(sql string) {
	s.writer.Start(wire.FrontendSimpleQuery)
	s.writer.AddString(sql)
	s.writer.AddNullTerminate()
}

// writeParse queues a Parse message. paramTypes may contain codec.UnknownOID
// entries for parameters whose type the server should infer.
func (s *Session) writeParse(name, sql string, paramTypes []codec.OID) {
	s.writer.Start(wire.FrontendParse)
	s.writer.AddString(name)
	s.writer.AddNullTerminate()
	s.writer.AddString(sql)
	s.writer.AddNullTerminate()
	s.writer.AddInt16(int16(len(paramTypes)))
	for _, t := range paramTypes {
		s.writer.AddInt32(int32(t))
	}
}

func (s *Session) writeDescribe(target wire.DescribeTarget, name string) {
	s.writer.Start(wire.FrontendDescribe)
	s.writer.AddByte(byte(target))
	s.writer.AddString(name)
	s.writer.AddNullTerminate()
}

// writeBind queues a Bind message. paramValues entries are wire-encoded
// bytes, or nil for SQL NULL. resultFormats names the format each result
// column should be sent back in.
func (s *Session) writeBind(portal, statement string, paramFormats []wire.FormatCode, paramValues [][]byte, resultFormats []wire.FormatCode) {
	s.writer.Start(wire.FrontendBind)
	s.writer.AddString(portal)
	s.writer.AddNullTerminate()
	s.writer.AddString(statement)
	s.writer.AddNullTerminate()

	s.writer.AddInt16(int16(len(paramFormats)))
	for _, f := range paramFormats {
		s.writer.AddInt16(int16(f))
	}

	s.writer.AddInt16(int16(len(paramValues)))
	for _, v := range paramValues {
		if v == nil {
			s.writer.AddInt32(-1)
			continue
		}
		s.writer.AddInt32(int32(len(v)))
		s.writer.AddBytes(v)
	}

	s.writer.AddInt16(int16(len(resultFormats)))
	for _, f := range resultFormats {
		s.writer.AddInt16(int16(f))
	}
}

func (s *Session) writeExecute(portal string, maxRows int32) {
	s.writer.Start(wire.FrontendExecute)
	s.writer.AddString(portal)
	s.writer.AddNullTerminate()
	s.writer.AddInt32(maxRows)
}

func (s *Session) writeClose(target wire.DescribeTarget, name string) {
	s.writer.Start(wire.FrontendClose)
	s.writer.AddByte(byte(target))
	s.writer.AddString(name)
	s.writer.AddNullTerminate()
}

func (s *Session) writeSync() {
	s.writer.Start(wire.FrontendSync)
}

func (s *Session) end() error {
	return s.writer.End()
}
