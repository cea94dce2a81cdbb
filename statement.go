package pgwire

import (
	"context"
	"sync"

	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/codes"
	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/placeholder"
	"github.com/go-pgwire/pgwire/wire"
)

// Statement is a query parsed once on the server and addressable by name
// for repeated, differently-bound execution.
type Statement struct {
	sess *Session

	name       string
	sql        string
	remap      placeholder.Remap
	paramOIDs  []codec.OID
	fields     []FieldDescription
	resultFmts []wire.FormatCode

	closeOnce sync.Once
	closed    bool
}

// Prepare parses sql on the server under a fresh session-scoped statement
// name. The returned Statement must be closed once no longer needed.
func (s *Session) Prepare(ctx context.Context, sql string) (*Statement, error) {
	return s.prepare(ctx, s.nextStatementName(), sql, nil)
}

// PrepareTyped is Prepare with explicit parameter OIDs, skipping the
// server's own type inference (Parse's numParamTypes entries).
func (s *Session) PrepareTyped(ctx context.Context, sql string, paramTypes []codec.OID) (*Statement, error) {
	return s.prepare(ctx, s.nextStatementName(), sql, paramTypes)
}

func (s *Session) prepare(ctx context.Context, name, sql string, paramTypes []codec.OID) (*Statement, error) {
	translated, err := placeholder.Translate(s.cfg.paramStyle, sql)
	if err != nil {
		return nil, pgerror.NewProgrammingError(codes.Syntax, pgerror.LevelError, "pgwire: %s", err)
	}

	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.writeParse(name, translated.SQL, paramTypes)
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}
	s.writeDescribe(wire.DescribeStatement, name)
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}
	s.writeSync()
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}

	stmt := &Statement{sess: s, name: name, sql: translated.SQL, remap: translated.Remap}

	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return nil, wrapRecvErr(err)
		}

		switch tag {
		case wire.BackendParseComplete:
			// no payload

		case wire.BackendParameterDescription:
			oids, err := s.readParameterDescription()
			if err != nil {
				return nil, err
			}
			stmt.paramOIDs = oids

		case wire.BackendRowDescription:
			fields, err := s.readRowDescription()
			if err != nil {
				return nil, err
			}
			stmt.fields = fields
			stmt.resultFmts = s.resultFormatsFor(fields)

		case wire.BackendNoData:
			// statement produces no rows

		case wire.BackendErrorResponse:
			parseErr := s.readErrorResponse()
			if drainErr := s.drainToReady(); drainErr != nil {
				return nil, drainErr
			}
			return nil, parseErr

		case wire.BackendParameterStatus:
			s.handleParameterStatus()

		case wire.BackendNotificationResponse:
			s.handleNotification()

		case wire.BackendNoticeResponse:
			s.logNotice()

		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			return stmt, nil

		default:
			return nil, pgerror.NewInternalError("pgwire: unexpected message %s during Prepare", tag)
		}
	}
}

// drainToReady consumes messages up to and including the next
// ReadyForQuery, used after an ErrorResponse has aborted the current
// extended-query sequence.
func (s *Session) drainToReady() error {
	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return wrapRecvErr(err)
		}
		switch tag {
		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			return nil
		case wire.BackendErrorResponse:
			_ = s.readErrorResponse() // the first error already takes precedence
		case wire.BackendParameterStatus:
			s.handleParameterStatus()
		case wire.BackendNotificationResponse:
			s.handleNotification()

		case wire.BackendNoticeResponse:
			s.logNotice()
		}
	}
}

func wrapSendErr(err error) error {
	return pgerror.NewOperationalError(codes.ConnectionFailure, "pgwire: write message: %w", err)
}

func wrapRecvErr(err error) error {
	return pgerror.NewOperationalError(codes.ConnectionFailure, "pgwire: read message: %w", err)
}

// Close releases the statement's name on the server. Safe to call more than
// once.
func (stmt *Statement) Close(ctx context.Context) error {
	var err error
	stmt.closeOnce.Do(func() {
		err = stmt.closeStatement()
	})
	return err
}

func (stmt *Statement) closeStatement() error {
	s := stmt.sess
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.writeClose(wire.DescribeStatement, stmt.name)
	if err := s.end(); err != nil {
		return wrapSendErr(err)
	}
	s.writeSync()
	if err := s.end(); err != nil {
		return wrapSendErr(err)
	}

	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return wrapRecvErr(err)
		}
		switch tag {
		case wire.BackendCloseComplete:
			stmt.closed = true
		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			return nil
		case wire.BackendErrorResponse:
			parseErr := s.readErrorResponse()
			if drainErr := s.drainToReady(); drainErr != nil {
				return drainErr
			}
			return parseErr
		case wire.BackendParameterStatus:
			s.handleParameterStatus()
		case wire.BackendNotificationResponse:
			s.handleNotification()

		case wire.BackendNoticeResponse:
			s.logNotice()
		}
	}
}

// ParameterOIDs returns the types the server inferred (or was told) for
// this statement's parameters.
func (stmt *Statement) ParameterOIDs() []codec.OID { return stmt.paramOIDs }

// Fields returns the statement's result column descriptions.
func (stmt *Statement) Fields() []FieldDescription { return stmt.fields }
