package pgwire

import (
	"context"
	"fmt"
	"io"

	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/wire"
)

// CopySpec names what a COPY statement operates on. With Table set, a
// "COPY <table> FROM/TO stdout" statement is synthesized using Sep
// (defaulting to a tab) and, if non-empty, Null as the column delimiter and
// NULL token. With Query set instead, it is used verbatim as the full COPY
// statement, letting the caller address things a bare table name can't
// (a column list, a WHERE clause via "COPY (SELECT ...) TO stdout", a
// different format). Exactly one of Table or Query must be set.
type CopySpec struct {
	Table string
	Query string
	Sep   string
	Null  string
}

func (spec CopySpec) toSQL(direction string) (string, error) {
	query := spec.Query
	if query == "" {
		if spec.Table == "" {
			return "", pgerror.ErrCopyQueryOrTableRequired
		}
		sep := spec.Sep
		if sep == "" {
			sep = "\t"
		}
		query = fmt.Sprintf("COPY %s %s stdout DELIMITER '%s'", spec.Table, direction, sep)
		if spec.Null != "" {
			query += fmt.Sprintf(" NULL '%s'", spec.Null)
		}
	}
	return query, nil
}

// CopyFrom streams src to the server as the data for a COPY ... FROM STDIN
// statement, one CopyData message per Read, and reports the command tag on
// success. A read error from src aborts the copy with CopyFail instead of
// CopyDone, and the server's resulting ErrorResponse is returned.
func (s *Session) CopyFrom(ctx context.Context, spec CopySpec, src io.Reader) (CommandTag, error) {
	sql, err := spec.toSQL("FROM")
	if err != nil {
		return "", err
	}
	if src == nil {
		return "", pgerror.ErrCopyQueryWithoutStream
	}

	s.unnamed.Lock()
	defer s.unnamed.Unlock()
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.writeQuery(sql)
	if err := s.end(); err != nil {
		return "", wrapSendErr(err)
	}

	if err := s.awaitCopyInResponse(); err != nil {
		return "", err
	}

	buf := make([]byte, 8*1024)
	copyErr := error(nil)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			s.writer.Start(wire.FrontendCopyData)
			s.writer.AddBytes(buf[:n])
			if werr := s.end(); werr != nil {
				copyErr = wrapSendErr(werr)
				break
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			copyErr = err
			break
		}
	}

	if copyErr != nil {
		s.writer.Start(wire.FrontendCopyFail)
		s.writer.AddString(copyErr.Error())
		s.writer.AddNullTerminate()
		if err := s.end(); err != nil {
			return "", wrapSendErr(err)
		}
	} else {
		s.writer.Start(wire.FrontendCopyDone)
		if err := s.end(); err != nil {
			return "", wrapSendErr(err)
		}
	}

	tag, err := s.awaitCopyCompletion()
	if err != nil {
		return "", err
	}
	if copyErr != nil {
		return "", pgerror.NewDataError(codeParamEncode, "pgwire: copy aborted: %s", copyErr)
	}
	return tag, nil
}

// CopyTo streams the result of a COPY ... TO STDOUT statement to dst, one
// CopyData payload per Write, and reports the command tag on completion.
// A CopySpec with Query set sends that statement verbatim instead of
// building a COPY statement from Table.
func (s *Session) CopyTo(ctx context.Context, spec CopySpec, dst io.Writer) (CommandTag, error) {
	sql, err := spec.toSQL("TO")
	if err != nil {
		return "", err
	}
	if dst == nil {
		return "", pgerror.ErrCopyQueryWithoutStream
	}

	s.unnamed.Lock()
	defer s.unnamed.Unlock()
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.writeQuery(sql)
	if err := s.end(); err != nil {
		return "", wrapSendErr(err)
	}

	if err := s.awaitCopyOutResponse(); err != nil {
		return "", err
	}

	var tag CommandTag
	for {
		tagMsg, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return "", wrapRecvErr(err)
		}

		switch tagMsg {
		case wire.BackendCopyData:
			chunk, err := s.reader.GetBytes(s.reader.Remaining())
			if err != nil {
				return "", err
			}
			if _, err := dst.Write(chunk); err != nil {
				return "", err
			}

		case wire.BackendCopyDone:
			// no payload

		case wire.BackendCommandComplete:
			tagStr, _ := s.reader.GetString()
			tag = CommandTag(tagStr)

		case wire.BackendErrorResponse:
			parseErr := s.readErrorResponse()
			if drainErr := s.drainToReady(); drainErr != nil {
				return "", drainErr
			}
			return "", parseErr

		case wire.BackendNotificationResponse:
			s.handleNotification()

		case wire.BackendNoticeResponse:
			s.logNotice()

		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			return tag, nil

		default:
			return "", pgerror.NewInternalError("pgwire: unexpected message %s during CopyOut", tagMsg)
		}
	}
}

// awaitCopyInResponse consumes messages up to and including CopyInResponse,
// the server's signal that it is ready to receive CopyData frames.
func (s *Session) awaitCopyInResponse() error {
	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return wrapRecvErr(err)
		}
		switch tag {
		case wire.BackendCopyInResponse:
			return nil
		case wire.BackendErrorResponse:
			parseErr := s.readErrorResponse()
			if drainErr := s.drainToReady(); drainErr != nil {
				return drainErr
			}
			return parseErr
		case wire.BackendNotificationResponse:
			s.handleNotification()
		case wire.BackendNoticeResponse:
			s.logNotice()
		default:
			return pgerror.NewInternalError("pgwire: unexpected message %s awaiting CopyInResponse", tag)
		}
	}
}

// awaitCopyOutResponse consumes messages up to and including
// CopyOutResponse, the server's signal that CopyData frames follow.
func (s *Session) awaitCopyOutResponse() error {
	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return wrapRecvErr(err)
		}
		switch tag {
		case wire.BackendCopyOutResponse:
			return nil
		case wire.BackendErrorResponse:
			parseErr := s.readErrorResponse()
			if drainErr := s.drainToReady(); drainErr != nil {
				return drainErr
			}
			return parseErr
		case wire.BackendNotificationResponse:
			s.handleNotification()
		case wire.BackendNoticeResponse:
			s.logNotice()
		default:
			return pgerror.NewInternalError("pgwire: unexpected message %s awaiting CopyOutResponse", tag)
		}
	}
}

// awaitCopyCompletion consumes messages up to and including ReadyForQuery
// following CopyDone/CopyFail, returning the command tag from
// CommandComplete or the server's ErrorResponse if CopyFail aborted it.
func (s *Session) awaitCopyCompletion() (CommandTag, error) {
	var tag CommandTag
	for {
		tagMsg, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return "", wrapRecvErr(err)
		}
		switch tagMsg {
		case wire.BackendCommandComplete:
			tagStr, _ := s.reader.GetString()
			tag = CommandTag(tagStr)
		case wire.BackendErrorResponse:
			parseErr := s.readErrorResponse()
			if drainErr := s.drainToReady(); drainErr != nil {
				return "", drainErr
			}
			return "", parseErr
		case wire.BackendNotificationResponse:
			s.handleNotification()
		case wire.BackendNoticeResponse:
			s.logNotice()
		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			return tag, nil
		}
	}
}
