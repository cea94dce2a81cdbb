package pgwire

import (
	"context"
	"time"

	"github.com/go-pgwire/pgwire/codec"
	"github.com/go-pgwire/pgwire/codes"
	"github.com/go-pgwire/pgwire/pgerror"
	"github.com/go-pgwire/pgwire/placeholder"
	"github.com/go-pgwire/pgwire/wire"
)

// codeParamEncode tags a failure to encode a host argument ahead of Bind.
const codeParamEncode = codes.InvalidParameterValue

// remapArgs applies a statement's placeholder Remap to the caller's
// variadic arguments. A named-style translation resolves a map passed as
// the sole argument; every other style takes args positionally as-is.
func remapArgs(remap placeholder.Remap, args []any) ([]any, error) {
	if remap == nil {
		return args, nil
	}
	if len(args) == 1 {
		if m, ok := args[0].(map[string]any); ok {
			return remap(m)
		}
	}
	return remap(args)
}

// Cursor iterates the rows of a bound portal, refilling its row cache from
// the server only once the cache has run dry and the portal reported more
// rows remain.
type Cursor struct {
	sess   *Session
	stmt   *Statement
	portal string
	fields []FieldDescription

	rows    [][]any
	idx     int
	more    bool // the last Execute ended in PortalSuspended, not CommandComplete
	tag     string
	onClose func()
	closed  bool
}

// Query binds args to the statement under a fresh portal and prefetches the
// first batch of rows.
func (stmt *Statement) Query(ctx context.Context, args ...any) (*Cursor, error) {
	s := stmt.sess
	portal := s.nextPortalName()

	bound, err := remapArgs(stmt.remap, args)
	if err != nil {
		return nil, pgerror.NewDataError(codeParamEncode, "pgwire: %s", err)
	}

	paramFormats := make([]wire.FormatCode, len(bound))
	paramValues := make([][]byte, len(bound))
	for i, arg := range bound {
		c, err := s.registry.Inspect(arg)
		if err != nil {
			return nil, pgerror.NewDataError(codeParamEncode, "pgwire: parameter %d: %s", i+1, err)
		}
		paramFormats[i] = c.Format
		if arg == nil {
			continue
		}
		v, err := c.Encode(arg)
		if err != nil {
			return nil, pgerror.NewDataError(codeParamEncode, "pgwire: parameter %d: %s", i+1, err)
		}
		paramValues[i] = v
	}

	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	resultFormats := stmt.resultFmts
	s.writeBind(portal, stmt.name, paramFormats, paramValues, resultFormats)
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}
	s.writeDescribe(wire.DescribePortal, portal)
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}
	s.writeExecute(portal, int32(s.cfg.rowCacheSize))
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}
	s.writeSync()
	if err := s.end(); err != nil {
		return nil, wrapSendErr(err)
	}

	started := time.Now()
	cur := &Cursor{sess: s, stmt: stmt, portal: portal, fields: stmt.fields}
	if err := s.collectPortalBatch(cur); err != nil {
		return nil, err
	}
	s.rec.QueryExecuted(stmt.sql, time.Since(started))

	return cur, nil
}

// collectPortalBatch reads BindComplete, the portal's RowDescription/NoData,
// zero or more DataRows, the terminal CommandComplete/PortalSuspended, and
// ReadyForQuery — the full response to a Bind+Describe+Execute+Sync batch.
func (s *Session) collectPortalBatch(cur *Cursor) error {
	cur.rows = cur.rows[:0]
	cur.idx = 0

	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return wrapRecvErr(err)
		}

		switch tag {
		case wire.BackendBindComplete:

		case wire.BackendRowDescription:
			fields, err := s.readRowDescription()
			if err != nil {
				return err
			}
			cur.fields = fields

		case wire.BackendNoData:

		case wire.BackendDataRow:
			row, err := s.readDataRow(cur.fields)
			if err != nil {
				return err
			}
			cur.rows = append(cur.rows, row)

		case wire.BackendPortalSuspended:
			cur.more = true

		case wire.BackendCommandComplete:
			tagStr, _ := s.reader.GetString()
			cur.tag = tagStr
			cur.more = false

		case wire.BackendEmptyQuery:
			cur.more = false

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

		case wire.BackendReady:
			status, _ := s.reader.GetByte()
			s.txStatus = wire.TransactionStatus(status)
			s.rec.RowsFetched(len(cur.rows))
			return nil

		default:
			return pgerror.NewInternalError("pgwire: unexpected message %s during Execute", tag)
		}
	}
}

func (s *Session) readDataRow(fields []FieldDescription) ([]any, error) {
	n, err := s.reader.GetUint16()
	if err != nil {
		return nil, err
	}

	row := make([]any, n)
	for i := 0; i < int(n); i++ {
		length, err := s.reader.GetInt32()
		if err != nil {
			return nil, err
		}
		if length < 0 {
			row[i] = nil
			continue
		}
		raw, err := s.reader.GetBytes(int(length))
		if err != nil {
			return nil, err
		}

		var typeOID codec.OID
		if i < len(fields) {
			typeOID = fields[i].TypeOID
		}
		c, ok := s.registry.Lookup(typeOID)
		if !ok {
			c, _ = s.registry.Lookup(codec.OIDText)
		}
		v, err := c.Decode(raw)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, nil
}

// Next advances the cursor, refilling from the server when the local row
// cache has run dry and the portal reported more rows are available. It
// returns false, nil once the portal is exhausted.
func (c *Cursor) Next(ctx context.Context) (bool, error) {
	if c.closed {
		return false, pgerror.ErrCursorClosed
	}

	if c.idx < len(c.rows) {
		c.idx++
		return true, nil
	}

	if !c.more {
		return false, nil
	}

	s := c.sess
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.writeExecute(c.portal, int32(s.cfg.rowCacheSize))
	if err := s.end(); err != nil {
		return false, wrapSendErr(err)
	}
	s.writeSync()
	if err := s.end(); err != nil {
		return false, wrapSendErr(err)
	}
	if err := s.collectPortalBatch(c); err != nil {
		return false, err
	}

	if len(c.rows) == 0 {
		return false, nil
	}
	c.idx = 1
	return true, nil
}

// Values returns the current row's decoded column values.
func (c *Cursor) Values() []any {
	if c.idx == 0 || c.idx > len(c.rows) {
		return nil
	}
	return c.rows[c.idx-1]
}

// Fields returns the portal's result column descriptions.
func (c *Cursor) Fields() []FieldDescription { return c.fields }

// CommandTag returns the server's command-completion tag (e.g. "SELECT 3"),
// populated once the portal has been fully consumed.
func (c *Cursor) CommandTag() string { return c.tag }

// Close releases the portal on the server.
func (c *Cursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	s := c.sess
	s.dispatch.Lock()
	s.writeClose(wire.DescribePortal, c.portal)
	sendErr := s.end()
	if sendErr == nil {
		s.writeSync()
		sendErr = s.end()
	}

	var err error
	if sendErr != nil {
		err = wrapSendErr(sendErr)
	} else {
		err = s.drainCloseComplete()
	}
	s.dispatch.Unlock()

	if c.onClose != nil {
		c.onClose()
	}
	return err
}

func (s *Session) drainCloseComplete() error {
	for {
		tag, _, err := s.reader.ReadTypedMsg()
		if err != nil {
			return wrapRecvErr(err)
		}
		switch tag {
		case wire.BackendCloseComplete:
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
