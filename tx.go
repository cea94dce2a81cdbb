package pgwire

import (
	"context"

	"github.com/go-pgwire/pgwire/wire"
)

// InTransaction reports whether the session's last ReadyForQuery reported an
// open transaction block (idle-in-transaction or an aborted transaction).
func (s *Session) InTransaction() bool {
	return s.txStatus == wire.TxInBlock || s.txStatus == wire.TxInFailed
}

// TransactionFailed reports whether the current transaction block has been
// aborted by a prior error and is only accepting ROLLBACK.
func (s *Session) TransactionFailed() bool {
	return s.txStatus == wire.TxInFailed
}

// Begin opens a transaction block.
func (s *Session) Begin(ctx context.Context) error {
	_, err := s.Exec(ctx, "BEGIN")
	return err
}

// Commit commits the current transaction block.
func (s *Session) Commit(ctx context.Context) error {
	_, err := s.Exec(ctx, "COMMIT")
	return err
}

// Rollback aborts the current transaction block.
func (s *Session) Rollback(ctx context.Context) error {
	_, err := s.Exec(ctx, "ROLLBACK")
	return err
}
