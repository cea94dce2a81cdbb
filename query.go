package pgwire

import "context"

// Query prepares sql under the session's unnamed statement slot, binds args
// and returns a Cursor over the result. The unnamed slot is exclusive across
// goroutines for the lifetime of the returned Cursor; closing it closes the
// portal and releases the unnamed slot (the unnamed statement itself is not
// closed on the server).
func (s *Session) Query(ctx context.Context, sql string, args ...any) (*Cursor, error) {
	s.unnamed.Lock()

	stmt, err := s.prepare(ctx, "", sql, nil)
	if err != nil {
		s.unnamed.Unlock()
		return nil, err
	}

	cur, err := stmt.Query(ctx, args...)
	if err != nil {
		s.unnamed.Unlock()
		return nil, err
	}

	cur.onClose = func() { s.unnamed.Unlock() }
	return cur, nil
}

// CommandTag is the server's command-completion string, e.g. "UPDATE 4".
type CommandTag string

// Exec runs sql to completion and returns its command tag, discarding any
// result rows.
func (s *Session) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	cur, err := s.Query(ctx, sql, args...)
	if err != nil {
		return "", err
	}
	defer cur.Close(ctx) //nolint:errcheck // the loop error below takes precedence

	for {
		ok, err := cur.Next(ctx)
		if err != nil {
			return "", err
		}
		if !ok {
			break
		}
	}

	return CommandTag(cur.CommandTag()), nil
}
