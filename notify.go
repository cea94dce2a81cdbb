package pgwire

import (
	"context"
	"log/slog"
	"strings"
)

// handleNotification reads a NotificationResponse payload and forwards it
// to the Notifications channel, dropping it with a log line if the channel
// is full rather than blocking the dispatch loop a LISTENer isn't draining.
func (s *Session) handleNotification() {
	pid, _ := s.reader.GetInt32()
	channel, _ := s.reader.GetString()
	payload, _ := s.reader.GetString()

	s.rec.NotificationReceived(channel)

	select {
	case s.notifications <- Notification{PID: pid, Channel: channel, Payload: payload}:
	default:
		s.logger.Warn("dropping notification, channel is full", slog.String("channel", channel))
	}
}

// Listen subscribes to a channel. Incoming NOTIFY events surface on
// Notifications().
func (s *Session) Listen(ctx context.Context, channel string) error {
	_, err := s.Exec(ctx, "LISTEN "+quoteIdentifier(channel))
	return err
}

// Unlisten cancels a prior Listen subscription.
func (s *Session) Unlisten(ctx context.Context, channel string) error {
	_, err := s.Exec(ctx, "UNLISTEN "+quoteIdentifier(channel))
	return err
}

// Notify sends a NOTIFY on channel carrying payload.
func (s *Session) Notify(ctx context.Context, channel, payload string) error {
	_, err := s.Exec(ctx, "NOTIFY "+quoteIdentifier(channel)+", "+quoteLiteral(payload))
	return err
}

func quoteIdentifier(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `''`) + `'`
}
