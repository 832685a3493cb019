package mailer

import (
	"context"
	"log/slog"

	"yamdb/internal/metrics"
)

// LogSender writes messages to the logger instead of delivering them. Development only.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		metrics.RecordMail("log", err)
		return err
	}
	s.logger.InfoContext(ctx, "mail",
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	metrics.RecordMail("log", nil)
	return nil
}
