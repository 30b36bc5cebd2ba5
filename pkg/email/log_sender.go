package email

import (
	"context"
	"log/slog"
)

// logSender implements EmailSender for development: it records the email in
// the log instead of delivering it.
type logSender struct {
	logger *slog.Logger
}

// NewLogSender creates a development email sender that only logs deliveries.
func NewLogSender(logger *slog.Logger) EmailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &logSender{logger: logger}
}

func (s *logSender) SendEmail(ctx context.Context, params SendEmailParams) error {
	if err := params.Validate(); err != nil {
		return err
	}

	s.logger.Info("email delivery skipped in development",
		slog.String("send_to", params.SendTo),
		slog.String("subject", params.Subject),
		slog.String("tag", params.Tag))
	return nil
}
