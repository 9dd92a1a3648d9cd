package notification

import (
	"context"
	"log/slog"
)

type Message struct {
	To      string
	Subject string
	HTML    string
	// Kind is used for logging only: welcome, approval or reset.
	Kind string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer stands in for the provider when no api key is configured.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email not sent, no provider configured",
		"kind", msg.Kind,
		"to", msg.To,
		"subject", msg.Subject)
	return nil
}
