package services

import (
	"context"
	"fmt"

	"noteshelf/config"

	"go.uber.org/zap"
)

// Message is a rendered outbound email.
type Message struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers messages. Implementations must be safe for concurrent use.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// NewMailer builds the transport selected by cfg.Driver wrapped in a circuit
// breaker.
func NewMailer(cfg config.MailConfig, logger *zap.Logger) (Mailer, error) {
	var transport Mailer
	switch cfg.Driver {
	case config.MailSMTP:
		m, err := NewSMTPMailer(cfg)
		if err != nil {
			return nil, err
		}
		transport = m
	case config.MailBrevo:
		m, err := NewBrevoMailer(cfg.BrevoAPIKey, cfg.From, nil)
		if err != nil {
			return nil, err
		}
		transport = m
	case config.MailLog:
		transport = NewLogMailer(logger)
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Driver)
	}
	return NewBreakerMailer(transport, cfg.BreakerFailures, cfg.BreakerTimeout, logger), nil
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email not sent, log driver",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
