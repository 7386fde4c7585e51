package mailer

import (
	"context"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"phone-repair/pkg/utils"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP mailer when a host is configured, otherwise a mailer
// that only writes messages to the log.
func New(cfg utils.EmailConfig, log *zap.Logger) Mailer {
	if cfg.Host == "" {
		log.Warn("SMTP host not configured, emails will only be logged")
		return NewLogMailer(log)
	}
	return NewSMTPMailer(cfg, log)
}

type SMTPMailer struct {
	cfg utils.EmailConfig
	log *zap.Logger
}

func NewSMTPMailer(cfg utils.EmailConfig, log *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		cfg: cfg,
		log: log.With(zap.String("component", "mailer")),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	mm := mail.NewMsg()
	if err := mm.From(m.cfg.From); err != nil {
		return fmt.Errorf("set sender %s: %w", m.cfg.From, err)
	}
	if err := mm.To(msg.To); err != nil {
		return fmt.Errorf("set recipient %s: %w", msg.To, err)
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextPlain, msg.Body)

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTimeout(10 * time.Second),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(m.cfg.User),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, mm); err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}

	m.log.Info("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

// LogMailer is used in development: messages end up in the log only.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.With(zap.String("component", "mailer"))}
}

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	m.log.Info("Email (not sent)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}
