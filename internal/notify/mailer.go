package notify

import (
    "context"
    "fmt"

    "github.com/wneessen/go-mail"

    "github.com/iliyamo/cinema-booking-engine/internal/config"
)

// Mailer sends plain-text email over SMTP.
type Mailer struct {
    client *mail.Client
    from   string
}

// NewMailer builds an SMTP client from cfg.  PLAIN auth is used when a
// username is configured.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
    opts := []mail.Option{mail.WithPort(cfg.Port)}
    if cfg.Username != "" {
        opts = append(opts,
            mail.WithSMTPAuth(mail.SMTPAuthPlain),
            mail.WithUsername(cfg.Username),
            mail.WithPassword(cfg.Password),
        )
    }
    c, err := mail.NewClient(cfg.Host, opts...)
    if err != nil {
        return nil, fmt.Errorf("init smtp client: %w", err)
    }
    return &Mailer{client: c, from: cfg.From}, nil
}

// Send delivers one message.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
    msg := mail.NewMsg()
    if err := msg.From(m.from); err != nil {
        return fmt.Errorf("set from: %w", err)
    }
    if err := msg.To(to); err != nil {
        return fmt.Errorf("set to: %w", err)
    }
    msg.Subject(subject)
    msg.SetBodyString(mail.TypeTextPlain, body)
    if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
        return fmt.Errorf("smtp send: %w", err)
    }
    return nil
}
