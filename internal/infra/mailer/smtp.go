// Package mailer renders notification emails and sends them over SMTP.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"net/textproto"
	"time"

	"maltiti/internal/config"
	"maltiti/internal/notify"

	"github.com/go-faster/errors"
	"github.com/jordan-wright/email"
	"go.uber.org/zap"
)

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <h2>{{.Subject}}</h2>
  <p>Hello {{if .Name}}{{.Name}}{{else}}there{{end}},</p>
  <p>{{.Body}}</p>
  {{- if .ActionURL}}
  <p><a href="{{.ActionURL}}" style="background:#0F6E56;color:#fff;padding:10px 16px;text-decoration:none;border-radius:4px;">{{.ActionLabel}}</a></p>
  <p>If the button does not work, copy this link into your browser:<br>{{.LinkLabel}}</p>
  {{- end}}
  <p>Maltiti A. Enterprise Ltd</p>
</body>
</html>`))

// Render はメール本文のHTMLを作る
func Render(e notify.Email) ([]byte, error) {
	if e.ActionLabel == "" {
		e.ActionLabel = "Open"
	}
	if e.LinkLabel == "" {
		e.LinkLabel = e.ActionURL
	}
	var buf bytes.Buffer
	if err := layout.Execute(&buf, e); err != nil {
		return nil, errors.Wrap(err, "render email")
	}
	return buf.Bytes(), nil
}

type SMTPSender struct {
	addr    string
	auth    smtp.Auth
	from    string
	timeout time.Duration
	log     *zap.Logger
}

func NewSMTPSender(cfg config.SMTPConfig, log *zap.Logger) *SMTPSender {
	var auth smtp.Auth
	if cfg.User != "" {
		auth = smtp.PlainAuth("", cfg.User, cfg.Password, cfg.Host)
	}
	return &SMTPSender{
		addr:    fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		auth:    auth,
		from:    fmt.Sprintf("%s <%s>", cfg.FromName, cfg.From),
		timeout: cfg.Timeout,
		log:     log,
	}
}

func (s *SMTPSender) SendEmail(ctx context.Context, e notify.Email) error {
	html, err := Render(e)
	if err != nil {
		return err
	}

	msg := &email.Email{
		From:    s.from,
		To:      []string{e.To},
		Subject: e.Subject,
		Text:    []byte(e.Body + "\n" + e.ActionURL),
		HTML:    html,
		Headers: textproto.MIMEHeader{},
	}

	// email.Sendはctxを受け取らないのでgoroutineで待つ
	done := make(chan error, 1)
	go func() { done <- msg.Send(s.addr, s.auth) }()

	var timeout <-chan time.Time
	if s.timeout > 0 {
		timer := time.NewTimer(s.timeout)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case err := <-done:
		if err != nil {
			return errors.Wrapf(err, "smtp send to %s", e.To)
		}
		s.log.Debug("email sent", zap.String("to", e.To), zap.String("subject", e.Subject))
		return nil
	case <-timeout:
		return errors.Errorf("smtp send to %s: timeout after %s", e.To, s.timeout)
	case <-ctx.Done():
		return ctx.Err()
	}
}
