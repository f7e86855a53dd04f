package notifications

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"
	"sync"
	"time"

	"wanderly/internal/shared/config"
	"wanderly/pkg/logger"
)

// EmailSender delivers a rendered message to one recipient
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender sends mail with net/smtp using PLAIN auth
type SMTPSender struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg, log: logger.GetDefault()}
}

func (s *SMTPSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	if err := smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, s.buildMessage(to, subject, htmlBody)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.InfoContext(ctx, "email sent", "to", to, "subject", subject)
	return nil
}

func (s *SMTPSender) buildMessage(to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return []byte(b.String())
}

// LogSender writes messages to the log instead of delivering them. It also
// keeps what it sent, which tests read back.
type LogSender struct {
	mu   sync.Mutex
	sent []SentEmail
	log  *logger.Logger
}

type SentEmail struct {
	To      string
	Subject string
	Body    string
}

func NewLogSender() *LogSender {
	return &LogSender{log: logger.GetDefault()}
}

func (s *LogSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.mu.Lock()
	s.sent = append(s.sent, SentEmail{To: to, Subject: subject, Body: htmlBody})
	s.mu.Unlock()

	s.log.InfoContext(ctx, "email (not delivered, SMTP not configured)", "to", to, "subject", subject)
	return nil
}

func (s *LogSender) Sent() []SentEmail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SentEmail(nil), s.sent...)
}

// NewEmailSender uses SMTP when it is configured and falls back to the log
func NewEmailSender(cfg *config.Config) EmailSender {
	if cfg.SMTPConfigured() {
		return NewSMTPSender(cfg.Email)
	}
	return NewLogSender()
}

var emailTemplates = template.Must(template.New("emails").Parse(`
{{define "BOOKING_CONFIRMED"}}<p>Hi {{.Name}},</p>
<p>Your booking <strong>{{.Event.BookingRef}}</strong> for {{.Event.ExperienceTitle}} is confirmed.</p>
<p>Date: {{.Event.Date}}<br>Time: {{.Event.TimeSlot}}<br>Guests: {{.Event.Slots}}<br>Total: {{printf "%.2f" .Event.TotalPrice}} {{.Event.Currency}}</p>
<p>See you there!</p>{{end}}
{{define "BOOKING_CANCELLED"}}<p>Hi {{.Name}},</p>
<p>Your booking <strong>{{.Event.BookingRef}}</strong> for {{.Event.ExperienceTitle}} on {{.Event.Date}} has been cancelled.</p>
<p>If you already paid, the refund is on its way.</p>{{end}}
`))

var subjects = map[EventType]string{
	EventBookingConfirmed: "Your booking is confirmed",
	EventBookingCancelled: "Your booking was cancelled",
}

func renderEmail(event *BookingEvent, name string) (string, string, error) {
	subject, ok := subjects[event.Type]
	if !ok {
		return "", "", fmt.Errorf("unknown event type %q", event.Type)
	}

	var body bytes.Buffer
	data := struct {
		Name  string
		Event *BookingEvent
	}{Name: name, Event: event}
	if err := emailTemplates.ExecuteTemplate(&body, string(event.Type), data); err != nil {
		return "", "", fmt.Errorf("failed to render %s email: %w", event.Type, err)
	}
	return subject + " (" + event.BookingRef + ")", body.String(), nil
}
