// Package mailer renders HTML emails and delivers them over SMTP on a worker pool.
package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"
	"unicode"

	"github.com/bugpredictor/config"
	"github.com/bugpredictor/logger"
	"github.com/panjf2000/ants/v2"
)

// Template names
const (
	TemplateNewMember     = "new_member.html"
	TemplateVerifyEmail   = "verify_email.html"
	TemplatePasswordReset = "password_reset.html"
	TemplateBugAssigned   = "bug_assigned.html"
)

//go:embed templates/*.html
var templateFS embed.FS

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Mailer sends templated emails. With no SMTP host configured it only logs them.
type Mailer struct {
	cfg  config.MailConfig
	pool *ants.Pool
	tmpl *template.Template
	send sendFunc
}

// New parses the embedded templates and starts the delivery pool
func New(cfg config.MailConfig) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create mail pool: %w", err)
	}

	return &Mailer{cfg: cfg, pool: pool, tmpl: tmpl, send: smtp.SendMail}, nil
}

// Send renders name with data and queues delivery to to.
// Rendering errors are returned; delivery errors are logged.
func (m *Mailer) Send(to, subject, name string, data interface{}) error {
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}

	if m.cfg.Host == "" {
		logger.Info("📧 Mail delivery disabled, would send %q to %s", subject, to)
		return nil
	}

	msg := buildMessage(m.cfg.From, to, subject, body.String())
	return m.pool.Submit(func() {
		if err := m.deliver(to, msg); err != nil {
			logger.Error("Failed to send %q to %s: %v", subject, to, err)
			return
		}
		logger.Info("📧 Sent %q to %s", subject, to)
	})
}

func (m *Mailer) deliver(to string, msg []byte) error {
	var auth smtp.Auth
	if m.cfg.User != "" {
		auth = smtp.PlainAuth("", m.cfg.User, m.cfg.Password, m.cfg.Host)
	}
	return m.send(m.cfg.Host+":"+m.cfg.Port, auth, envelopeAddress(m.cfg.From), []string{to}, msg)
}

// Close waits for queued deliveries, up to timeout
func (m *Mailer) Close(timeout time.Duration) {
	if err := m.pool.ReleaseTimeout(timeout); err != nil {
		logger.Warn("Mail pool did not drain: %v", err)
	}
}

func buildMessage(from, to, subject, body string) []byte {
	return []byte("Subject: " + mime.QEncoding.Encode("utf-8", headerValue(subject)) + "\r\n" +
		"From: " + headerValue(from) + "\r\n" +
		"To: " + headerValue(to) + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n" +
		body + "\r\n")
}

// headerValue drops control characters so a value cannot start a new header line
func headerValue(v string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, v))
}

// envelopeAddress extracts addr from "Name <addr>"
func envelopeAddress(from string) string {
	start := strings.IndexByte(from, '<')
	end := strings.LastIndexByte(from, '>')
	if start >= 0 && end > start {
		return from[start+1 : end]
	}
	return from
}
