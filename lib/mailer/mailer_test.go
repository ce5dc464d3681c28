package mailer

import (
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bugpredictor/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captured struct {
	addr string
	from string
	to   []string
	msg  string
}

func newTestMailer(t *testing.T, host string) (*Mailer, chan captured) {
	t.Helper()
	m, err := New(config.MailConfig{
		Host:    host,
		Port:    "2525",
		From:    "Bug Predictor <no-reply@example.com>",
		Workers: 2,
	})
	require.NoError(t, err)

	sent := make(chan captured, 4)
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent <- captured{addr: addr, from: from, to: to, msg: string(msg)}
		return nil
	}
	t.Cleanup(func() { m.Close(time.Second) })
	return m, sent
}

func TestSendRendersTemplateAndDelivers(t *testing.T) {
	m, sent := newTestMailer(t, "smtp.example.com")

	err := m.Send("dev@example.com", "Welcome", TemplateNewMember, map[string]string{
		"FullName":    "Dev One",
		"ProjectName": "Apollo",
		"Username":    "dev1",
		"Password":    "s3cret-pass",
		"LoginURL":    "http://localhost/login",
	})
	require.NoError(t, err)

	select {
	case got := <-sent:
		assert.Equal(t, "smtp.example.com:2525", got.addr)
		assert.Equal(t, "no-reply@example.com", got.from)
		assert.Equal(t, []string{"dev@example.com"}, got.to)
		assert.True(t, strings.HasPrefix(got.msg, "Subject: Welcome\r\n"))
		assert.Contains(t, got.msg, "text/html")
		assert.Contains(t, got.msg, "dev1")
		assert.Contains(t, got.msg, "s3cret-pass")
	case <-time.After(2 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestSendEscapesData(t *testing.T) {
	m, sent := newTestMailer(t, "smtp.example.com")

	err := m.Send("dev@example.com", "Assigned", TemplateBugAssigned, map[string]string{
		"FullName": "Dev",
		"Title":    "<script>alert(1)</script>",
		"Priority": "HIGH",
		"Severity": "MAJOR",
		"Link":     "http://localhost/bugs/1",
	})
	require.NoError(t, err)

	got := <-sent
	assert.NotContains(t, got.msg, "<script>")
	assert.Contains(t, got.msg, "&lt;script&gt;")
}

func TestSendWithoutHostOnlyLogs(t *testing.T) {
	m, sent := newTestMailer(t, "")

	err := m.Send("dev@example.com", "Reset", TemplatePasswordReset, map[string]string{
		"FullName": "Dev", "Link": "http://x", "ExpiresIn": "1h0m0s",
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		select {
		case <-sent:
			t.Error("nothing should be delivered without a host")
		case <-time.After(100 * time.Millisecond):
		}
	}()
	wg.Wait()
}

func TestSendUnknownTemplate(t *testing.T) {
	m, _ := newTestMailer(t, "smtp.example.com")
	err := m.Send("dev@example.com", "x", "missing.html", nil)
	assert.Error(t, err)
}

func TestEnvelopeAddress(t *testing.T) {
	assert.Equal(t, "a@b.c", envelopeAddress("Name <a@b.c>"))
	assert.Equal(t, "a@b.c", envelopeAddress("a@b.c"))
}

func headerLines(msg string) []string {
	head, _, _ := strings.Cut(msg, "\r\n\r\n")
	return strings.Split(head, "\r\n")
}

func TestSubjectCannotAddHeaders(t *testing.T) {
	m, sent := newTestMailer(t, "smtp.example.com")

	err := m.Send("dev@example.com", "Bug assigned: Crash\r\nBcc: attacker@evil.example", TemplateBugAssigned, map[string]string{
		"FullName": "Dev", "Title": "Crash", "Priority": "HIGH", "Severity": "MAJOR", "Link": "http://localhost/bugs/1",
	})
	require.NoError(t, err)

	got := <-sent
	lines := headerLines(got.msg)
	assert.Len(t, lines, 5)
	for _, line := range lines {
		assert.False(t, strings.HasPrefix(line, "Bcc:"), "unexpected header line %q", line)
	}
	assert.Equal(t, "Subject: Bug assigned: CrashBcc: attacker@evil.example", lines[0])
}

func TestNonASCIISubjectIsEncoded(t *testing.T) {
	m, sent := newTestMailer(t, "smtp.example.com")

	err := m.Send("dev@example.com", "Fehler: Übersicht", TemplateNewMember, map[string]string{"Username": "dev"})
	require.NoError(t, err)

	got := <-sent
	assert.True(t, strings.HasPrefix(got.msg, "Subject: =?utf-8?q?"), headerLines(got.msg)[0])
}

func TestHeaderValue(t *testing.T) {
	assert.Equal(t, "a b", headerValue("a\tb"))
	assert.Equal(t, "ab", headerValue("a\r\nb"))
	assert.Equal(t, "Bug Predictor <no-reply@example.com>", headerValue(" Bug Predictor <no-reply@example.com>\n"))
}
