package mailer

import (
	"context"
	"estudiapro_backend/internal/config"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFallsBackToConsole(t *testing.T) {
	m := New(&config.MailConfig{Provider: "sendgrid"})
	_, ok := m.(*ConsoleMailer)
	assert.True(t, ok, "sendgrid without key must fall back to console")

	m = New(&config.MailConfig{Provider: "sendgrid", SendgridAPIKey: "SG.x", FromName: "EstudiaPro", FromEmail: "a@b.c"})
	_, ok = m.(*SendgridMailer)
	assert.True(t, ok)
}

func TestConsoleMailerRecords(t *testing.T) {
	m := &ConsoleMailer{}
	require.NoError(t, m.Send(context.Background(), Message{
		To:      mail.Address{Name: "Tutor", Address: "tutor@example.com"},
		Subject: "Nueva solicitud",
	}))

	sent := m.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "tutor@example.com", sent[0].To.Address)
}

func TestSendgridPrepare(t *testing.T) {
	m := NewSendgridMailer("SG.x", "EstudiaPro", "no-reply@example.com")
	v3 := m.prepare(Message{
		To:          mail.Address{Name: "Tutor", Address: "tutor@example.com"},
		Subject:     "Hola",
		TextContent: "texto",
	})

	require.Len(t, v3.Personalizations, 1)
	assert.Equal(t, "[EstudiaPro] Hola", v3.Personalizations[0].Subject)
	assert.Equal(t, "tutor@example.com", v3.Personalizations[0].To[0].Address)
	require.Len(t, v3.Content, 2)
	assert.Equal(t, "<p>texto</p>", v3.Content[1].Value)
}
