package mail

import (
	"context"
	"testing"
	"time"

	"github.com/khanghh/clubhub/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	messages []*Message
}

func (r *recordingSender) Send(message *Message) error {
	r.messages = append(r.messages, message)
	return nil
}

func TestCodeMailer(t *testing.T) {
	require.NoError(t, render.Initialize(map[string]interface{}{"siteName": "Club Hub"}, ""))
	sender := &recordingSender{}
	mailer := NewCodeMailer(sender)

	require.NoError(t, mailer.SendVerificationCode(context.Background(), "a@x.com", "123456", 15*time.Minute))
	require.Len(t, sender.messages, 1)
	msg := sender.messages[0]
	assert.Equal(t, []string{"a@x.com"}, msg.To)
	assert.Equal(t, "123456 is your verification code", msg.Subject)
	assert.True(t, msg.IsHTML)
	assert.Contains(t, msg.Body, "123456")
	assert.Contains(t, msg.Body, "15 minutes")
}

func TestLogMailSender(t *testing.T) {
	assert.NoError(t, NewLogMailSender(nil).Send(&Message{To: []string{"a@x.com"}, Subject: "hi"}))
}
