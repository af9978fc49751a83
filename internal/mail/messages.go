package mail

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/khanghh/clubhub/internal/render"
)

func SendVerificationCode(sender MailSender, toEmail string, code string, expireMinutes int) error {
	params := fiber.Map{
		"code":          code,
		"expireMinutes": expireMinutes,
	}
	body, err := render.RenderMail("verification-code", params)
	if err != nil {
		return err
	}
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: fmt.Sprintf("%s is your verification code", code),
		Body:    body,
		IsHTML:  true,
	})
}

// CodeMailer delivers registration codes through a MailSender.
type CodeMailer struct {
	sender MailSender
}

func (m *CodeMailer) SendVerificationCode(ctx context.Context, email string, code string, expiresIn time.Duration) error {
	return SendVerificationCode(m.sender, email, code, int(expiresIn.Round(time.Minute)/time.Minute))
}

func NewCodeMailer(sender MailSender) *CodeMailer {
	return &CodeMailer{sender: sender}
}
