package mail

import "log/slog"

// LogMailSender writes outgoing mail to the log instead of delivering it.
type LogMailSender struct {
	logger *slog.Logger
}

func (s *LogMailSender) Send(message *Message) error {
	s.logger.Info("mail not delivered, log backend in use",
		"to", message.To,
		"subject", message.Subject,
		"bytes", len(message.Body),
	)
	return nil
}

func NewLogMailSender(logger *slog.Logger) *LogMailSender {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailSender{logger: logger}
}
