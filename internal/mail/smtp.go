package mail

import (
	"crypto/tls"
	"crypto/x509"
	"os"

	"github.com/khanghh/clubhub/internal/config"
	"gopkg.in/gomail.v2"
)

type SMTPMailSender struct {
	*gomail.Dialer
	From string
}

func (s *SMTPMailSender) Send(message *Message) error {
	msg := gomail.NewMessage()
	from := message.From
	if from == "" {
		from = s.From
	}
	msg.SetHeader("From", from)
	msg.SetHeader("To", message.To...)
	if len(message.Cc) > 0 {
		msg.SetHeader("Cc", message.Cc...)
	}
	if len(message.Bcc) > 0 {
		msg.SetHeader("Bcc", message.Bcc...)
	}
	msg.SetHeader("Subject", message.Subject)
	if message.IsHTML {
		msg.SetBody("text/html", message.Body)
	} else {
		msg.SetBody("text/plain", message.Body)
	}
	for cid, file := range message.Embeds {
		msg.Embed(file, gomail.SetHeader(map[string][]string{
			"Content-ID": {"<" + cid + ">"},
		}))
	}
	for _, file := range message.Attachments {
		msg.Attach(file)
	}
	return s.DialAndSend(msg)
}

func dialSMTP(smtpCfg config.SMTPConfig) (*gomail.Dialer, error) {
	dialer := gomail.NewDialer(smtpCfg.Host, smtpCfg.Port, smtpCfg.Username, smtpCfg.Password)
	dialer.TLSConfig = &tls.Config{ServerName: smtpCfg.Host}
	if smtpCfg.TLS {
		tlsConfig := &tls.Config{ServerName: smtpCfg.Host}
		if smtpCfg.CertFile != "" {
			cert, err := tls.LoadX509KeyPair(smtpCfg.CertFile, smtpCfg.KeyFile)
			if err != nil {
				return nil, err
			}
			tlsConfig.Certificates = []tls.Certificate{cert}
		}
		if smtpCfg.CAFile != "" {
			caCert, err := os.ReadFile(smtpCfg.CAFile)
			if err != nil {
				return nil, err
			}
			caPool := x509.NewCertPool()
			caPool.AppendCertsFromPEM(caCert)
			tlsConfig.RootCAs = caPool
		}
		dialer.TLSConfig = tlsConfig
		dialer.SSL = smtpCfg.Port == 465
	}
	return dialer, nil
}

func NewSMTPMailSender(smtpConfig config.SMTPConfig, from string) (*SMTPMailSender, error) {
	dialer, err := dialSMTP(smtpConfig)
	if err != nil {
		return nil, err
	}
	return &SMTPMailSender{
		Dialer: dialer,
		From:   from,
	}, nil
}
