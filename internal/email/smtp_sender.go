package email

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gopkg.in/gomail.v2"
)

// SMTPSender sends mail through an SMTP relay via gomail.
type SMTPSender struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

func NewSMTPSender(host string, port int, username, password, from, fromName string) (*SMTPSender, error) {
	if strings.TrimSpace(host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("smtp from is required")
	}
	if port == 0 {
		port = 587
	}
	return &SMTPSender{
		dialer:   gomail.NewDialer(host, port, username, password),
		from:     from,
		fromName: fromName,
	}, nil
}

func (s *SMTPSender) SendOTP(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	minutes := int(time.Until(expiresAt).Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	body := fmt.Sprintf("Your OTP is: %s. It will expire in %d minutes.", code, minutes)

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromHeader())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your OTP for MeraPaper Login")
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send otp email: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendDigest(_ context.Context, toEmail string, subject string, htmlBody string) error {
	if strings.TrimSpace(toEmail) == "" {
		return fmt.Errorf("to email is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.fromHeader())
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send digest email: %w", err)
	}
	return nil
}

func (s *SMTPSender) fromHeader() string {
	if strings.TrimSpace(s.fromName) != "" {
		return fmt.Sprintf("%s <%s>", s.fromName, s.from)
	}
	return s.from
}
