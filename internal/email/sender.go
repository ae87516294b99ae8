package email

import (
	"context"
	"errors"
	"time"
)

// Sender delivers login codes and daily digests by email.
type Sender interface {
	SendOTP(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
	SendDigest(ctx context.Context, toEmail string, subject string, htmlBody string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendOTP(_ context.Context, _ string, _ string, _ time.Time) error {
	return s.err()
}

func (s *disabledSender) SendDigest(_ context.Context, _ string, _ string, _ string) error {
	return s.err()
}

func (s *disabledSender) err() error {
	if s.reason == "" {
		return errors.New("email sender disabled")
	}
	return errors.New(s.reason)
}
