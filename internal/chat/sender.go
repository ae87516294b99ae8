package chat

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender delivers a rendered digest to a chat recipient.
type Sender interface {
	SendDigest(ctx context.Context, chatID int64, text string) error
}

type disabledSender struct {
	reason string
}

func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendDigest(_ context.Context, _ int64, _ string) error {
	if s.reason == "" {
		return errors.New("chat sender disabled")
	}
	return errors.New(s.reason)
}

// TelegramSender sends digests through the Telegram Bot API.
type TelegramSender struct {
	bot *tgbotapi.BotAPI
}

func NewTelegramSender(botToken string) (*TelegramSender, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &TelegramSender{bot: bot}, nil
}

func (s *TelegramSender) SendDigest(_ context.Context, chatID int64, text string) error {
	if chatID == 0 {
		return fmt.Errorf("chat id is required")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.DisableWebPagePreview = true
	if _, err := s.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}
