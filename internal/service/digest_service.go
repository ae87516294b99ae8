package service

import (
	"context"
	"fmt"
	"html"
	"strings"

	"go.uber.org/zap"

	"merapaper/internal/chat"
	"merapaper/internal/domain"
	"merapaper/internal/email"
	"merapaper/internal/repository"
)

const digestSubject = "Your Daily News Summary"

// DigestService builds and dispatches the daily digest for opted-in users.
// Users are processed sequentially; a failure for one user is logged and does
// not abort the run for the rest.
type DigestService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	news        *NewsService
	emailSender email.Sender
	chatSender  chat.Sender
}

func NewDigestService(logger *zap.Logger, users repository.UserRepository, news *NewsService, emailSender email.Sender, chatSender chat.Sender) *DigestService {
	return &DigestService{
		logger:      logger,
		users:       users,
		news:        news,
		emailSender: emailSender,
		chatSender:  chatSender,
	}
}

// Run executes one digest pass over all daily subscribers.
func (s *DigestService) Run(ctx context.Context) error {
	users, err := s.users.ListDailySubscribers(ctx)
	if err != nil {
		return fmt.Errorf("list daily subscribers: %w", err)
	}

	s.logger.Info("digest run started", zap.Int("subscribers", len(users)))

	var sent, failed, skipped int
	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		switch s.deliver(ctx, user) {
		case deliverySent:
			sent++
		case deliveryFailed:
			failed++
		case deliverySkipped:
			skipped++
		}
	}

	s.logger.Info("digest run finished",
		zap.Int("sent", sent),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
	)
	return nil
}

type deliveryOutcome int

const (
	deliverySent deliveryOutcome = iota
	deliveryFailed
	deliverySkipped
)

func (s *DigestService) deliver(ctx context.Context, user domain.User) deliveryOutcome {
	articles, err := s.news.FetchForUser(ctx, user.ID)
	if err != nil {
		s.logger.Warn("digest fetch failed",
			zap.String("user_id", user.ID),
			zap.String("email", user.Email),
			zap.Error(err),
		)
		return deliveryFailed
	}

	switch user.DeliveryMethod {
	case domain.DeliveryEmail:
		err = s.emailSender.SendDigest(ctx, user.Email, digestSubject, renderHTMLDigest(user, articles))
	case domain.DeliveryChat:
		if user.ChatID == 0 {
			s.logger.Warn("digest skipped: chat delivery without chat id",
				zap.String("user_id", user.ID),
			)
			return deliverySkipped
		}
		err = s.chatSender.SendDigest(ctx, user.ChatID, renderTextDigest(user, articles))
	default:
		s.logger.Warn("digest skipped: no delivery method",
			zap.String("user_id", user.ID),
			zap.String("delivery_method", user.DeliveryMethod),
		)
		return deliverySkipped
	}

	if err != nil {
		s.logger.Warn("digest send failed",
			zap.String("user_id", user.ID),
			zap.String("delivery_method", user.DeliveryMethod),
			zap.Error(err),
		)
		return deliveryFailed
	}
	return deliverySent
}

func renderTextDigest(user domain.User, articles []domain.Article) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Good Morning %s!\n", user.Name)
	b.WriteString("Here is your personalized news summary for today:\n\n")
	for i, a := range articles {
		fmt.Fprintf(&b, "%d. %s\n%s\n%s\n\n", i+1, a.Title, a.Summary, a.URL)
	}
	b.WriteString("Stay informed. Delivered by MeraPaper")
	return b.String()
}

func renderHTMLDigest(user domain.User, articles []domain.Article) string {
	var b strings.Builder
	b.WriteString(`<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">`)
	fmt.Fprintf(&b, "<h2>Good Morning %s!</h2>", html.EscapeString(user.Name))
	b.WriteString("<p>Here is your personalized news summary for today:</p>")
	for i, a := range articles {
		b.WriteString(`<div style="padding: 10px; border-bottom: 1px solid #ddd;">`)
		fmt.Fprintf(&b, "<h3>%d. %s</h3>", i+1, html.EscapeString(a.Title))
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(a.Summary))
		fmt.Fprintf(&b, `<a href=%q target="_blank">Read more</a>`, a.URL)
		b.WriteString("</div>")
	}
	b.WriteString(`<p style="font-size: 12px; color: #888;">Sent by MeraPaper · Stay Informed</p>`)
	b.WriteString("</div>")
	return b.String()
}
