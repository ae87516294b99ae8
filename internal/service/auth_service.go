package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"merapaper/internal/domain"
	"merapaper/internal/email"
	"merapaper/internal/repository"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrOTPNotFound        = errors.New("no otp pending")
	ErrOTPInvalid         = errors.New("otp invalid")
	ErrOTPExpired         = errors.New("otp expired")
	ErrRateLimited        = errors.New("rate limited")
	ErrEmailSendFailure   = errors.New("email send failed")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrValidation         = errors.New("validation failed")
)

const defaultOTPTTL = 5 * time.Minute

// AuthService coordinates registration and the OTP-gated login flow.
type AuthService struct {
	logger      *zap.Logger
	users       repository.UserRepository
	otps        OTPStore
	emailSender email.Sender
	otpLimiter  OTPRateLimiter
	otpTTL      time.Duration
}

func NewAuthService(logger *zap.Logger, users repository.UserRepository, otps OTPStore, emailSender email.Sender, otpLimiter OTPRateLimiter, otpTTL time.Duration) *AuthService {
	if otps == nil {
		otps = NewMemoryOTPStore()
	}
	if otpLimiter == nil {
		otpLimiter = NewOTPRateLimiter(10*time.Minute, 3)
	}
	if otpTTL <= 0 {
		otpTTL = defaultOTPTTL
	}
	return &AuthService{
		logger:      logger,
		users:       users,
		otps:        otps,
		emailSender: emailSender,
		otpLimiter:  otpLimiter,
		otpTTL:      otpTTL,
	}
}

type RegisterInput struct {
	Name           string
	Email          string
	Password       string
	Country        string
	Category       string
	NotifyDaily    bool
	DeliveryMethod string
	ChatID         int64
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (domain.User, error) {
	emailAddr := normalizeEmail(input.Email)
	name := strings.TrimSpace(input.Name)
	password := strings.TrimSpace(input.Password)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if name == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: name and password are required", ErrValidation)
	}
	if err := validatePreferences(input.Country, input.Category, input.DeliveryMethod); err != nil {
		return domain.User{}, err
	}

	_, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return domain.User{}, ErrEmailTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, err
	}

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	deliveryMethod := input.DeliveryMethod
	if deliveryMethod == "" {
		deliveryMethod = domain.DeliveryEmail
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:             uuid.NewString(),
		Name:           name,
		Email:          emailAddr,
		PasswordHash:   string(hashBytes),
		Country:        input.Country,
		Category:       input.Category,
		NotifyDaily:    input.NotifyDaily,
		DeliveryMethod: deliveryMethod,
		ChatID:         input.ChatID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login verifies the password and, on success, issues a one-time code to the
// user's email. No token is returned here: the code is the second factor and
// VerifyOTP is the only path to a session in this flow.
func (s *AuthService) Login(ctx context.Context, emailAddr, password string) error {
	emailAddr = normalizeEmail(emailAddr)
	password = strings.TrimSpace(password)
	if emailAddr == "" || password == "" {
		return ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if user.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	if s.otpLimiter != nil && !s.otpLimiter.Allow(emailAddr) {
		return ErrRateLimited
	}

	code, rec, err := GenerateOTP(s.otpTTL)
	if err != nil {
		return err
	}
	// Upsert: a concurrent login for the same email overwrites this code
	// (last-write-wins), invalidating the earlier one.
	if err := s.otps.Save(ctx, emailAddr, rec, s.otpTTL); err != nil {
		return err
	}

	if s.emailSender == nil {
		return ErrEmailSendFailure
	}
	if err := s.emailSender.SendOTP(ctx, emailAddr, code, rec.ExpiresAt); err != nil {
		if s.logger != nil {
			s.logger.Warn("send otp failed", zap.Error(err), zap.String("email", emailAddr))
		}
		return ErrEmailSendFailure
	}
	return nil
}

// VerifyOTP consumes a pending code. Consumption is at-most-once: the code is
// deleted before the caller gets a user back, so a replay with the same code
// reports no pending code.
func (s *AuthService) VerifyOTP(ctx context.Context, emailAddr, code string) (domain.User, error) {
	emailAddr = normalizeEmail(emailAddr)
	code = strings.TrimSpace(code)
	if emailAddr == "" {
		return domain.User{}, ErrInvalidEmail
	}
	if !isValidOTPCode(code) {
		return domain.User{}, ErrOTPInvalid
	}

	rec, ok, err := s.otps.Get(ctx, emailAddr)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, ErrOTPNotFound
	}
	if !rec.Matches(code) {
		return domain.User{}, ErrOTPInvalid
	}
	if time.Now().UTC().After(rec.ExpiresAt) {
		return domain.User{}, ErrOTPExpired
	}

	if err := s.otps.Delete(ctx, emailAddr); err != nil {
		return domain.User{}, err
	}

	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

type UpdateProfileInput struct {
	Name           *string
	Email          *string
	Country        *string
	Category       *string
	NotifyDaily    *bool
	DeliveryMethod *string
	ChatID         *int64
}

// UpdateProfile applies a partial merge onto the stored user. Email uniqueness
// is re-checked when the address changes.
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return domain.User{}, fmt.Errorf("%w: name cannot be empty", ErrValidation)
		}
		user.Name = name
	}
	if input.Email != nil {
		newEmail := normalizeEmail(*input.Email)
		if newEmail == "" {
			return domain.User{}, ErrInvalidEmail
		}
		if newEmail != user.Email {
			_, err := s.users.GetByEmail(ctx, newEmail)
			if err == nil {
				return domain.User{}, ErrEmailTaken
			}
			if !errors.Is(err, pgx.ErrNoRows) {
				return domain.User{}, err
			}
			user.Email = newEmail
		}
	}
	if input.Country != nil {
		user.Country = *input.Country
	}
	if input.Category != nil {
		user.Category = *input.Category
	}
	if input.NotifyDaily != nil {
		user.NotifyDaily = *input.NotifyDaily
	}
	if input.DeliveryMethod != nil {
		user.DeliveryMethod = *input.DeliveryMethod
	}
	if input.ChatID != nil {
		user.ChatID = *input.ChatID
	}

	if err := validatePreferences(user.Country, user.Category, user.DeliveryMethod); err != nil {
		return domain.User{}, err
	}

	user.UpdatedAt = time.Now().UTC()
	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrUserNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}

func validatePreferences(country, category, deliveryMethod string) error {
	if country != "" && !domain.IsValidCountry(country) {
		return fmt.Errorf("%w: unknown country %q", ErrValidation, country)
	}
	if category != "" && !domain.IsValidCategory(category) {
		return fmt.Errorf("%w: unknown category %q", ErrValidation, category)
	}
	if deliveryMethod != "" && !domain.IsValidDeliveryMethod(deliveryMethod) {
		return fmt.Errorf("%w: unknown delivery method %q", ErrValidation, deliveryMethod)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidOTPCode(code string) bool {
	if len(code) != 6 {
		return false
	}
	for _, r := range code {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
