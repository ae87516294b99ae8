package domain

import "time"

// Delivery methods for the daily digest.
const (
	DeliveryEmail = "email"
	DeliveryChat  = "chat"
)

type User struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	PasswordHash   string    `json:"-"`
	Country        string    `json:"country,omitempty"`
	Category       string    `json:"category,omitempty"`
	NotifyDaily    bool      `json:"notifyDaily"`
	DeliveryMethod string    `json:"deliveryMethod,omitempty"`
	ChatID         int64     `json:"chatId,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// PublicSummary is the reduced shape returned at registration.
type PublicSummary struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Summary() PublicSummary {
	return PublicSummary{Name: u.Name, Email: u.Email}
}

func IsValidDeliveryMethod(m string) bool {
	return m == DeliveryEmail || m == DeliveryChat
}
