package config

import "github.com/caarlos0/env/v10"

// Config centralizes service configuration.
type Config struct {
	HTTPPort    string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL string `env:"DATABASE_URL,required"`

	JWTSecret     string `env:"JWT_SECRET,required"`
	JWTTTLHours   int    `env:"JWT_TTL_HOURS" envDefault:"168"`
	OTPTTLMinutes int    `env:"OTP_TTL_MINUTES" envDefault:"5"`

	NewsAPIKey  string `env:"NEWS_API_KEY,required"`
	NewsBaseURL string `env:"NEWS_BASE_URL" envDefault:"https://newsdata.io/api/1"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM"`
	SMTPFromName string `env:"SMTP_FROM_NAME" envDefault:"MeraPaper"`

	TelegramBotToken string `env:"TELEGRAM_BOT_TOKEN"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	DigestTime string `env:"DIGEST_TIME" envDefault:"09:00"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
