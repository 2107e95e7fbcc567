package accounts

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
	"github.com/joho/godotenv"
)

// Config is the process configuration, loaded from the environment with
// an optional .env overlay for local development.
type Config struct {
	Addr        string `env:"ADDR" envDefault:":5000"`
	DatabaseDSN string `env:"DATABASE_DSN" envDefault:"file:accounts.db?cache=shared&_pragma=foreign_keys(1)"`
	ClientURL   string `env:"CLIENT_URL" envDefault:"http://localhost:3000"`
	TokenIssuer string `env:"TOKEN_ISSUER" envDefault:"go-accounts"`

	AccessTokenSecret  string `env:"JWT_ACCESS_SECRET,required"`
	RefreshTokenSecret string `env:"JWT_REFRESH_SECRET,required"`
	ResetTokenSecret   string `env:"JWT_RESET_SECRET,required"`

	AccessTokenTTL  time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"168h"`
	ResetTokenTTL   time.Duration `env:"RESET_TOKEN_TTL" envDefault:"2m"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`

	RateLimitMax    int           `env:"RATE_LIMIT_MAX" envDefault:"5"`
	RateLimitWindow time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	MailFrom     string `env:"MAIL_FROM"`
}

// LoadConfig reads .env when present, then parses the environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse environment configuration")
	}

	return cfg, nil
}

// MailerEnabled reports whether SMTP delivery is configured
func (c *Config) MailerEnabled() bool {
	return c.SMTPHost != ""
}
