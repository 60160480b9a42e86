package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"silosremeco/backend/internal/logger"
)

type Config struct {
	Port          string `env:"PORT" envDefault:"8080"`
	AllowedOrigin string `env:"ALLOWED_ORIGIN" envDefault:"http://127.0.0.1:4321"`
	PublicSiteURL string `env:"PUBLIC_SITE_URL" envDefault:"https://silosremeco.com"`

	DatabaseURL   string `env:"DATABASE_URL"`
	CompanyID     string `env:"COMPANY_ID" envDefault:"remeco"`
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	PreferencesTTLSeconds  int  `env:"PREFERENCES_TTL_SECONDS" envDefault:"300"`
	CatalogCacheTTLSeconds int  `env:"CATALOG_CACHE_TTL_SECONDS" envDefault:"300"`
	ApplyTax               bool `env:"PRICING_APPLY_TAX" envDefault:"true"`

	DisplayLocale  string `env:"DISPLAY_LOCALE" envDefault:"es-AR"`
	CurrencySymbol string `env:"CURRENCY_SYMBOL" envDefault:"$"`

	FormTokenSecret     string `env:"FORM_TOKEN_SECRET"`
	FormTokenTTLMinutes int    `env:"FORM_TOKEN_TTL_MINUTES" envDefault:"60"`
	RecaptchaSecret     string `env:"RECAPTCHA_SECRET"`
	RecaptchaVerifyURL  string `env:"RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`

	SMTPHost      string `env:"SMTP_HOST"`
	SMTPPort      int    `env:"SMTP_PORT" envDefault:"465"`
	SMTPUsername  string `env:"SMTP_USERNAME"`
	SMTPPassword  string `env:"SMTP_PASSWORD"`
	MailFrom      string `env:"MAIL_FROM" envDefault:"Remeco Silos <noreply@silosremeco.com>"`
	EmailReceiver string `env:"EMAIL_RECEIVER"`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"text"`
	LogOutput     string `env:"LOG_OUTPUT" envDefault:"stdout"`
	LogFile       string `env:"LOG_FILE" envDefault:"logs/silos.log"`
	LogMaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" envDefault:"30"`
}

// Load reads the environment, after merging any of the given .env files that
// exist. Variables already set in the process win over file values.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}

	cfg.FormTokenSecret = strings.TrimSpace(cfg.FormTokenSecret)
	cfg.RecaptchaSecret = strings.TrimSpace(cfg.RecaptchaSecret)
	cfg.PublicSiteURL = strings.TrimRight(cfg.PublicSiteURL, "/")
	if cfg.PreferencesTTLSeconds < 1 {
		cfg.PreferencesTTLSeconds = 300
	}
	if cfg.CatalogCacheTTLSeconds < 1 {
		cfg.CatalogCacheTTLSeconds = 300
	}
	if cfg.FormTokenTTLMinutes < 1 {
		cfg.FormTokenTTLMinutes = 60
	}
	return cfg, nil
}

func (c Config) Address() string {
	return fmt.Sprintf(":%s", c.Port)
}

func (c Config) PreferencesTTL() time.Duration {
	return time.Duration(c.PreferencesTTLSeconds) * time.Second
}

func (c Config) CatalogCacheTTL() time.Duration {
	return time.Duration(c.CatalogCacheTTLSeconds) * time.Second
}

func (c Config) FormTokenTTL() time.Duration {
	return time.Duration(c.FormTokenTTLMinutes) * time.Minute
}

func (c Config) Logger() logger.Config {
	return logger.Config{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		Output:     c.LogOutput,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
		Compress:   true,
	}
}
