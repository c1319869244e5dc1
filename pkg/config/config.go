package config

import (
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/orgball2608/insta-daily-poster/pkg/errors"
)

const (
	RecordDriverFile     = "file"
	RecordDriverPostgres = "postgres"
)

type Config struct {
	App struct {
		Env          string `env:"APP_ENV" env-default:"development"`
		Port         int    `env:"APP_PORT" env-default:"8080"`
		SentryUrl    string `env:"SENTRY_URL"`
		TimeZone     string `env:"TIMEZONE" env-default:"Asia/Taipei"`
		ScheduleCron string `env:"SCHEDULE_CRON" env-description:"cron expression, six fields for seconds; empty runs once and exits"`
	}
	Feed struct {
		BaseURL      string        `env:"FEED_BASE_URL" env-default:"https://raw.githubusercontent.com/gainote/portrait/refs/heads/main/images/"`
		ImageBaseURL string        `env:"FEED_IMAGE_BASE_URL" env-default:"https://raw.githubusercontent.com/gainote/portrait/refs/heads/main/"`
		Timeout      time.Duration `env:"FEED_TIMEOUT" env-default:"20s"`
		MaxDaysBack  int           `env:"FEED_MAX_DAYS_BACK" env-default:"366"`
	}
	Record struct {
		Driver string `env:"RECORD_DRIVER" env-default:"file" env-description:"file or postgres"`
		Root   string `env:"RECORD_ROOT" env-default:"history_portrait"`
	}
	Postgres struct {
		Port    int    `env:"POSTGRES_PORT" env-default:"5432"`
		Host    string `env:"POSTGRES_HOST" env-default:"localhost"`
		User    string `env:"POSTGRES_USER"`
		Pass    string `env:"POSTGRES_PASS"`
		Name    string `env:"POSTGRES_NAME"`
		SslMode string `env:"POSTGRES_SSL_MODE" env-default:"disable"`
	}
	Instagram struct {
		AccountID       string        `env:"IG_USER_ID" env-required:"true"`
		AccessToken     string        `env:"IG_ACCESS_TOKEN" env-required:"true"`
		GraphURL        string        `env:"IG_GRAPH_URL" env-default:"https://graph.facebook.com/v23.0"`
		AltText         string        `env:"IG_ALT_TEXT" env-default:"AI generated artwork"`
		LocationID      string        `env:"IG_LOCATION_ID"`
		UserTagsJSON    string        `env:"IG_USER_TAGS_JSON" env-description:"e.g. [{\"username\":\"name\",\"x\":0.5,\"y\":0.5}]"`
		ProductTagsJSON string        `env:"IG_PRODUCT_TAGS_JSON"`
		Timeout         time.Duration `env:"IG_TIMEOUT" env-default:"60s"`
		SettleDelay     time.Duration `env:"IG_SETTLE_DELAY" env-default:"2s"`
		PollStatus      bool          `env:"IG_POLL_STATUS" env-default:"true"`
		PollAttempts    uint64        `env:"IG_POLL_ATTEMPTS" env-default:"5"`
	}
	Caption struct {
		APIURL    string        `env:"CAPTION_API_URL" env-default:"https://integrate.api.nvidia.com/v1"`
		APIKey    string        `env:"CAPTION_API_KEY" env-required:"true"`
		Model     string        `env:"CAPTION_MODEL" env-default:"z-ai/glm4.7"`
		MaxTokens int           `env:"CAPTION_MAX_TOKENS" env-default:"16384"`
		Timeout   time.Duration `env:"CAPTION_TIMEOUT" env-default:"60s"`
	}
	Telegram struct {
		Token   string `env:"TELEGRAM_TOKEN"`
		Channel string `env:"TELEGRAM_CHANNEL"`
	}
	Run struct {
		CaptionOverride string `env:"CAPTION_OVERRIDE"`
	}
}

// New reads the configuration from the environment and validates it.
func New() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		help, _ := cleanenv.GetDescription(cfg, nil)
		return nil, fmt.Errorf("failed to read configuration: %w\n%s", err, help)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := strconv.ParseInt(c.Instagram.AccountID, 10, 64); err != nil {
		return errors.WrapWithCode(err, "config", "IG_USER_ID must be numeric")
	}
	if strings.TrimSpace(c.Instagram.AccessToken) == "" {
		return errors.WrapWithCode(errors.ErrInvalidInput, "config", "IG_ACCESS_TOKEN is empty")
	}
	if strings.TrimSpace(c.Caption.APIKey) == "" {
		return errors.WrapWithCode(errors.ErrInvalidInput, "config", "CAPTION_API_KEY is empty")
	}
	if c.Feed.MaxDaysBack <= 0 {
		return errors.WrapWithCode(errors.ErrInvalidInput, "config", "FEED_MAX_DAYS_BACK must be positive")
	}
	if c.Feed.Timeout <= 0 || c.Instagram.Timeout <= 0 || c.Caption.Timeout <= 0 {
		return errors.WrapWithCode(errors.ErrInvalidInput, "config", "timeouts must be positive")
	}
	if c.Instagram.SettleDelay < 0 {
		return errors.WrapWithCode(errors.ErrInvalidInput, "config", "IG_SETTLE_DELAY must not be negative")
	}
	if _, err := c.Location(); err != nil {
		return errors.WrapWithCode(err, "config", "TIMEZONE is not a known location")
	}

	switch c.Record.Driver {
	case RecordDriverFile:
		if c.Record.Root == "" {
			return errors.WrapWithCode(errors.ErrInvalidInput, "config", "RECORD_ROOT is empty")
		}
	case RecordDriverPostgres:
		if c.Postgres.Name == "" || c.Postgres.User == "" {
			return errors.WrapWithCode(errors.ErrInvalidInput, "config", "POSTGRES_NAME and POSTGRES_USER are required for the postgres record driver")
		}
	default:
		return errors.WrapWithCode(errors.ErrInvalidInput, "config", fmt.Sprintf("unknown RECORD_DRIVER %q", c.Record.Driver))
	}

	for name, raw := range map[string]string{
		"IG_USER_TAGS_JSON":    c.Instagram.UserTagsJSON,
		"IG_PRODUCT_TAGS_JSON": c.Instagram.ProductTagsJSON,
	} {
		if raw != "" && !json.Valid([]byte(raw)) {
			return errors.WrapWithCode(errors.ErrInvalidInput, "config", name+" is not valid JSON")
		}
	}

	return nil
}

// Location resolves the time zone manifests are dated in.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.App.TimeZone)
}

// GetDSN is the libpq keyword form used by lib/pq for goose.
func (c *Config) GetDSN() string {
	pairs := []struct{ key, value string }{
		{"dbname", c.Postgres.Name},
		{"user", c.Postgres.User},
		{"password", c.Postgres.Pass},
		{"host", c.Postgres.Host},
		{"port", strconv.Itoa(c.Postgres.Port)},
		{"sslmode", c.Postgres.SslMode},
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.key+"="+quoteDSNValue(p.value))
	}
	return strings.Join(parts, " ")
}

// GetURL is the connection URL used by the pgx pool.
func (c *Config) GetURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.Postgres.User, c.Postgres.Pass),
		Host:     net.JoinHostPort(c.Postgres.Host, strconv.Itoa(c.Postgres.Port)),
		Path:     "/" + c.Postgres.Name,
		RawQuery: url.Values{"sslmode": {c.Postgres.SslMode}}.Encode(),
	}
	return u.String()
}

// quoteDSNValue single-quotes a keyword value so empty values and values with
// spaces or quotes survive libpq parsing.
func quoteDSNValue(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}
