package config

import (
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := &Config{}
	c.App.TimeZone = "Asia/Taipei"
	c.Feed.MaxDaysBack = 366
	c.Feed.Timeout = 20 * time.Second
	c.Record.Driver = RecordDriverFile
	c.Record.Root = "history_portrait"
	c.Instagram.AccountID = "17841400000000000"
	c.Instagram.AccessToken = "token"
	c.Instagram.Timeout = 60 * time.Second
	c.Instagram.SettleDelay = 2 * time.Second
	c.Caption.APIKey = "key"
	c.Caption.Timeout = 60 * time.Second
	return c
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"non-numeric account", func(c *Config) { c.Instagram.AccountID = "me" }},
		{"blank token", func(c *Config) { c.Instagram.AccessToken = "  " }},
		{"blank caption key", func(c *Config) { c.Caption.APIKey = "" }},
		{"zero window", func(c *Config) { c.Feed.MaxDaysBack = 0 }},
		{"unknown zone", func(c *Config) { c.App.TimeZone = "Mars/Olympus" }},
		{"unknown driver", func(c *Config) { c.Record.Driver = "sqlite" }},
		{"postgres without db", func(c *Config) { c.Record.Driver = RecordDriverPostgres }},
		{"bad user tags", func(c *Config) { c.Instagram.UserTagsJSON = "[{" }},
		{"negative settle delay", func(c *Config) { c.Instagram.SettleDelay = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestNewReadsEnvironment(t *testing.T) {
	t.Setenv("IG_USER_ID", "17841400000000000")
	t.Setenv("IG_ACCESS_TOKEN", "token")
	t.Setenv("CAPTION_API_KEY", "key")
	t.Setenv("FEED_MAX_DAYS_BACK", "7")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Feed.MaxDaysBack)
	require.Equal(t, "Asia/Taipei", cfg.App.TimeZone)
	require.Equal(t, RecordDriverFile, cfg.Record.Driver)
	require.Equal(t, "https://graph.facebook.com/v23.0", cfg.Instagram.GraphURL)
	require.True(t, cfg.Instagram.PollStatus)

	loc, err := cfg.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Taipei", loc.String())
}

func TestNewFailsWithoutCredentials(t *testing.T) {
	t.Setenv("IG_USER_ID", "")
	t.Setenv("IG_ACCESS_TOKEN", "")
	t.Setenv("CAPTION_API_KEY", "")

	_, err := New()
	require.Error(t, err)
}

func TestConnectionStringsEscapeCredentials(t *testing.T) {
	for _, pass := range []string{`p@ss/w rd'\x`, ""} {
		c := validConfig()
		c.Postgres.Host = "db.internal"
		c.Postgres.Port = 5433
		c.Postgres.User = "poster"
		c.Postgres.Pass = pass
		c.Postgres.Name = "posts"
		c.Postgres.SslMode = "disable"

		for name, conn := range map[string]string{"url": c.GetURL(), "dsn": c.GetDSN()} {
			t.Run(name, func(t *testing.T) {
				parsed, err := pgconn.ParseConfig(conn)
				require.NoError(t, err)
				require.Equal(t, "db.internal", parsed.Host)
				require.Equal(t, uint16(5433), parsed.Port)
				require.Equal(t, "poster", parsed.User)
				require.Equal(t, "posts", parsed.Database)
				if pass != "" {
					require.Equal(t, pass, parsed.Password)
				}
			})
		}
	}
}
