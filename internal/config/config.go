package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	DatabaseURL string
	HTTPAddr    string
	LogLevel    string
	Env         string // dev|prod
	SentryDSN   string
	Release     string
	Location    *time.Location

	// Telegram: необязательный канал уведомлений для оператора
	BotToken      string
	NotifyChatIDs []int64

	SessionTTL          time.Duration
	WeightAuditInterval time.Duration
	SessionGCInterval   time.Duration
	DBTimeout           time.Duration
	MigrateOnStart      bool
}

func Load() (*Config, error) {
	tz := getenv("TZ", "Europe/Moscow")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return nil, fmt.Errorf("required env DATABASE_URL is empty")
	}

	chatIDs, err := parseIDs(os.Getenv("NOTIFY_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_CHAT_IDS: %w", err)
	}

	cfg := &Config{
		DatabaseURL:   dsn,
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		Env:           getenv("ENV", "dev"),
		SentryDSN:     os.Getenv("SENTRY_DSN"),
		Release:       getenv("RELEASE", "dev"),
		Location:      loc,
		BotToken:      os.Getenv("BOT_TOKEN"),
		NotifyChatIDs: chatIDs,
	}

	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 7*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.WeightAuditInterval, err = getDuration("WEIGHT_AUDIT_INTERVAL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.SessionGCInterval, err = getDuration("SESSION_GC_INTERVAL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.DBTimeout, err = getDuration("DB_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.MigrateOnStart, err = getBool("MIGRATE_ON_START", true); err != nil {
		return nil, err
	}
	return cfg, nil
}

// TelegramEnabled: уведомления в Telegram включаются, только если есть и токен, и получатели.
func (c *Config) TelegramEnabled() bool {
	return c.BotToken != "" && len(c.NotifyChatIDs) > 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getDuration(k string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", k, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s: must be positive, got %s", k, v)
	}
	return d, nil
}

func getBool(k string, def bool) (bool, error) {
	v := os.Getenv(k)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s: %w", k, err)
	}
	return b, nil
}

func parseIDs(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad id %q: %w", p, err)
		}
		out = append(out, n)
	}
	return out, nil
}
