package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string
	HTTPAddr        string
	LogLevel        string
	Env             string // dev|prod
	SentryDSN       string
	JWTSecret       string
	Location        *time.Location
	BotToken        string  // пусто: уведомления выключены
	NotifyChatIDs   []int64 // чаты для уведомлений о новых aduan
	BackupURL       string
	AnnouncementTTL time.Duration // период очистки просроченных pemberitahuan
	InstitutionName string
}

// Load reads an optional .env and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	tz := getenv("TZ", "Asia/Jakarta")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.Local
	}

	chatIDs, err := parseIDs(os.Getenv("NOTIFY_CHAT_IDS"))
	if err != nil {
		return nil, fmt.Errorf("NOTIFY_CHAT_IDS: %w", err)
	}

	sweep, err := time.ParseDuration(getenv("ANNOUNCEMENT_SWEEP", "1h"))
	if err != nil || sweep <= 0 {
		return nil, fmt.Errorf("ANNOUNCEMENT_SWEEP: bad duration %q", os.Getenv("ANNOUNCEMENT_SWEEP"))
	}

	cfg := &Config{
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		HTTPAddr:        getenv("HTTP_ADDR", ":8080"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		Env:             getenv("ENV", "dev"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		Location:        loc,
		BotToken:        os.Getenv("BOT_TOKEN"),
		NotifyChatIDs:   chatIDs,
		BackupURL:       strings.TrimRight(getenv("BACKUPCTL_URL", "http://pgbackup:8081"), "/"),
		AnnouncementTTL: sweep,
		InstitutionName: getenv("INSTITUTION_NAME", "Politeknik Negeri"),
	}
	if cfg.DatabaseURL == "" {
		return nil, errors.New("required env DATABASE_URL is empty")
	}
	if cfg.JWTSecret == "" {
		return nil, errors.New("required env JWT_SECRET is empty")
	}
	return cfg, nil
}

// NotifyEnabled reports whether complaint notifications can be sent.
func (c *Config) NotifyEnabled() bool {
	return c.BotToken != "" && len(c.NotifyChatIDs) > 0
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
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
