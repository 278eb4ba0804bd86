package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://siakad@localhost/siakad")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("TZ", "Asia/Jakarta")
	t.Setenv("NOTIFY_CHAT_IDS", "")
	t.Setenv("ANNOUNCEMENT_SWEEP", "")
	t.Setenv("BACKUPCTL_URL", "http://backup:9000/")
	t.Setenv("BOT_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.AnnouncementTTL)
	assert.Equal(t, "Asia/Jakarta", cfg.Location.String())
	assert.Equal(t, "http://backup:9000", cfg.BackupURL)
	assert.False(t, cfg.NotifyEnabled())
}

func TestLoad_Required(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "x")
	_, err := Load()
	assert.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "")
	_, err = Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoad_BadSweep(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://x")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("ANNOUNCEMENT_SWEEP", "soon")
	_, err := Load()
	assert.Error(t, err)
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 100, -200 300 ")
	require.NoError(t, err)
	assert.Equal(t, []int64{100, -200, 300}, ids)

	ids, err = parseIDs("")
	require.NoError(t, err)
	assert.Nil(t, ids)

	_, err = parseIDs("12,abc")
	assert.Error(t, err)
}
