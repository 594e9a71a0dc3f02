package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_DRIVER", "JWT_TTL", "LOGIN_MAX_FAILURES", "COUNTER_BACKEND", "TELEGRAM_CHAT_ID"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5, cfg.LoginMaxFailures)
	assert.Equal(t, 10*time.Minute, cfg.LoginLockoutWindow)
	assert.Equal(t, "memory", cfg.CounterBackend)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("LOGIN_MAX_FAILURES", "3")
	t.Setenv("COUNTER_BACKEND", "dynamodb")
	t.Setenv("TELEGRAM_CHAT_ID", "-10042")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.JWTTTL)
	assert.Equal(t, 3, cfg.LoginMaxFailures)
	assert.Equal(t, "dynamodb", cfg.CounterBackend)
	assert.Equal(t, int64(-10042), cfg.TelegramChatID)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"JWT_TTL":            "soon",
		"LOGIN_MAX_FAILURES": "five",
		"DB_DRIVER":          "mysql",
		"COUNTER_BACKEND":    "redis",
		"TELEGRAM_CHAT_ID":   "chat",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestOpenDBAndMigrate(t *testing.T) {
	db, err := OpenDB(&Config{DBDriver: "sqlite", DBDSN: "file:config_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"accounts", "products", "orders", "order_items", "order_status_histories", "reviews", "review_votes", "pages", "contact_messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
