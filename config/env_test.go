package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"SERVER_PORT", "DB_HOST", "DB_PORT", "DB_NAME", "DB_SSLMODE", "REDIS_HOST", "REDIS_PORT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.DB.Host)
	assert.Equal(t, "5432", cfg.DB.Port)
	assert.Equal(t, "mercato", cfg.DB.Name)
	assert.Equal(t, "disable", cfg.DB.SSLMode)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, "6379", cfg.Redis.Port)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_NAME", "mercato_test")
	t.Setenv("REDIS_DB", "3")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.DB.Host)
	assert.Equal(t, "mercato_test", cfg.DB.Name)
	assert.Equal(t, 3, cfg.Redis.DB)
}

func TestDBConfigDSN(t *testing.T) {
	dsn := DBConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "secret",
		Name:     "mercato",
		SSLMode:  "disable",
	}.DSN()

	assert.Equal(t, "host=localhost port=5432 user=postgres password=secret dbname=mercato sslmode=disable", dsn)
}
