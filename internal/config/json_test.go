package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, map[string]any{
		"data_dir":             "/tmp/sp",
		"database_dsn":         "postgres://dsn",
		"session_secret":       "json_secret",
		"session_validity":     "45m",
		"auth_rate_per_minute": 5,
		"auth_burst":           3,
		"s3_root_user":         "user",
		"s3_root_password":     "password",
		"s3_bucket":            "bucket",
		"s3_region":            "region",
		"s3_base_endpoint":     "base_endpoint",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		parseJson(cfg)

		assert.Equal(t, "/tmp/sp", cfg.DataDir)
		assert.Equal(t, "postgres://dsn", cfg.DatabaseDSN)
		assert.Equal(t, "json_secret", cfg.SessionSecret)
		assert.Equal(t, 45*time.Minute, cfg.SessionValidity)
		assert.Equal(t, float64(5), cfg.AuthRatePerMinute)
		assert.Equal(t, 3, cfg.AuthBurst)
		assert.Equal(t, "user", cfg.S3RootUser)
		assert.Equal(t, "bucket", cfg.S3Bucket)
	})

	t.Run("short flag form", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", path}

		cfg := &Config{}
		parseJson(cfg)
		assert.Equal(t, "json_secret", cfg.SessionSecret)
	})

	t.Run("no config flag leaves values alone", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{SessionSecret: "keep"}
		parseJson(cfg)
		assert.Equal(t, "keep", cfg.SessionSecret)
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", "/does/not/exist.json"}

		assert.Panics(t, func() { parseJson(&Config{}) })
	})
}
