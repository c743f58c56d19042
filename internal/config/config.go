// Package config handles configuration for SecurePass, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings.
//
// Fields:
//   - DataDir: directory for local storage (master records, vault blobs,
//     shares database, backups).
//   - DatabaseDSN: PostgreSQL DSN; empty selects the local file/SQLite
//     backend.
//   - SessionSecret: HMAC secret for signing session tokens (HS256).
//     Do not use test defaults in production.
//   - SessionValidity: session token lifetime.
//   - AuthRatePerMinute / AuthBurst: per-owner throttle on failed
//     authentication attempts.
//   - S3RootUser / S3RootPassword: credentials for the S3-compatible
//     backup target.
//   - S3Bucket / S3Region / S3BaseEndpoint: object storage settings;
//     empty bucket disables remote backups.
type Config struct {
	DataDir           string
	DatabaseDSN       string
	SessionSecret     string
	SessionValidity   time.Duration
	AuthRatePerMinute float64
	AuthBurst         int
	S3RootUser        string
	S3RootPassword    string
	S3Bucket          string
	S3Region          string
	S3BaseEndpoint    string
}

// LoadDefaults populates Config with sensible development defaults.
// NOTE: the session secret is insecure and must be overridden.
func (c *Config) LoadDefaults() {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	c.DataDir = filepath.Join(home, ".securepass")
	c.DatabaseDSN = ""
	c.SessionSecret = "secretKey"
	c.SessionValidity = 30 * time.Minute
	c.AuthRatePerMinute = 10
	c.AuthBurst = 5
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = ""
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
