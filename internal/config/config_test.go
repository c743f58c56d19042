package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, cfg.SessionValidity)
	assert.Equal(t, float64(10), cfg.AuthRatePerMinute)
	assert.Equal(t, 5, cfg.AuthBurst)
	assert.Empty(t, cfg.S3Bucket)
}
