package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/akovardin/securepass/internal/flagx"
	"github.com/akovardin/securepass/internal/timex"
)

// JsonConfig is the DTO for reading JSON configuration files. It uses
// timex.Duration for intervals so values can be given either as strings
// such as "30m" or as integer nanoseconds. After unmarshalling, its
// fields are copied into the runtime Config.
type JsonConfig struct {
	DataDir           string         `json:"data_dir"`
	DatabaseDSN       string         `json:"database_dsn"`
	SessionSecret     string         `json:"session_secret"`
	SessionValidity   timex.Duration `json:"session_validity"`
	AuthRatePerMinute float64        `json:"auth_rate_per_minute"`
	AuthBurst         int            `json:"auth_burst"`
	S3RootUser        string         `json:"s3_root_user"`
	S3RootPassword    string         `json:"s3_root_password"`
	S3Bucket          string         `json:"s3_bucket"`
	S3Region          string         `json:"s3_region"`
	S3BaseEndpoint    string         `json:"s3_base_endpoint"`
}

// parseJson loads configuration values from the JSON file given via the
// -c/-config flags into the provided Config. When no file is given,
// nothing happens. An unreadable or invalid file panics: a half-applied
// configuration is worse than a crash at startup.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.DataDir = c.DataDir
	config.DatabaseDSN = c.DatabaseDSN
	config.SessionSecret = c.SessionSecret
	config.SessionValidity = time.Duration(c.SessionValidity.Duration)
	config.AuthRatePerMinute = c.AuthRatePerMinute
	config.AuthBurst = c.AuthBurst
	config.S3RootUser = c.S3RootUser
	config.S3RootPassword = c.S3RootPassword
	config.S3Bucket = c.S3Bucket
	config.S3Region = c.S3Region
	config.S3BaseEndpoint = c.S3BaseEndpoint
}
