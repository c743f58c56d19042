package config

import (
	"flag"
	"os"
	"time"

	"github.com/akovardin/securepass/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   data directory
//	-d string   PostgreSQL DSN (empty = local backend)
//	-s string   session token secret
//	-t int      session validity, minutes
//	-l float    failed-auth attempts allowed per minute
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name (empty disables remote backups)
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Arguments are first filtered through flagx.FilterArgs so flags owned by
// other components do not collide with these.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-l", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DataDir, "a", config.DataDir, "data directory")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SessionSecret, "s", config.SessionSecret, "session token secret")

	sessionValidity := fs.Int("t", 0, "session_validity (in minutes)")
	fs.Float64Var(&config.AuthRatePerMinute, "l", config.AuthRatePerMinute, "failed auth attempts per minute")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// minute granularity applies only when -t was actually given; a finer
	// value from the JSON overlay must survive an absent flag
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.SessionValidity = time.Duration(*sessionValidity) * time.Minute
		}
	})
}
