package config

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
)

// ClientConfig holds the settings of the shortlink command line client.
// An explicitly set flag wins over the environment.
type ClientConfig struct {
	Origin   string
	Timeout  time.Duration
	LogLevel string
	LogFile  string
}

const (
	flagOrigin   = "origin"
	flagTimeout  = "timeout"
	flagLogLevel = "log-level"
	flagLogFile  = "log-file"
)

// BindFlags registers the client flags on fs with their defaults.
func (c *ClientConfig) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Origin, flagOrigin, defaultBaseURL, "Shortener API origin (env SHORTLINK_ORIGIN)")
	fs.DurationVar(&c.Timeout, flagTimeout, 10*time.Second, "Request timeout (env SHORTLINK_TIMEOUT)")
	fs.StringVar(&c.LogLevel, flagLogLevel, "info", "Log level (env SHORTLINK_LOG_LEVEL)")
	fs.StringVar(&c.LogFile, flagLogFile, "", "Write logs to this file; logs are discarded when empty (env SHORTLINK_LOG_FILE)")
}

// ApplyEnv fills every setting whose flag was not given on the command line
// from the environment.
func (c *ClientConfig) ApplyEnv(fs *pflag.FlagSet, getenv func(string) string) error {
	override := func(flagName, env string, target *string) {
		if fs.Changed(flagName) {
			return
		}
		if val := getenv(env); val != "" {
			*target = val
		}
	}
	override(flagOrigin, "SHORTLINK_ORIGIN", &c.Origin)
	override(flagLogLevel, "SHORTLINK_LOG_LEVEL", &c.LogLevel)
	override(flagLogFile, "SHORTLINK_LOG_FILE", &c.LogFile)

	if !fs.Changed(flagTimeout) {
		if val := getenv("SHORTLINK_TIMEOUT"); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				return fmt.Errorf("invalid SHORTLINK_TIMEOUT: %w", err)
			}
			c.Timeout = d
		}
	}

	if c.Origin == "" {
		return fmt.Errorf("origin must not be empty")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}
