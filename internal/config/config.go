// Package config loads exmail-sync settings from defaults, an optional YAML
// file and the environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Sync     SyncConfig     `koanf:"sync"`
	Exmail   ExmailConfig   `koanf:"exmail"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// DatabaseConfig points at the PostgreSQL instance that receives synced data.
type DatabaseConfig struct {
	DSN string `koanf:"dsn"`
}

// SyncConfig controls the sync commands.
type SyncConfig struct {
	// Parallel bounds the number of mailboxes whose logs are fetched at once.
	Parallel int `koanf:"parallel"`
	// Days is the default look-back window of log syncs.
	Days       int  `koanf:"days"`
	FetchChild bool `koanf:"fetch_child"`
}

// ExmailConfig describes the provider API and the two credential sets.
type ExmailConfig struct {
	BaseURL         string        `koanf:"base_url"`
	Timeout         time.Duration `koanf:"timeout"`
	RateLimit       float64       `koanf:"rate_limit"`
	Burst           int           `koanf:"burst"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
	TokenThreshold  time.Duration `koanf:"token_threshold"`

	// Contact is the application used for the directory endpoints.
	Contact AppCredential `koanf:"contact"`
	// Log is the application used for the log endpoints.
	Log AppCredential `koanf:"log"`
}

// AppCredential seeds a token state file.
type AppCredential struct {
	CorpID     string `koanf:"corp_id"`
	CorpSecret string `koanf:"corp_secret"`
	StateFile  string `koanf:"state_file"`
}

// LoggingConfig selects the zap level and output.
type LoggingConfig struct {
	Level string `koanf:"level"`
	// File is an extra output path; stderr is always written.
	File string `koanf:"file"`
}

var validLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true,
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []error
	if strings.TrimSpace(c.Database.DSN) == "" {
		problems = append(problems, errors.New("database.dsn is required"))
	}
	if c.Sync.Parallel < 1 {
		problems = append(problems, fmt.Errorf("sync.parallel must be >= 1, got %d", c.Sync.Parallel))
	}
	if c.Sync.Days < 0 {
		problems = append(problems, fmt.Errorf("sync.days must be >= 0, got %d", c.Sync.Days))
	}
	if strings.TrimSpace(c.Exmail.BaseURL) == "" {
		problems = append(problems, errors.New("exmail.base_url is required"))
	}
	if c.Exmail.RateLimit < 0 {
		problems = append(problems, fmt.Errorf("exmail.rate_limit must be >= 0, got %v", c.Exmail.RateLimit))
	}
	if c.Exmail.Timeout <= 0 {
		problems = append(problems, errors.New("exmail.timeout must be positive"))
	}
	if c.Exmail.TokenThreshold < 0 {
		problems = append(problems, errors.New("exmail.token_threshold must not be negative"))
	}
	if c.Exmail.Contact.StateFile == "" || c.Exmail.Log.StateFile == "" {
		problems = append(problems, errors.New("exmail state files are required"))
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		problems = append(problems, fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	return errors.Join(problems...)
}
