// Package config handles configuration for the server component,
// including defaults, JSON overlay, environment, and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/dmitrijs2005/securepass/internal/cryptox"
	"github.com/dmitrijs2005/securepass/internal/server/auth"
	"github.com/dmitrijs2005/securepass/internal/server/guard"
)

// Config holds runtime settings for the SecurePass server.
//
// Fields:
//   - HTTPAddr: bind address of the JSON API.
//   - GRPCHealthAddr: bind address of the gRPC health service; empty disables it.
//   - DatabaseDSN: PostgreSQL DSN (pgx); empty selects the in-memory store.
//   - JWTSecret: HMAC key for HS256 tokens, at least 32 bytes.
//   - AESKey: envelope key for stored secrets, 16, 24 or 32 bytes.
//   - TokenTTL: bearer token lifetime.
//   - LoginRateLimit / LoginRateWindow: login attempts allowed per client per window.
//   - MaxBodyBytes: request body ceiling.
//   - RedisAddr: shared rate-limit counters; empty keeps them in memory.
//   - AllowedOrigins: CORS origins.
//   - AdminUserName / AdminPassword: bootstrap account, created when both are set.
//   - S3*: backup export target; empty bucket disables backups.
//   - Dev: development mode, only changes log level and config error wording.
type Config struct {
	HTTPAddr        string
	GRPCHealthAddr  string
	DatabaseDSN     string
	JWTSecret       string
	AESKey          string
	TokenTTL        time.Duration
	LoginRateLimit  int
	LoginRateWindow time.Duration
	MaxBodyBytes    int64
	RedisAddr       string
	AllowedOrigins  []string
	AdminUserName   string
	AdminPassword   string
	S3AccessKey     string
	S3SecretKey     string
	S3Bucket        string
	S3Region        string
	S3BaseEndpoint  string
	ShutdownTimeout time.Duration
	Dev             bool
}

// LoadDefaults populates Config with development defaults. Secrets have no
// default and must be supplied.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.GRPCHealthAddr = ":50051"
	c.DatabaseDSN = ""
	c.TokenTTL = 24 * time.Hour
	c.LoginRateLimit = guard.DefaultLoginLimit
	c.LoginRateWindow = guard.DefaultLoginWindow
	c.MaxBodyBytes = guard.DefaultMaxBodyBytes
	c.AllowedOrigins = []string{"http://localhost:4200"}
	c.S3Region = "us-east-1"
	c.ShutdownTimeout = 10 * time.Second
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}

// BackupEnabled reports whether an S3 bucket is configured.
func (c *Config) BackupEnabled() bool {
	return c.S3Bucket != ""
}

// Validate checks everything the server needs before it may start. All
// problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if _, err := auth.NewTokenService([]byte(c.JWTSecret), c.TokenTTL, c.Dev); err != nil {
		errs = append(errs, err)
	}
	if _, err := cryptox.NewEnvelope([]byte(c.AESKey), c.Dev); err != nil {
		errs = append(errs, err)
	}
	if c.LoginRateLimit <= 0 {
		errs = append(errs, &common.ConfigError{Setting: "SECUREPASS_LOGIN_RATE_LIMIT", Reason: "must be positive", Dev: c.Dev})
	}
	if c.LoginRateWindow <= 0 {
		errs = append(errs, &common.ConfigError{Setting: "SECUREPASS_LOGIN_RATE_WINDOW", Reason: "must be positive", Dev: c.Dev})
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, &common.ConfigError{Setting: "SECUREPASS_MAX_BODY_BYTES", Reason: "must be positive", Dev: c.Dev})
	}
	if c.HTTPAddr == "" {
		errs = append(errs, &common.ConfigError{Setting: "SECUREPASS_HTTP_ADDR", Reason: "must not be empty", Dev: c.Dev})
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}
