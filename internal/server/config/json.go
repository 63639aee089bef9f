package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/securepass/internal/flagx"
	"github.com/dmitrijs2005/securepass/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Only fields present in the file override the current Config.
type JsonConfig struct {
	HTTPAddr        *string         `json:"http_addr"`
	GRPCHealthAddr  *string         `json:"grpc_health_addr"`
	DatabaseDSN     *string         `json:"database_dsn"`
	JWTSecret       *string         `json:"jwt_secret"`
	AESKey          *string         `json:"aes_key"`
	TokenTTL        *timex.Duration `json:"token_ttl"`
	LoginRateLimit  *int            `json:"login_rate_limit"`
	LoginRateWindow *timex.Duration `json:"login_rate_window"`
	MaxBodyBytes    *int64          `json:"max_body_bytes"`
	RedisAddr       *string         `json:"redis_addr"`
	AllowedOrigins  []string        `json:"allowed_origins"`
	AdminUserName   *string         `json:"admin_username"`
	AdminPassword   *string         `json:"admin_password"`
	S3AccessKey     *string         `json:"s3_access_key"`
	S3SecretKey     *string         `json:"s3_secret_key"`
	S3Bucket        *string         `json:"s3_bucket"`
	S3Region        *string         `json:"s3_region"`
	S3BaseEndpoint  *string         `json:"s3_base_endpoint"`
	ShutdownTimeout *timex.Duration `json:"shutdown_timeout"`
	Dev             *bool           `json:"dev"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config flag, else the
// SECUREPASS_CONFIG environment variable. If neither is set, nothing is
// loaded. An unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCHealthAddr, c.GRPCHealthAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.JWTSecret, c.JWTSecret)
	setString(&config.AESKey, c.AESKey)
	setString(&config.RedisAddr, c.RedisAddr)
	setString(&config.AdminUserName, c.AdminUserName)
	setString(&config.AdminPassword, c.AdminPassword)
	setString(&config.S3AccessKey, c.S3AccessKey)
	setString(&config.S3SecretKey, c.S3SecretKey)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.TokenTTL != nil {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.LoginRateLimit != nil {
		config.LoginRateLimit = *c.LoginRateLimit
	}
	if c.LoginRateWindow != nil {
		config.LoginRateWindow = c.LoginRateWindow.Duration
	}
	if c.MaxBodyBytes != nil {
		config.MaxBodyBytes = *c.MaxBodyBytes
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.Dev != nil {
		config.Dev = *c.Dev
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
