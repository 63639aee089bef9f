package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// parseEnv overlays SECUREPASS_* variables (plus ADMIN_USERNAME and
// ADMIN_PASSWORD) onto config. A malformed number, duration or bool panics,
// like a malformed JSON file.
func parseEnv(config *Config) {
	str := func(name string, dst *string) {
		if v, ok := os.LookupEnv(name); ok {
			*dst = v
		}
	}

	str("SECUREPASS_HTTP_ADDR", &config.HTTPAddr)
	str("SECUREPASS_GRPC_ADDR", &config.GRPCHealthAddr)
	str("SECUREPASS_DATABASE_DSN", &config.DatabaseDSN)
	str("SECUREPASS_JWT_SECRET", &config.JWTSecret)
	str("SECUREPASS_AES_KEY", &config.AESKey)
	str("SECUREPASS_REDIS_ADDR", &config.RedisAddr)
	str("ADMIN_USERNAME", &config.AdminUserName)
	str("ADMIN_PASSWORD", &config.AdminPassword)
	str("SECUREPASS_S3_ACCESS_KEY", &config.S3AccessKey)
	str("SECUREPASS_S3_SECRET_KEY", &config.S3SecretKey)
	str("SECUREPASS_S3_BUCKET", &config.S3Bucket)
	str("SECUREPASS_S3_REGION", &config.S3Region)
	str("SECUREPASS_S3_ENDPOINT", &config.S3BaseEndpoint)

	if v, ok := os.LookupEnv("SECUREPASS_CORS_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}

	envDuration("SECUREPASS_TOKEN_TTL", &config.TokenTTL)
	envDuration("SECUREPASS_LOGIN_RATE_WINDOW", &config.LoginRateWindow)
	envDuration("SECUREPASS_SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)

	if v, ok := os.LookupEnv("SECUREPASS_LOGIN_RATE_LIMIT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(fmt.Errorf("SECUREPASS_LOGIN_RATE_LIMIT: %w", err))
		}
		config.LoginRateLimit = n
	}
	if v, ok := os.LookupEnv("SECUREPASS_MAX_BODY_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("SECUREPASS_MAX_BODY_BYTES: %w", err))
		}
		config.MaxBodyBytes = n
	}
	if v, ok := os.LookupEnv("SECUREPASS_DEV"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(fmt.Errorf("SECUREPASS_DEV: %w", err))
		}
		config.Dev = b
	}
}

func envDuration(name string, dst *time.Duration) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		panic(fmt.Errorf("%s: %w", name, err))
	}
	*dst = d
}

func splitList(v string) []string {
	out := make([]string, 0)
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
