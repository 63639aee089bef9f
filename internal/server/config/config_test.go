package config

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/securepass/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	goodSecret = "0123456789abcdef0123456789abcdef"
	goodAESKey = "fedcba9876543210fedcba9876543210"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, ":50051", c.GRPCHealthAddr)
	assert.Equal(t, "", c.DatabaseDSN)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
	assert.Equal(t, 5, c.LoginRateLimit)
	assert.Equal(t, 60*time.Second, c.LoginRateWindow)
	assert.Equal(t, int64(10<<20), c.MaxBodyBytes)
	assert.Equal(t, []string{"http://localhost:4200"}, c.AllowedOrigins)
	assert.False(t, c.BackupEnabled())
	assert.Empty(t, c.JWTSecret)
	assert.Empty(t, c.AESKey)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"testbin"}
	t.Setenv("SECUREPASS_CONFIG", "")

	c := LoadConfig()
	require.NotNil(t, c, "LoadConfig must not return nil")

	assert.Equal(t, ":8080", c.HTTPAddr)
	assert.Equal(t, 24*time.Hour, c.TokenTTL)
}

func TestLoadConfig_Precedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := writeTempJSON(t, "", "", map[string]any{
		"http_addr": ":7000",
		"jwt_secret": "from-json",
		"token_ttl": "2h",
	})
	t.Setenv("SECUREPASS_CONFIG", path)
	t.Setenv("SECUREPASS_JWT_SECRET", "from-env")
	t.Setenv("SECUREPASS_HTTP_ADDR", ":7001")

	os.Args = []string{"testbin", "-a", ":7002"}

	c := LoadConfig()
	assert.Equal(t, ":7002", c.HTTPAddr, "flags win")
	assert.Equal(t, "from-env", c.JWTSecret, "env beats json")
	assert.Equal(t, 2*time.Hour, c.TokenTTL, "json beats defaults, unset flag keeps it")
}

func validConfig() *Config {
	c := &Config{}
	c.LoadDefaults()
	c.JWTSecret = goodSecret
	c.AESKey = goodAESKey
	return c
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	tests := []struct {
		name    string
		mutate  func(*Config)
		setting string
	}{
		{name: "missing jwt", mutate: func(c *Config) { c.JWTSecret = "" }, setting: "SECUREPASS_JWT_SECRET"},
		{name: "short jwt", mutate: func(c *Config) { c.JWTSecret = "short" }, setting: "SECUREPASS_JWT_SECRET"},
		{name: "placeholder jwt", mutate: func(c *Config) { c.JWTSecret = common.PlaceholderSecret }, setting: "SECUREPASS_JWT_SECRET"},
		{name: "placeholder aes", mutate: func(c *Config) { c.AESKey = common.PlaceholderSecret }, setting: "SECUREPASS_AES_KEY"},
		{name: "odd aes length", mutate: func(c *Config) { c.AESKey = strings.Repeat("k", 20) }, setting: "SECUREPASS_AES_KEY"},
		{name: "zero ttl", mutate: func(c *Config) { c.TokenTTL = 0 }, setting: "SECUREPASS_TOKEN_TTL"},
		{name: "zero limit", mutate: func(c *Config) { c.LoginRateLimit = 0 }, setting: "SECUREPASS_LOGIN_RATE_LIMIT"},
		{name: "zero window", mutate: func(c *Config) { c.LoginRateWindow = 0 }, setting: "SECUREPASS_LOGIN_RATE_WINDOW"},
		{name: "zero body", mutate: func(c *Config) { c.MaxBodyBytes = 0 }, setting: "SECUREPASS_MAX_BODY_BYTES"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(c)

			err := c.Validate()
			require.Error(t, err)

			var cfgErr *common.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.setting)
		})
	}
}

func TestValidate_ReportsEverything(t *testing.T) {
	c := &Config{}
	err := c.Validate()
	require.Error(t, err)
	for _, s := range []string{"SECUREPASS_JWT_SECRET", "SECUREPASS_AES_KEY", "SECUREPASS_MAX_BODY_BYTES", "SECUREPASS_HTTP_ADDR"} {
		assert.Contains(t, err.Error(), s)
	}
}

func TestValidate_DevWording(t *testing.T) {
	c := validConfig()
	c.AESKey = ""
	c.Dev = true
	assert.Contains(t, c.Validate().Error(), "development config file")

	c.Dev = false
	assert.Contains(t, c.Validate().Error(), "required in production")
}
