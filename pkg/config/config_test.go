package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gotest.tools/v3/env"
	"gotest.tools/v3/fs"
)

var configKeys = []string{
	"PORT", "DATABASE_URL", "JWT_SECRET", "JWT_ISSUER", "ACCESS_TOKEN_TTL",
	"REFRESH_TOKEN_TTL", "REFRESH_TOKEN_BYTES", "SESSION_BACKEND", "REDIS_ADDR",
	"REDIS_PASSWORD", "REDIS_DB", "LOG_LEVEL", "CORS_ALLOW_ORIGINS", "CONFIG_FILE",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		env.Patch(t, k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	env.Patch(t, "DATABASE_URL", "postgres://localhost/blog")
	env.Patch(t, "JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "blog", cfg.JWTIssuer)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 64, cfg.RefreshTokenBytes)
	assert.Equal(t, BackendPostgres, cfg.SessionBackend)
	assert.Equal(t, "*", cfg.CORSAllowOrigins)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	env.PatchAll(t, map[string]string{
		"DATABASE_URL":        "postgres://localhost/blog",
		"JWT_SECRET":          "s3cret",
		"PORT":                "9090",
		"ACCESS_TOKEN_TTL":    "5m",
		"REFRESH_TOKEN_TTL":   "48h",
		"REFRESH_TOKEN_BYTES": "32",
		"SESSION_BACKEND":     "redis",
		"REDIS_ADDR":          "cache:6379",
		"REDIS_DB":            "2",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, 48*time.Hour, cfg.RefreshTokenTTL)
	assert.Equal(t, 32, cfg.RefreshTokenBytes)
	assert.Equal(t, Redis{Addr: "cache:6379", DB: 2}, cfg.Redis)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	file := fs.NewFile(t, "blog-config", fs.WithContent(`
database_url: postgres://file/blog
jwt_secret: from-file
access_token_ttl: 10m
session_backend: memory
log_level: debug
`))
	env.Patch(t, "CONFIG_FILE", file.Path())
	env.Patch(t, "LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://file/blog", cfg.DatabaseURL)
	assert.Equal(t, "from-file", cfg.JWTSecret)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenTTL)
	assert.Equal(t, BackendMemory, cfg.SessionBackend)
	// Environment wins over the file.
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestLoad_Errors(t *testing.T) {
	clearEnv(t)
	env.Patch(t, "DATABASE_URL", "postgres://localhost/blog")
	env.Patch(t, "JWT_SECRET", "s3cret")

	env.Patch(t, "ACCESS_TOKEN_TTL", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "ACCESS_TOKEN_TTL")

	env.Patch(t, "ACCESS_TOKEN_TTL", "")
	env.Patch(t, "CONFIG_FILE", "/definitely/missing.yaml")
	_, err = Load()
	assert.ErrorContains(t, err, "read config file")
}

func TestValidate(t *testing.T) {
	valid := Default()
	valid.DatabaseURL = "postgres://localhost/blog"
	valid.JWTSecret = "s3cret"
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"DATABASE_URL":        func(c *Config) { c.DatabaseURL = "" },
		"JWT_SECRET":          func(c *Config) { c.JWTSecret = "" },
		"ACCESS_TOKEN_TTL":    func(c *Config) { c.AccessTokenTTL = 0 },
		"REFRESH_TOKEN_TTL":   func(c *Config) { c.RefreshTokenTTL = -time.Second },
		"shorter than":        func(c *Config) { c.AccessTokenTTL = c.RefreshTokenTTL },
		"REFRESH_TOKEN_BYTES": func(c *Config) { c.RefreshTokenBytes = 16 },
		"SESSION_BACKEND":     func(c *Config) { c.SessionBackend = "etcd" },
		"REDIS_ADDR":          func(c *Config) { c.SessionBackend = BackendRedis; c.Redis.Addr = "" },
	}
	inMemory := valid
	inMemory.SessionBackend = BackendMemory
	inMemory.DatabaseURL = ""
	assert.NoError(t, inMemory.Validate())

	for want, mutate := range cases {
		t.Run(want, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.ErrorContains(t, c.Validate(), want)
		})
	}
}
