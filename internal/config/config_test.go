package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8001", cfg.Server.Addr)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, DriverMongo, cfg.Database.Driver)
	assert.Equal(t, "portal", cfg.Database.Name)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
	assert.Equal(t, []string{"*"}, cfg.CORS.Origins)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.False(t, cfg.IsProduction())

	secret, insecure := cfg.SigningSecret()
	assert.True(t, insecure)
	assert.Equal(t, InsecureDefaultSecret, string(secret))
}

func TestLoad_PrefixedEnvironment(t *testing.T) {
	t.Setenv("PORTAL_SERVER_ADDR", "127.0.0.1:9000")
	t.Setenv("PORTAL_DATABASE_DRIVER", DriverSQLite)
	t.Setenv("PORTAL_DATABASE_PATH", "/tmp/portal.db")
	t.Setenv("PORTAL_AUTH_JWTSECRET", "from-env")
	t.Setenv("PORTAL_AUTH_TOKENTTL", "90m")
	t.Setenv("PORTAL_CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9000", cfg.Server.Addr)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "/tmp/portal.db", cfg.Database.Path)
	assert.Equal(t, 90*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.Origins)

	secret, insecure := cfg.SigningSecret()
	assert.False(t, insecure)
	assert.Equal(t, "from-env", string(secret))
}

func TestLoad_LegacyVariableNames(t *testing.T) {
	t.Setenv("MONGO_URL", "mongodb://db.internal:27017")
	t.Setenv("DB_NAME", "synclogic")
	t.Setenv("JWT_SECRET", "legacy-secret")
	t.Setenv("CORS_ORIGINS", "https://portal.example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "mongodb://db.internal:27017", cfg.Database.URI)
	assert.Equal(t, "synclogic", cfg.Database.Name)
	assert.Equal(t, "legacy-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, []string{"https://portal.example.com"}, cfg.CORS.Origins)
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("PORTAL_APP_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("PORTAL_AUTH_JWTSECRET", InsecureDefaultSecret)
	_, err = Load()
	require.Error(t, err)

	t.Setenv("PORTAL_AUTH_JWTSECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.Database.Driver = DriverMemory
		cfg.Auth.TokenTTL = time.Hour
		cfg.Auth.LoginRate = 10
		cfg.Auth.LoginBurst = 5
		return cfg
	}
	require.NoError(t, valid().Validate())

	cases := map[string]func(*Config){
		"unknown driver":      func(c *Config) { c.Database.Driver = "postgres" },
		"sqlite without path": func(c *Config) { c.Database.Driver = DriverSQLite },
		"mongo without uri":   func(c *Config) { c.Database.Driver = DriverMongo; c.Database.Name = "portal" },
		"zero ttl":            func(c *Config) { c.Auth.TokenTTL = 0 },
		"negative rate":       func(c *Config) { c.Auth.LoginRate = -1 },
		"zero burst":          func(c *Config) { c.Auth.LoginBurst = 0 },
		"half bootstrap":      func(c *Config) { c.Bootstrap.Username = "admin" },
		"memory in production": func(c *Config) {
			c.App.Env = "production"
			c.Auth.JWTSecret = "s"
		},
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_TrustedProxies(t *testing.T) {
	t.Setenv("PORTAL_SERVER_TRUSTEDPROXIES", "10.0.0.1, 172.16.0.0/12")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1", "172.16.0.0/12"}, cfg.Server.TrustedProxies)
}
