package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// InsecureDefaultSecret signs tokens when no secret is configured outside
// production. Anyone who reads this file can forge tokens for such a deployment.
const InsecureDefaultSecret = "insecure-development-secret-change-me"

const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"

	envProduction = "production"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr            string
		ShutdownTimeout time.Duration
		// TrustedProxies lists the proxy addresses or CIDRs whose
		// X-Forwarded-For header is believed; empty trusts none.
		TrustedProxies []string
	}
	App struct {
		Env string
	}
	Log struct {
		Level  string
		Format string
	}
	Database struct {
		Driver string
		URI    string
		Name   string
		Path   string
	}
	Auth struct {
		JWTSecret  string
		TokenTTL   time.Duration
		BcryptCost int
		// LoginRate is the sustained number of login attempts per minute
		// allowed from one client address; zero disables throttling.
		LoginRate  int
		LoginBurst int
	}
	CORS struct {
		Origins []string
	}
	Bootstrap struct {
		Username string
		Password string
		Email    string
		FullName string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	_ = godotenv.Load() // optional file, never overrides the environment

	v := viper.New()
	v.SetEnvPrefix("PORTAL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8001")
	v.SetDefault("server.shutdowntimeout", "10s")
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("app.env", "development")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "portal")
	v.SetDefault("database.path", "data/portal.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttl", "24h")
	v.SetDefault("auth.bcryptcost", 10)
	v.SetDefault("auth.loginrate", 10)
	v.SetDefault("auth.loginburst", 5)
	v.SetDefault("cors.origins", []string{"*"})
	v.SetDefault("bootstrap.username", "")
	v.SetDefault("bootstrap.password", "")
	v.SetDefault("bootstrap.email", "")
	v.SetDefault("bootstrap.fullname", "")

	// variable names used by earlier deployments
	aliases := map[string]string{
		"database.uri":   "MONGO_URL",
		"database.name":  "DB_NAME",
		"auth.jwtsecret": "JWT_SECRET",
		"cors.origins":   "CORS_ORIGINS",
	}
	for key, legacy := range aliases {
		prefixed := "PORTAL_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.CORS.Origins = cleanList(cfg.CORS.Origins)
	cfg.Server.TrustedProxies = cleanList(cfg.Server.TrustedProxies)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsProduction reports whether the process runs with APP_ENV=production.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.App.Env), envProduction)
}

// SigningSecret returns the token signing key and whether it is the insecure fallback.
func (c Config) SigningSecret() ([]byte, bool) {
	secret := strings.TrimSpace(c.Auth.JWTSecret)
	if secret == "" || secret == InsecureDefaultSecret {
		return []byte(InsecureDefaultSecret), true
	}
	return []byte(secret), false
}

// Validate rejects configurations the server cannot run with.
func (c Config) Validate() error {
	if _, insecure := c.SigningSecret(); insecure && c.IsProduction() {
		return fmt.Errorf("auth jwt secret is required in production")
	}

	switch c.Database.Driver {
	case DriverMongo:
		if strings.TrimSpace(c.Database.URI) == "" {
			return fmt.Errorf("database uri is required for the mongo driver")
		}
		if strings.TrimSpace(c.Database.Name) == "" {
			return fmt.Errorf("database name is required for the mongo driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return fmt.Errorf("database path is required for the sqlite driver")
		}
	case DriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("memory database driver is not allowed in production")
		}
	default:
		return fmt.Errorf("unknown database driver %q", c.Database.Driver)
	}

	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth token ttl must be positive")
	}
	if c.Auth.LoginRate < 0 || c.Auth.LoginBurst < 0 {
		return fmt.Errorf("auth login rate and burst must not be negative")
	}
	if c.Auth.LoginRate > 0 && c.Auth.LoginBurst == 0 {
		return fmt.Errorf("auth login burst must be positive when throttling is enabled")
	}
	if (c.Bootstrap.Username == "") != (c.Bootstrap.Password == "") {
		return fmt.Errorf("bootstrap username and password must be set together")
	}
	return nil
}

func cleanList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
