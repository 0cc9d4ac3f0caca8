package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingSecret = errors.New("SECRET_KEY environment variable not set")

type Session struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type Config struct {
	Port           string
	Mode           string
	DatabaseURL    string
	RedisURL       string
	AllowedOrigins []string
	BcryptCost     int
	Session        Session
	Log            struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment, after loading an optional
// .env file. Values already present in the environment win over .env.
func Load(envFiles ...string) (*Config, error) {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8083")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SQLITE_DB", "cafes.db")
	v.SetDefault("SESSION_COOKIE", "session")
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("COOKIE_SECURE", false)
	v.SetDefault("BCRYPT_COST", 10)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	secret := v.GetString("SECRET_KEY")
	if secret == "" {
		return nil, ErrMissingSecret
	}

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL %q", v.GetString("SESSION_TTL"))
	}

	dsn := v.GetString("DATABASE_URL")
	if dsn == "" {
		dsn = v.GetString("SQLITE_DB")
	}

	cfg := &Config{
		Port:        v.GetString("PORT"),
		Mode:        v.GetString("GIN_MODE"),
		DatabaseURL: dsn,
		RedisURL:    v.GetString("REDIS_URL"),
		BcryptCost:  v.GetInt("BCRYPT_COST"),
		Session: Session{
			Secret:     secret,
			CookieName: v.GetString("SESSION_COOKIE"),
			TTL:        ttl,
			Secure:     v.GetBool("COOKIE_SECURE"),
		},
	}
	cfg.Log.Level = v.GetString("LOG_LEVEL")
	cfg.Log.Format = v.GetString("LOG_FORMAT")

	for _, origin := range strings.Split(v.GetString("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.AllowedOrigins = append(cfg.AllowedOrigins, origin)
		}
	}
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
	}

	return cfg, nil
}

// Release reports whether gin should run in release mode.
func (c *Config) Release() bool {
	return c.Mode == "release"
}
