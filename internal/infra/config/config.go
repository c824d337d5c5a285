package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration

	HTTPAddress  string
	Environment  string
	ClientURL    string
	CookieDomain string

	AllowedOrigins   []string
	AllowCredentials bool

	RedisAddress  string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from the environment once at startup. DATABASE_URL
// and JWT_SECRET are required; everything else has a default.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	for _, key := range []string{
		"DATABASE_URL", "JWT_SECRET", "TOKEN_TTL",
		"HTTP_ADDRESS", "ENVIRONMENT", "CLIENT_URL", "COOKIE_DOMAIN",
		"ALLOWED_ORIGINS", "ALLOW_CREDENTIALS",
		"REDIS_ADDRESS", "REDIS_PASSWORD", "REDIS_DB",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	v.SetDefault("TOKEN_TTL", "168h")
	v.SetDefault("HTTP_ADDRESS", ":8080")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CLIENT_URL", "http://localhost:5173")
	v.SetDefault("ALLOW_CREDENTIALS", true)

	cfg := &Config{
		DatabaseURL:      v.GetString("DATABASE_URL"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		HTTPAddress:      v.GetString("HTTP_ADDRESS"),
		Environment:      v.GetString("ENVIRONMENT"),
		ClientURL:        v.GetString("CLIENT_URL"),
		CookieDomain:     v.GetString("COOKIE_DOMAIN"),
		AllowedOrigins:   v.GetStringSlice("ALLOWED_ORIGINS"),
		AllowCredentials: v.GetBool("ALLOW_CREDENTIALS"),
		RedisAddress:     v.GetString("REDIS_ADDRESS"),
		RedisPassword:    v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = []string{cfg.ClientURL}
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
