package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Env    string `yaml:"env" validate:"oneof=development production"`
	Server struct {
		Port        string   `yaml:"port"`
		CORSOrigins []string `yaml:"cors_origins"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url" validate:"required"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		TTL      string `yaml:"ttl"`
	} `yaml:"redis"`
	Auth struct {
		JWTSecret string `yaml:"jwt_secret" validate:"required,min=16"`
		TokenTTL  string `yaml:"token_ttl"`
	} `yaml:"auth"`
	Quiz struct {
		PassScore    int   `yaml:"pass_score" validate:"min=0,max=100"`
		RewardTokens int64 `yaml:"reward_tokens" validate:"min=0"`
	} `yaml:"quiz"`
	Leaderboard struct {
		Size int    `yaml:"size" validate:"min=1,max=100"`
		TTL  string `yaml:"ttl"`
	} `yaml:"leaderboard"`
}

// Load reads YAML config from path, applies environment overrides for
// deploy-time secrets, fills defaults and validates the result.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Postgres.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	cfg.applyDefaults()

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Quiz.PassScore == 0 {
		c.Quiz.PassScore = 70
	}
	if c.Quiz.RewardTokens == 0 {
		c.Quiz.RewardTokens = 20
	}
	if c.Leaderboard.Size == 0 {
		c.Leaderboard.Size = 10
	}
}

// TTLDuration parses a duration string or returns the fallback if empty
// or malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}
