package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnvOverrides(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("REDIS_PASSWORD", "")
	t.Setenv("JWT_SECRET", "")
}

func TestLoadAppliesDefaults(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, `
postgres:
  url: postgres://localhost:5432/reads
auth:
  jwt_secret: 0123456789abcdef0123456789abcdef
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected development default, got %q", cfg.Env)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("expected default port, got %q", cfg.Server.Port)
	}
	if cfg.Quiz.PassScore != 70 || cfg.Quiz.RewardTokens != 20 {
		t.Fatalf("expected quiz defaults, got %+v", cfg.Quiz)
	}
	if cfg.Leaderboard.Size != 10 {
		t.Fatalf("expected leaderboard default, got %d", cfg.Leaderboard.Size)
	}
}

func TestLoadKeepsExplicitValues(t *testing.T) {
	clearEnvOverrides(t)
	path := writeConfig(t, `
env: production
server:
  port: "9000"
  cors_origins:
    - https://app.example.com
postgres:
  url: postgres://db:5432/reads
redis:
  addr: cache:6379
  ttl: 5m
auth:
  jwt_secret: 0123456789abcdef0123456789abcdef
  token_ttl: 12h
quiz:
  pass_score: 80
  reward_tokens: 5
leaderboard:
  size: 25
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "production" || cfg.Server.Port != "9000" {
		t.Fatalf("unexpected server config %+v", cfg.Server)
	}
	if len(cfg.Server.CORSOrigins) != 1 {
		t.Fatalf("expected cors origin, got %v", cfg.Server.CORSOrigins)
	}
	if cfg.Quiz.PassScore != 80 || cfg.Quiz.RewardTokens != 5 {
		t.Fatalf("unexpected quiz config %+v", cfg.Quiz)
	}
	if cfg.Leaderboard.Size != 25 {
		t.Fatalf("unexpected leaderboard size %d", cfg.Leaderboard.Size)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnvOverrides(t)
	t.Setenv("DATABASE_URL", "postgres://override:5432/reads")
	t.Setenv("JWT_SECRET", "override-secret-0123456789abcdef")
	t.Setenv("REDIS_ADDR", "override:6379")

	path := writeConfig(t, `
postgres:
  url: postgres://file:5432/reads
auth:
  jwt_secret: file-secret-0123456789abcdef
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Postgres.URL != "postgres://override:5432/reads" {
		t.Fatalf("expected env override, got %q", cfg.Postgres.URL)
	}
	if cfg.Auth.JWTSecret != "override-secret-0123456789abcdef" {
		t.Fatalf("expected env override, got %q", cfg.Auth.JWTSecret)
	}
	if cfg.Redis.Addr != "override:6379" {
		t.Fatalf("expected env override, got %q", cfg.Redis.Addr)
	}
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	clearEnvOverrides(t)

	cases := []struct {
		name string
		body string
	}{
		{
			name: "missing postgres url",
			body: "auth:\n  jwt_secret: 0123456789abcdef0123456789abcdef\n",
		},
		{
			name: "short jwt secret",
			body: "postgres:\n  url: postgres://db/reads\nauth:\n  jwt_secret: short\n",
		},
		{
			name: "unknown env",
			body: "env: staging\npostgres:\n  url: postgres://db/reads\nauth:\n  jwt_secret: 0123456789abcdef0123456789abcdef\n",
		},
		{
			name: "pass score out of range",
			body: "postgres:\n  url: postgres://db/reads\nauth:\n  jwt_secret: 0123456789abcdef0123456789abcdef\nquiz:\n  pass_score: 150\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tc.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", 2*time.Minute); got != 2*time.Minute {
		t.Fatalf("expected fallback, got %v", got)
	}
	if got := TTLDuration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("expected parsed value, got %v", got)
	}
	if got := TTLDuration("garbage", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for junk, got %v", got)
	}
}
