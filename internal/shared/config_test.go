package shared

import (
	"testing"
	"time"
)

func TestValidate_RequiresJWTSecretOutsideDev(t *testing.T) {
	if err := (Config{AppEnv: "prod"}).validate(); err == nil {
		t.Fatal("prod without JWT_SECRET must be rejected")
	}
	if err := (Config{AppEnv: "staging"}).validate(); err == nil {
		t.Fatal("staging without JWT_SECRET must be rejected")
	}
	if err := (Config{AppEnv: "dev"}).validate(); err != nil {
		t.Fatalf("dev without JWT_SECRET: %v", err)
	}
	if err := (Config{AppEnv: "prod", JWTSecret: "k"}).validate(); err != nil {
		t.Fatalf("prod with JWT_SECRET: %v", err)
	}
}

func TestLoad_ReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("TOKEN_TTL_HOURS", "2")
	t.Setenv("CACHE_TTL_SECONDS", "30")

	c := Load()
	if c.AppEnv != "dev" || c.HTTPAddr != ":9999" {
		t.Fatalf("unexpected config: %+v", c)
	}
	if c.TokenTTL != 2*time.Hour || c.CacheTTL != 30*time.Second {
		t.Fatalf("unexpected TTLs: token=%v cache=%v", c.TokenTTL, c.CacheTTL)
	}
}
