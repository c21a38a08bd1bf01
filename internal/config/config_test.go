package config

import "testing"

func TestLoadRequiresToken(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error without token")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")
	t.Setenv("DISCORD_TOKEN", "token")
	t.Setenv("OWNER", "123456")
	t.Setenv("DATA_DIR", "/tmp/aurora")
	t.Setenv("GUARD_MIN_ACCOUNT_AGE_DAYS", "3")
	t.Setenv("SERVER_ENABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Owner != "123456" {
		t.Fatalf("owner = %q", cfg.Owner)
	}
	if cfg.DataDir != "/tmp/aurora" {
		t.Fatalf("data dir = %q", cfg.DataDir)
	}
	if cfg.Guard.MinAccountAgeDays != 3 {
		t.Fatalf("guard age = %d", cfg.Guard.MinAccountAgeDays)
	}
	if !cfg.Server.Enabled {
		t.Fatalf("server should be enabled")
	}
}

func TestDefaults(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.AnnounceChannelName == "" {
		t.Fatalf("announce channel name should have a default")
	}
	if cfg.Guard.MinAccountAgeDays != 7 {
		t.Fatalf("guard age default = %d", cfg.Guard.MinAccountAgeDays)
	}
}
