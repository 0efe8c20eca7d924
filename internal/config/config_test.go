package config

import (
	"log/slog"
	"testing"
	"time"
)

// setRequiredEnv sets the five required Discord vars to valid values.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DISCORD_BOT_TOKEN", "bot-token")
	t.Setenv("DISCORD_CLIENT_ID", "client-id")
	t.Setenv("DISCORD_CLIENT_SECRET", "client-secret")
	t.Setenv("DISCORD_REDIRECT_URI", "https://example.com/callback")
	t.Setenv("GUILD_ID", "1431317597147627550")
}

// --- Required vars ---

func TestLoadConfig_MissingRequired(t *testing.T) {
	required := []string{
		"DISCORD_BOT_TOKEN",
		"DISCORD_CLIENT_ID",
		"DISCORD_CLIENT_SECRET",
		"DISCORD_REDIRECT_URI",
		"GUILD_ID",
	}
	for _, name := range required {
		t.Run(name, func(t *testing.T) {
			setRequiredEnv(t)
			t.Setenv(name, "")
			if _, err := LoadConfig(); err == nil {
				t.Errorf("expected error when %s is missing", name)
			}
		})
	}
}

// --- Defaults ---

func TestLoadConfig_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}

	if cfg.Port != "3000" {
		t.Errorf("Port: expected 3000, got %q", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel: expected info, got %v", cfg.LogLevel)
	}
	if cfg.ClaimTTL != 10*time.Minute {
		t.Errorf("ClaimTTL: expected 10m, got %v", cfg.ClaimTTL)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Errorf("UpstreamTimeout: expected 10s, got %v", cfg.UpstreamTimeout)
	}
	if cfg.PresenceActivity != "Assigning Roles" {
		t.Errorf("PresenceActivity: expected %q, got %q", "Assigning Roles", cfg.PresenceActivity)
	}
	if cfg.FallbackURL != "" {
		t.Errorf("FallbackURL: expected empty, got %q", cfg.FallbackURL)
	}

	// Default role map carries all four groups.
	if len(cfg.RoleMap) != 4 {
		t.Fatalf("RoleMap: expected 4 entries, got %d", len(cfg.RoleMap))
	}
	if cfg.RoleMap["Group1"] != "1431317597147627550" {
		t.Errorf("RoleMap[Group1]: got %q", cfg.RoleMap["Group1"])
	}
}

// --- Overrides and validation ---

func TestLoadConfig_RoleMapOverride(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROLE_MAP", "vip=1431317597147627550,staff=1431317878266662912")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if len(cfg.RoleMap) != 2 {
		t.Fatalf("RoleMap: expected 2 entries, got %d", len(cfg.RoleMap))
	}
	if cfg.RoleMap["vip"] != "1431317597147627550" {
		t.Errorf("RoleMap[vip]: got %q", cfg.RoleMap["vip"])
	}
}

func TestLoadConfig_BadGuildID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("GUILD_ID", "not-a-snowflake")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for non-snowflake GUILD_ID")
	}
}

func TestLoadConfig_BadRedirectURI(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("DISCORD_REDIRECT_URI", "example.com/callback")
	if _, err := LoadConfig(); err == nil {
		t.Error("expected error for non-absolute redirect URI")
	}
}

func TestLoadConfig_LogLevel(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel: expected debug, got %v", cfg.LogLevel)
	}
}

func TestLoadConfig_NegativeClaimTTLDisablesExpiry(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("CLAIM_TTL", "-5m")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ClaimTTL != 0 {
		t.Errorf("ClaimTTL: expected 0, got %v", cfg.ClaimTTL)
	}
}
