// config.go

// Environment variable loading and validation.
package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all env configuration vars for the role-claim service.
// Discord credentials and the guild ID are required; everything else has
// a sensible default. The bot token carries guild-wide privilege and must
// never appear in logs or responses.
type Config struct {
	BotToken     string `env:"DISCORD_BOT_TOKEN,required,notEmpty"`
	ClientID     string `env:"DISCORD_CLIENT_ID,required,notEmpty"`
	ClientSecret string `env:"DISCORD_CLIENT_SECRET,required,notEmpty"`

	// RedirectURI must byte-for-byte match the callback URI registered
	// with Discord; a mismatch makes every token exchange fail with
	// invalid_grant.
	RedirectURI string `env:"DISCORD_REDIRECT_URI,required,notEmpty"`

	GuildID string `env:"GUILD_ID,required,notEmpty"`

	Port     string     `env:"PORT" envDefault:"3000"`
	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`

	// RoleMap maps short role names to Discord role snowflakes.
	// Names are case-sensitive exactly as submitted on /claim.
	RoleMap map[string]string `env:"ROLE_MAP" envSeparator:"," envKeyValSeparator:"=" envDefault:"Group1=1431317597147627550,Group2=1431317878266662912,Group3=1431573059017642016,Group4=1431573136150892645"`

	// ClaimTTL bounds how long an unconsumed claim session stays valid.
	// 0 disables expiry.
	ClaimTTL time.Duration `env:"CLAIM_TTL" envDefault:"10m"`

	// UpstreamTimeout applies per Discord API call (token exchange,
	// identity fetch, role grant).
	UpstreamTimeout time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"10s"`

	// FallbackURL, when set, replaces inline error pages with a redirect.
	FallbackURL string `env:"FALLBACK_URL"`

	PresenceActivity string `env:"PRESENCE_ACTIVITY" envDefault:"Assigning Roles"`
}

// LoadConfig reads environment variables and returns a validated Config.
// Returns an error if any required Discord credential is missing, so a
// misconfigured deployment fails at startup rather than on the first
// callback.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if !isSnowflake(cfg.GuildID) {
		return nil, fmt.Errorf("GUILD_ID must be a Discord snowflake, got %q", cfg.GuildID)
	}

	u, err := url.Parse(cfg.RedirectURI)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("DISCORD_REDIRECT_URI must be an absolute http(s) URL, got %q", cfg.RedirectURI)
	}

	if len(cfg.RoleMap) == 0 {
		return nil, fmt.Errorf("ROLE_MAP must contain at least one role")
	}

	if cfg.ClaimTTL < 0 {
		slog.Warn("negative CLAIM_TTL, disabling expiry", "value", cfg.ClaimTTL)
		cfg.ClaimTTL = 0
	}
	if cfg.UpstreamTimeout <= 0 {
		return nil, fmt.Errorf("UPSTREAM_TIMEOUT must be positive, got %v", cfg.UpstreamTimeout)
	}

	return cfg, nil
}

// isSnowflake reports whether s looks like a Discord snowflake ID
// (decimal digits only, 64-bit scale).
func isSnowflake(s string) bool {
	if len(s) < 5 || len(s) > 20 {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
