// bot.go -- Privileged bot: role grants over REST, presence over the gateway.
//
// The bot token has guild-wide privilege -- a different trust level from
// the per-user access tokens the provider handles. It is passed to
// discordgo once at construction and never logged or echoed to clients.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// Bot wraps a discordgo session authenticated with the bot credential.
type Bot struct {
	session  *discordgo.Session
	guildID  string
	activity string
}

// NewBot creates the session. No network I/O happens here; REST calls
// authenticate per-request and the gateway connects in RunPresence.
func NewBot(token, guildID, activity string) (*Bot, error) {
	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds
	return &Bot{session: s, guildID: guildID, activity: activity}, nil
}

// GrantRole attaches roleID to the guild member userID using the bot
// credential. Single-shot: the caller decides what a failure means.
func (b *Bot) GrantRole(ctx context.Context, userID, roleID string) error {
	if err := b.session.GuildMemberRoleAdd(b.guildID, userID, roleID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("adding role %s to member %s: %w", roleID, userID, err)
	}
	return nil
}

// RunPresence opens the gateway connection and sets the bot's activity so
// the service shows as online. Cosmetic only: a failed connection logs a
// warning and returns -- role grants go over REST and keep working.
// Blocks until ctx is cancelled; run it in its own goroutine.
func (b *Bot) RunPresence(ctx context.Context) {
	b.session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		slog.Info("discord gateway ready", "bot", r.User.Username)
		if err := s.UpdateGameStatus(0, b.activity); err != nil {
			slog.Warn("failed to set presence", "error", err)
		}
	})

	if err := b.session.Open(); err != nil {
		slog.Warn("discord gateway connect failed, presence disabled", "error", err)
		return
	}

	<-ctx.Done()
	if err := b.session.Close(); err != nil {
		slog.Warn("closing discord gateway", "error", err)
	}
}
