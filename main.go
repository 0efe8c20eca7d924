package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rolegate/rolegate/internal/config"
	"github.com/rolegate/rolegate/internal/discord"
	"github.com/rolegate/rolegate/internal/grant"
	"github.com/rolegate/rolegate/internal/obs"
	"github.com/rolegate/rolegate/internal/roles"
	"github.com/rolegate/rolegate/internal/session"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func main() {
	// Load config first so we can set log level
	cfg, err := config.LoadConfig()
	if err != nil {
		// Fallback logger before config is available
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}

	// Include source location in log entries at debug level only.
	addSrc := cfg.LogLevel == slog.LevelDebug

	// Set up slog to output as json with configured level
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     cfg.LogLevel,
		AddSource: addSrc,
	})))

	// Cancel ctx on SIGINT/SIGTERM; run() shuts down when ctx is done.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// run() is a separate func so deferred cleanup always executes before os.Exit.
	if err := run(ctx, cfg, nil); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

// run holds all server logic and returns error instead of calling os.Exit,
// so deferred resource cleanup always runs. Shuts down when ctx is
// cancelled (signal handling is the caller's concern).
// If ready is non-nil, the server's base URL is sent on it once the
// listener is bound.
func run(ctx context.Context, cfg *config.Config, ready chan<- string) error {
	registry, err := roles.New(cfg.RoleMap)
	if err != nil {
		return fmt.Errorf("building role registry: %w", err)
	}
	slog.Info("role registry loaded", "roles", strings.Join(registry.Names(), ","))

	sessions := session.NewStore(cfg.ClaimTTL)
	provider := discord.NewOAuthProvider(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)

	bot, err := discord.NewBot(cfg.BotToken, cfg.GuildID, cfg.PresenceActivity)
	if err != nil {
		return fmt.Errorf("creating discord bot: %w", err)
	}

	h := &grant.Handler{
		Sessions:        sessions,
		Roles:           registry,
		Provider:        provider,
		Granter:         bot,
		UpstreamTimeout: cfg.UpstreamTimeout,
		FallbackURL:     cfg.FallbackURL,
	}

	// Bind listener; ":0" picks a free port (useful in tests).
	ln, err := net.Listen("tcp", ":"+cfg.Port)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	server := &http.Server{Handler: buildRouter(h)}

	// Presence task is independent of HTTP serving: a gateway failure
	// logs and returns without touching the request path.
	presenceCtx, cancelPresence := context.WithCancel(ctx)
	defer cancelPresence()
	go bot.RunPresence(presenceCtx)

	// Claim session sweeper; drops expired entries every minute so
	// abandoned claim links don't accumulate. Skipped when expiry is off.
	if cfg.ClaimTTL > 0 {
		sweepCtx, cancelSweep := context.WithCancel(ctx)
		defer cancelSweep()
		go func() {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if n := sessions.Sweep(); n > 0 {
						slog.Info("claim session sweep complete", "deleted", n)
					}
				case <-sweepCtx.Done():
					return
				}
			}
		}()
	}

	// Start server in a goroutine; run() continues past this.
	errCh := make(chan error, 1)
	go func() {
		slog.Info("rolegate listening", "addr", ln.Addr().String())
		// Send error only if server stops for a reason other than explicit shutdown.
		if err := server.Serve(ln); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Signal readiness to caller (used by tests; nil in production).
	if ready != nil {
		ready <- "http://" + ln.Addr().String()
	}

	// Wait for server error or shutdown signal from ctx.
	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// buildRouter wires all routes and middleware.
// Called from run() and smoke tests.
func buildRouter(h *grant.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(obs.Instrument)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", obs.Handler())

	r.Get("/claim", h.HandleClaim)
	r.Get("/callback", h.HandleCallback)

	return r
}
