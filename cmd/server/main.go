package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/sessions"

	"github.com/alextreichler/spiritflow/internal/config"
	"github.com/alextreichler/spiritflow/internal/handlers"
	"github.com/alextreichler/spiritflow/internal/lifecycle"
	"github.com/alextreichler/spiritflow/internal/media"
	"github.com/alextreichler/spiritflow/internal/store"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Using TextHandler for console readability
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Durable storage
	backend, err := store.OpenBackend(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage backend", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer backend.Close()

	policy := lifecycle.Permissive
	if cfg.StrictTransitions {
		policy = lifecycle.Strict
	}
	st := store.Open(ctx, backend,
		store.WithKeyPrefix(cfg.KeyPrefix),
		store.WithTransitionPolicy(policy),
	)

	// 3. Product images
	disk, err := media.Open(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open media disk", "driver", cfg.MediaDriver, "error", err)
		os.Exit(1)
	}
	var uploads http.Handler
	if local, ok := disk.(*media.LocalDisk); ok {
		uploads = http.StripPrefix("/uploads", http.FileServer(http.Dir(local.Root())))
	}

	// 4. Session Setup
	sessionStore := sessions.NewCookieStore(cfg.SessionKey)
	sessionStore.Options.HttpOnly = true
	sessionStore.Options.Secure = cfg.CookieSecure
	sessionStore.Options.SameSite = http.SameSiteLaxMode
	sessionStore.Options.Path = "/"
	if cfg.CookieDomain != "" {
		sessionStore.Options.Domain = cfg.CookieDomain
	}

	// 5. Init Templates
	templates := handlers.NewTemplateCache()
	if err := templates.Load(); err != nil {
		slog.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}

	// 6. Setup Handlers
	mux := handlers.NewMux(handlers.Routes{
		Storefront: &handlers.StorefrontHandler{
			Store:        st,
			Templates:    templates,
			PaymentDelay: cfg.PaymentDelay,
			RateLimiter:  handlers.NewRateLimiter(ctx, cfg.RateLimitWindow),
		},
		Admin: &handlers.AdminHandler{
			Store: st,
			Media: disk,
		},
		AgeGate: &handlers.AgeGate{SessionStore: sessionStore},
		Uploads: uploads,
	})

	// 7. Middleware Setup
	CSRF := csrf.Protect(
		cfg.CSRFKey,
		csrf.Secure(cfg.CookieSecure),
		csrf.Path("/"),
		// Trust local development origins
		csrf.TrustedOrigins([]string{"localhost:" + cfg.Port, "127.0.0.1:" + cfg.Port, "localhost", "127.0.0.1"}),
	)

	// Chain: Logger -> Security Headers -> CSRF -> Route label -> Mux
	handler := handlers.LoggingMiddleware(
		handlers.SecurityHeadersMiddleware(
			CSRF(handlers.RouteMiddleware(mux)),
		),
	)

	// 8. Start Server with Graceful Shutdown
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port, "storage", cfg.StorageDriver, "media", cfg.MediaDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to listen and serve", "error", err)
			os.Exit(1)
		}
	}()

	// Block until a signal is received
	<-ctx.Done()

	slog.Info("Shutting down server gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server shutdown failed", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited gracefully.")
}
