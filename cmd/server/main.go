package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clsllc/landscaping-site/backend/internal/diagnostics"
	"github.com/clsllc/landscaping-site/backend/internal/gateway"
	"github.com/clsllc/landscaping-site/backend/internal/localstore"
	"github.com/clsllc/landscaping-site/backend/internal/router"
	"github.com/clsllc/landscaping-site/backend/internal/store"
	"github.com/clsllc/landscaping-site/backend/pkg/config"
	"github.com/clsllc/landscaping-site/backend/pkg/firebase"
	"github.com/clsllc/landscaping-site/backend/validators"
)

func main() {
	cfg := config.Load()
	logger := setupLogger(cfg.Env)
	slog.SetDefault(logger)

	diag := diagnostics.NewService(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A live backend is optional. Any failure here drops the whole session
	// into local mode instead of aborting startup.
	var fbApp *firebase.App
	var gw *gateway.Gateway
	var remote store.Remote
	if cfg.IsFirebaseConfigured() {
		app, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.FirebaseProjectID, cfg.FirebaseStorageBucket)
		if err != nil {
			logger.Warn("Firebase initialization failed, running in local mode", "error", err)
			diag.Log(diagnostics.LevelWarn, "Cloud backend unavailable, running in local mode", err)
		} else {
			fbApp = app
			gw = gateway.New(app, diag)
			remote = gw
			diag.Log(diagnostics.LevelSuccess, "Cloud backend connected")
		}
	} else {
		diag.Log(diagnostics.LevelInfo, "No cloud credentials configured, running in local mode")
	}
	if fbApp != nil {
		defer fbApp.Close()
	}

	local, err := localstore.OpenSQLite(cfg.LocalStorePath)
	var localStore localstore.Store = local
	if err != nil {
		logger.Warn("Local store unavailable, falling back to memory", "error", err)
		localStore = localstore.NewMemoryStore()
	} else {
		defer local.Close()
	}

	contentStore := store.NewContentStore(remote, localStore, diag)
	galleryStore := store.NewGalleryStore(remote, localStore, diag)
	communityStore := store.NewCommunityStore(remote, localStore, diag)

	contentStore.Start(ctx)
	galleryStore.Start(ctx)
	communityStore.Start(ctx)
	defer contentStore.Close()
	defer galleryStore.Close()
	defer communityStore.Close()

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, cfg.MetricsEnabled)
	router.SetupRoutes(e, gw, contentStore, galleryStore, communityStore, diag)

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := e.Start(":" + cfg.Port); err != nil {
			logger.Info("Server stopped", "reason", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", "error", err)
	}
}

// setupLogger picks a handler for the environment: JSON in production,
// human-readable text otherwise.
func setupLogger(env string) *slog.Logger {
	if env == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
