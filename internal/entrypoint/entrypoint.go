package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/openshelf/locallibrary/internal/auth"
	"github.com/openshelf/locallibrary/internal/config"
	"github.com/openshelf/locallibrary/internal/database"
	"github.com/openshelf/locallibrary/internal/database/instances"
	http_controllers "github.com/openshelf/locallibrary/internal/http"
	"github.com/openshelf/locallibrary/internal/scheduler"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until interrupted, then shuts down gracefully.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run wires the catalog together and serves it.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting Local Library v%s", version)

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Sessions back both authentication and the home page visit counter, so
	// the session manager exists in every auth mode.
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	authService := auth.NewService(db.DB, cfg.Auth)
	authMiddleware := auth.NewMiddleware(authService, sessionManager, cfg.Auth)

	// CSRF secret: configured, or generated per process
	var csrfSecret []byte
	if cfg.Auth.SessionSecret != "" {
		csrfSecret, err = hex.DecodeString(cfg.Auth.SessionSecret)
		if err != nil {
			// Not hex, use as raw bytes
			csrfSecret = []byte(cfg.Auth.SessionSecret)
		}
	} else {
		secret, err := auth.GenerateSessionSecret()
		if err != nil {
			log.Fatalf("Failed to generate CSRF secret: %v", err)
		}
		csrfSecret, _ = hex.DecodeString(secret)
		log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	}

	if cfg.Auth.Mode == config.AuthModeLocal {
		log.Printf("Authentication mode: local")
		hasUsers, _ := authService.HasUsers()
		if !hasUsers {
			log.Printf("No users found. Visit /setup to create an administrator account.")
		}
	} else {
		log.Printf("Authentication mode: none (no authentication required)")
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		TemplatesPath:  cfg.UI.TemplatesPath,
		StaticPath:     cfg.UI.StaticPath,
		Version:        version,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
	})

	// Start the overdue sweep if enabled
	var sweep *scheduler.OverdueSweep
	if cfg.OverdueSweep.Enabled {
		sweep = scheduler.NewOverdueSweep(instances.NewRepository(db.DB), cfg.OverdueSweep.Schedule)
		if err := sweep.Start(context.Background()); err != nil {
			log.Printf("WARNING: failed to start overdue sweep: %v", err)
		}
	}

	onShutdown := func(ctx context.Context) {
		if sweep != nil {
			sweep.Stop()
		}
	}

	Serve(router, cfg, onShutdown)
}
