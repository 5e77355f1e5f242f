package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dosewell/dosewell/internal/auth"
	"github.com/dosewell/dosewell/internal/config"
	"github.com/dosewell/dosewell/internal/database"
	"github.com/dosewell/dosewell/internal/email"
	"github.com/dosewell/dosewell/internal/logging"
	"github.com/dosewell/dosewell/internal/media"
	"github.com/dosewell/dosewell/internal/server"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if cfg.JWTSecret == "" {
		log.Fatal("DOSEWELL_JWT_SECRET must be set")
	}

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	var storage media.Storage
	if cfg.S3Bucket != "" {
		storage = media.NewS3(media.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			Bucket:    cfg.S3Bucket,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
		logger.Info("media storage", "backend", "s3", "bucket", cfg.S3Bucket)
	} else {
		storage = media.NewDisk(cfg.MediaDir)
		logger.Info("media storage", "backend", "disk", "dir", cfg.MediaDir)
	}

	mailer := email.NewClient(cfg.PostmarkToken, cfg.EmailFrom)
	if mailer.Configured() {
		logger.Info("email enabled", "from", cfg.EmailFrom)
	}

	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	srv := server.New(db, issuer, storage, cfg.UploadMaxSize, mailer, logger)

	// Periodic cleanup: expired revocation entries and stale rate limit
	// buckets.
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-cleanupCtx.Done():
				return
			case <-ticker.C:
				if n, err := srv.TokenStore().DeleteExpired(time.Now().UTC()); err != nil {
					logger.Error("token cleanup", "error", err)
				} else if n > 0 {
					logger.Debug("token cleanup", "removed", n)
				}
				srv.RateLimiter().Cleanup()
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("Dosewell running at http://localhost:%s\n", cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("shutdown error: %v", err)
	}
}
