package main

import (
	"net/http"
	"os"
	"time"

	"cat-registry/internal/adapters/identity/authsvc"
	"cat-registry/internal/adapters/storage/postgres"
	"cat-registry/internal/config"
	"cat-registry/internal/platform/logger"
	"cat-registry/internal/platform/metrics"
	"cat-registry/internal/ports/auth"
	"cat-registry/internal/router"

	"github.com/joho/godotenv"
)

func main() {
	// .env es opcional; en deploy la config viene del ambiente.
	_ = godotenv.Load()

	cfg := config.FromEnv()

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	idClient, err := authsvc.NewClient(authsvc.Config{
		BaseURL: cfg.AuthBaseURL,
		Timeout: cfg.AuthTimeout,
	})
	if err != nil {
		log.Error("auth service client", map[string]any{"error": err.Error()})
		os.Exit(1)
	}

	var verifier auth.AuthVerifier
	if cfg.VerifyTokens {
		verifier = authsvc.NewVerifier(idClient)
	} else {
		log.Warn("token verification disabled, using debug headers", nil)
	}

	opts := router.Options{
		AuthVerifier: verifier,
		Identity:     idClient,
		Logger:       log,
		Metrics:      metrics.New(cfg.AppName),
	}

	if cfg.DBDSN != "" {
		db, err := postgres.Open(cfg.DBDSN)
		if err != nil {
			log.Error("postgres open", map[string]any{"error": err.Error()})
			os.Exit(1)
		}
		defer db.Close()
		opts.DB = db
	} else {
		log.Warn("no DB_DSN, using in-memory storage", nil)
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router.NewRouter(opts),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	log.Info("starting server", map[string]any{"addr": cfg.Addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
}
