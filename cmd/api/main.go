package main

import (
	"net/http"
	"os"
	"time"

	"petcare-backend/internal/adapters/auth/identity"
	"petcare-backend/internal/config"
	"petcare-backend/internal/platform/logger"
	"petcare-backend/internal/ports/auth"
	"petcare-backend/internal/router"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		bootLog := logger.NewFromEnv()
		bootLog.Fatal().Err(err).Msg("invalid config")
	}

	log := logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		App:    "petcare-api",
	})

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timezone")
	}

	// Sin IDENTITY_BASE_URL corre en modo dev con headers X-Debug-*.
	var verifier auth.AuthVerifier
	if base := os.Getenv("IDENTITY_BASE_URL"); base != "" {
		client, err := identity.NewClient(identity.Config{
			BaseURL: base,
			APIKey:  os.Getenv("IDENTITY_API_KEY"),
		})
		if err != nil {
			log.Fatal().Err(err).Msg("identity client")
		}
		verifier = identity.NewVerifier(client)
		log.Info().Str("base_url", base).Msg("identity verifier enabled")
	} else {
		log.Warn().Msg("no identity verifier configured, running in dev mode")
	}

	r, err := router.NewRouter(router.Options{
		Config:       cfg,
		AuthVerifier: verifier,
		Location:     loc,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("router setup")
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", cfg.Addr).Msg("starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server error")
	}
}
