package main

import (
	"net/http"
	"os"
	"time"

	"program-monitoring-api/internal/adapters/auth/gestor"
	"program-monitoring-api/internal/platform/logger"
	"program-monitoring-api/internal/ports/auth"
	"program-monitoring-api/internal/router"
)

func main() {
	lg := logger.NewFromEnv()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	// Sin GESTOR_BASE_URL el verifier queda nil y el middleware corre en modo dev
	// (X-Debug-User-ID).
	var verifier auth.AuthVerifier
	if baseURL := os.Getenv("GESTOR_BASE_URL"); baseURL != "" {
		client, err := gestor.NewClient(gestor.Config{
			BaseURL: baseURL,
			APIKey:  os.Getenv("GESTOR_API_KEY"),
		})
		if err != nil {
			lg.Error("gestor client config", map[string]any{"err": err.Error()})
			os.Exit(1)
		}
		verifier = gestor.NewVerifier(client)
	}

	r := router.NewRouter(router.Options{AuthVerifier: verifier})

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	lg.Info("starting server", map[string]any{"addr": addr})
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		lg.Error("server error", map[string]any{"err": err.Error()})
		os.Exit(1)
	}
}
