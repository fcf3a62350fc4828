// Package main runs the SOPHIE GraphQL mock on a real port so the CLI and
// API server can be pointed at it without the production backend.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"sophie-analyst/e2e/mocks"
	"sophie-analyst/observability"
)

func main() {
	if err := godotenv.Load(); err != nil {
		observability.Debug("no .env file found, using environment variables")
	}
	observability.InitLogger(false)

	port := os.Getenv("MOCK_BACKEND_PORT")
	if port == "" {
		port = "4000"
	}

	backend := mocks.NewGraphQLHandler(mocks.DefaultFixtures())
	if token := os.Getenv("MOCK_BACKEND_TOKEN"); token != "" {
		backend.RequireToken(token)
		observability.Info("requiring bearer token")
	}
	if raw := os.Getenv("MOCK_BACKEND_FAIL_FIRST"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			observability.Fatal("MOCK_BACKEND_FAIL_FIRST must be a non-negative integer", "value", raw)
		}
		backend.FailNext(n, http.StatusServiceUnavailable)
		observability.Info("failing first requests", "count", n)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Handle("/graphql", backend)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		observability.Info("starting mock backend", "url", fmt.Sprintf("http://localhost:%s/graphql", port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			observability.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down mock backend...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Fatal("server forced to shutdown", "error", err)
	}
	observability.Info("mock backend stopped")
}
