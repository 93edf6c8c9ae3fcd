package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	logger "github.com/sirupsen/logrus"

	"wheelhouse/src/auth"
	"wheelhouse/src/handler"
)

func newRouter(config *Config) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   config.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}))

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	authConfig := auth.GetConfig()
	verifier := auth.NewVerifier(authConfig.JWTSecret, authConfig.JWTAudience)

	listAccounts, createAccount, updateAccount := handler.DefaultAccountHandlers()
	listPositions, createPosition, updatePosition, closePosition, rollPosition := handler.DefaultPositionHandlers()
	dashboardSummary, dashboardByTicker := handler.DefaultDashboardHandlers()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(verifier))

		r.Route("/accounts", func(r chi.Router) {
			r.Get("/", listAccounts)
			r.Post("/", createAccount)
			r.Patch("/{accountID}", updateAccount)
		})

		r.Route("/positions", func(r chi.Router) {
			r.Get("/", listPositions)
			r.Post("/", createPosition)
			r.Patch("/{positionID}", updatePosition)
			r.Post("/{positionID}/close", closePosition)
			r.Post("/{positionID}/roll", rollPosition)
		})

		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/summary", dashboardSummary)
			r.Get("/by-ticker", dashboardByTicker)
		})

		r.Get("/prices", handler.DefaultPricesHandler())
		r.Get("/export/positions.csv", handler.DefaultExportHandler())
	})

	return r
}

// StartServer runs the HTTP server until SIGINT or SIGTERM, then shuts
// down gracefully.
func StartServer(port string) {
	config := GetConfig()
	if port == "" {
		port = config.Port
	}

	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: newRouter(config),
	}

	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Shutdown error")
	}
}
