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
	logger "github.com/sirupsen/logrus"

	"tradejournal/src/auth"
	"tradejournal/src/handler"
	"tradejournal/src/repository"
)

func StartServer(port string) {
	// Router with middleware
	r := chi.NewRouter()

	// Public routes
	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		if _, err := w.Write([]byte("OK")); err != nil {
			logger.WithError(err).Error("/healthcheck error")
		}
	})

	r.Post("/api/auth/register", handler.DefaultRegisterHandler())
	r.Post("/api/auth/login", handler.DefaultLoginHandler())
	r.Get("/api/auth/google/callback", handler.DefaultGoogleCallbackHandler())

	// Everything below requires a bearer token.
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(auth.GetConfig(), repository.NewUserRepository()))

		r.Get("/api/users/me", handler.MeHandler())
		r.Put("/api/users/username", handler.DefaultUpdateUsernameHandler())

		r.Post("/api/entries", handler.DefaultCreateEntryHandler())
		r.Put("/api/entries/{id}", handler.DefaultUpdateEntryHandler())
		r.Delete("/api/entries/{id}", handler.DefaultDeleteEntryHandler())
		r.Get("/api/entries/date/{date}", handler.DefaultListEntriesByDateHandler())
		r.Get("/api/entries/month/{year}/{month}", handler.DefaultListEntriesByMonthHandler())

		r.Get("/api/trades/day/{date}", handler.DefaultGetDayHandler())
		r.Put("/api/trades/day/{date}/notes", handler.DefaultUpsertNotesHandler())
		r.Get("/api/trades/month/{year}/{month}", handler.DefaultListMonthDaysHandler())

		r.Get("/api/stats/day/{date}", handler.DefaultDayStatsHandler())
		r.Get("/api/stats/month/{year}/{month}", handler.DefaultMonthStatsHandler())
		r.Get("/api/stats/year/{year}", handler.DefaultYearStatsHandler())
		r.Get("/api/stats/overview", handler.DefaultOverviewStatsHandler())
	})

	// Graceful server
	addr := ":" + port
	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		logger.Infof("Listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server crashed")
		}
	}()

	// Shutdown on SIGINT or SIGTERM
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
