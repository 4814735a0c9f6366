// Package api exposes the hostel services over a JSON HTTP API
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/jakechorley/hostelhub/internal/config"
	"github.com/jakechorley/hostelhub/pkg/core/services"
	"github.com/jakechorley/hostelhub/pkg/db"
)

const (
	_defaultIdleTimeout    = time.Minute
	_defaultReadTimeout    = 5 * time.Second
	_defaultWriteTimeout   = 10 * time.Second
	_defaultShutdownPeriod = 30 * time.Second
)

// Server holds what the handlers need. Notifier may be nil.
type Server struct {
	database db.Database
	cfg      *config.Config
	logger   *zap.Logger
	notifier services.Notifier
}

func NewServer(database db.Database, cfg *config.Config, logger *zap.Logger, notifier services.Notifier) *Server {
	return &Server{
		database: database,
		cfg:      cfg,
		logger:   logger.Named("api"),
		notifier: notifier,
	}
}

// Routes builds the router
func (s *Server) Routes() http.Handler {
	mux := chi.NewRouter()

	mux.NotFound(s.notFound)
	mux.MethodNotAllowed(s.methodNotAllowed)

	mux.Use(s.traceID)
	mux.Use(s.logAccess)
	mux.Use(s.recoverPanic)

	mux.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", s.handleStatus)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Route("/shifts", func(r chi.Router) {
				r.Get("/", s.handleShiftHistory)
				r.Get("/active", s.handleActiveShift)
				r.Post("/start", s.handleStartShift)
				r.Post("/end", s.handleEndShift)
				r.With(s.requireAdmin).Post("/delete", s.handleDeleteShifts)
				r.With(s.requireAdmin).Delete("/{shiftId}", s.handleDeleteShift)
			})
			r.With(s.requireAdmin).Delete("/users/{userId}/shifts", s.handlePurgeShifts)

			r.Route("/summaries", func(r chi.Router) {
				r.Get("/me", s.handleMySummary)
				r.With(s.requireAdmin).Get("/", s.handleAllSummaries)
				r.With(s.requireAdmin).Post("/recompute", s.handleRecomputeSummaries)
			})

			r.Route("/schedule", func(r chi.Router) {
				r.Get("/", s.handleGetSchedule)
				r.Put("/{date}/{slot}/{volunteerId}", s.handleAssign)
				r.Delete("/{date}/{slot}/{volunteerId}", s.handleUnassign)
				r.With(s.requireAdmin).Delete("/{date}/{slot}", s.handleClearSlot)
			})

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Patch("/{taskId}/status", s.handleUpdateTaskStatus)
				r.Patch("/{taskId}/assignee", s.handleAssignTask)
				r.With(s.requireAdmin).Delete("/{taskId}", s.handleDeleteTask)
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", s.handleListEvents)
				r.Get("/{eventId}/occurrences", s.handleEventOccurrences)
				r.With(s.requireAdmin).Post("/", s.handleCreateEvent)
				r.With(s.requireAdmin).Post("/refresh", s.handleRefreshEvents)
				r.With(s.requireAdmin).Patch("/{eventId}/status", s.handleUpdateEventStatus)
				r.With(s.requireAdmin).Delete("/{eventId}", s.handleDeleteEvent)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Get("/", s.handleListMessages)
				r.Post("/", s.handleSendMessage)
				r.Post("/{messageId}/read", s.handleMarkMessageRead)
				r.Delete("/{messageId}", s.handleDeleteMessage)
			})

			r.Route("/laundry", func(r chi.Router) {
				r.Get("/", s.handleListLaundry)
				r.Post("/", s.handleBookLaundry)
				r.Delete("/{bookingId}", s.handleCancelLaundry)
			})
		})
	})

	s.logger.Debug("Routes configured", zap.Int("routes", len(mux.Routes())))

	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	readTimeout := s.cfg.Server.ReadTimeout
	if readTimeout == 0 {
		readTimeout = _defaultReadTimeout
	}
	writeTimeout := s.cfg.Server.WriteTimeout
	if writeTimeout == 0 {
		writeTimeout = _defaultWriteTimeout
	}

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Routes(),
		ErrorLog:     zap.NewStdLog(s.logger),
		IdleTimeout:  _defaultIdleTimeout,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), _defaultShutdownPeriod)
		defer cancel()

		shutdownErr <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info("Starting server", zap.String("addr", srv.Addr))

	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	if err := <-shutdownErr; err != nil {
		return err
	}

	s.logger.Info("Stopped server", zap.String("addr", srv.Addr))
	return nil
}
