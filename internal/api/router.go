package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/hackgods/patient-portal-scheduling/internal/catalog"
	"github.com/hackgods/patient-portal-scheduling/internal/session"
)

type RouterConfig struct {
	Store          *session.Store
	Catalog        *catalog.Catalog
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	MetricsHandler http.Handler
	Logger         zerolog.Logger
	Env            string
	Version        string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)

	var pg Pinger
	if cfg.PgPool != nil {
		pg = cfg.PgPool
	}
	health := NewHealthHandler(pg, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Get("/catalog", catalogHandler(cfg.Catalog))

	r.Post("/sessions", createSessionHandler(cfg.Store))
	r.Route("/sessions/{sid}", func(r chi.Router) {
		r.Use(sessionMiddleware(cfg.Store))

		r.Delete("/", deleteSessionHandler(cfg.Store))

		r.Get("/appointments", listAppointmentsHandler)
		r.Get("/appointments/{id}", getAppointmentHandler)
		r.Post("/appointments/{id}/cancel", cancelAppointmentHandler)
		// Clinic-side transitions; the patient flow never calls these.
		r.Post("/appointments/{id}/confirm", confirmAppointmentHandler)
		r.Post("/appointments/{id}/complete", completeAppointmentHandler)

		r.Get("/form", getFormHandler)
		r.Patch("/form", changeFieldHandler)
		r.Delete("/form", resetFormHandler)
		r.Post("/form/submit", submitFormHandler)

		r.Get("/proposal", getProposalHandler)
		r.Post("/proposal", proposeHandler)
		r.Post("/proposal/confirm", confirmProposalHandler)
		r.Delete("/proposal", discardProposalHandler)

		r.Get("/notifications", notificationsHandler)
	})

	return r
}
