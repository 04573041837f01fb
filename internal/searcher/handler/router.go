package handler

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/middleware"
)

// RouterConfig collects the optional pieces of the HTTP surface; nil fields
// leave their routes or middleware out.
type RouterConfig struct {
	Checker        *health.Checker
	Stats          *analytics.Handler
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
}

func NewRouter(h *Handler, cfg RouterConfig) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestID, middleware.Deadline(cfg.RequestTimeout))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/query", h.Query).Methods(http.MethodGet)
	if cfg.Stats != nil {
		api.HandleFunc("/stats", cfg.Stats.Stats).Methods(http.MethodGet)
	}

	if cfg.Checker != nil {
		r.HandleFunc("/health/live", cfg.Checker.LiveHandler()).Methods(http.MethodGet)
		r.HandleFunc("/health/ready", cfg.Checker.ReadyHandler()).Methods(http.MethodGet)
	}
	return r
}
