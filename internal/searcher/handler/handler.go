// Package handler exposes query evaluation over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/query-engine/internal/searcher/resolver"
	apperrors "github.com/Adithya-Monish-Kumar-K/query-engine/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/query-engine/pkg/logger"
)

type Evaluator interface {
	Evaluate(ctx context.Context, line string) (*executor.Result, error)
}

// QueryResponse is the JSON body of GET /api/v1/query. Total counts every
// resolved hit; Results may be cut to the requested limit.
type QueryResponse struct {
	Query     string         `json:"query"`
	Total     int            `json:"total"`
	Results   []resolver.Hit `json:"results"`
	Groups    int            `json:"groups"`
	Discarded int            `json:"discarded_groups"`
}

type ErrorResponse struct {
	Error    string `json:"error"`
	Position *int   `json:"position,omitempty"`
	Token    string `json:"token,omitempty"`
}

type Handler struct {
	exec         Evaluator
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

// New returns a Handler. A zero defaultLimit returns every hit unless the
// caller asks for fewer; a zero maxResults disables the cap.
func New(exec Evaluator, defaultLimit, maxResults int) *Handler {
	return &Handler{
		exec:         exec,
		defaultLimit: defaultLimit,
		maxResults:   maxResults,
		logger:       slog.Default().With("component", "query-handler"),
	}
}

func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "query parameter 'q' is required"})
		return
	}

	limit := h.defaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 1 {
			h.writeError(w, http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}
	if h.maxResults > 0 && (limit == 0 || limit > h.maxResults) {
		limit = h.maxResults
	}

	res, err := h.exec.Evaluate(ctx, query)
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		body := ErrorResponse{Error: err.Error()}
		var qerr *apperrors.QueryError
		if errors.As(err, &qerr) {
			body.Error = qerr.Reason
			if qerr.Position >= 0 {
				pos := qerr.Position
				body.Position = &pos
				body.Token = qerr.Token
			}
		} else {
			log.Error("query failed", "query", query, "error", err)
			if status == http.StatusInternalServerError {
				body.Error = "query evaluation failed"
			}
		}
		h.writeError(w, status, body)
		return
	}

	hits := res.Hits
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	h.writeJSON(w, http.StatusOK, QueryResponse{
		Query:     res.Query,
		Total:     len(res.Hits),
		Results:   hits,
		Groups:    res.Groups,
		Discarded: res.Discarded,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, body ErrorResponse) {
	h.writeJSON(w, status, body)
}
