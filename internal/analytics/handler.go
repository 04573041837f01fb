package analytics

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
)

// Handler serves query statistics over HTTP.
type Handler struct {
	aggregator *Aggregator
	logger     *slog.Logger
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{
		aggregator: aggregator,
		logger:     slog.Default().With("component", "stats-handler"),
	}
}

// Stats answers GET /api/v1/stats?top=N. N limits the top and zero-result
// query lists and must lie in [1, MaxTop].
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	top := DefaultTop
	if raw := r.URL.Query().Get("top"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > MaxTop {
			h.write(w, http.StatusBadRequest, map[string]string{
				"error": "top must be an integer between 1 and " + strconv.Itoa(MaxTop),
			})
			return
		}
		top = n
	}
	h.write(w, http.StatusOK, h.aggregator.Stats(top))
}

func (h *Handler) write(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("writing stats response", "error", err)
	}
}
