package handler

import (
	"log/slog"
	"net/http"

	"github.com/nhasan/journally/internal/auth"
	"github.com/nhasan/journally/internal/service"
)

// SummaryHandler serves the statistics view.
type SummaryHandler struct {
	summaries *service.SummaryService
	logger    *slog.Logger
}

// NewSummaryHandler creates a SummaryHandler.
func NewSummaryHandler(summaries *service.SummaryService, logger *slog.Logger) *SummaryHandler {
	return &SummaryHandler{summaries: summaries, logger: logger}
}

// HandleSummary returns the consistency rate, streak, and 30-day heatmap
// for one goal or for all of them.
//
// HTTP: GET /api/summary?goal=<id|all>
// Omitting the goal parameter means "all".
func (h *SummaryHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	scope := r.URL.Query().Get("goal")

	summary, err := h.summaries.Summary(r.Context(), userID, scope)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
