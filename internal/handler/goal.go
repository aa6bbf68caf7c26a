package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nhasan/journally/internal/auth"
	"github.com/nhasan/journally/internal/service"
)

// GoalHandler exposes the habit lifecycle over HTTP. Every route here sits
// behind RequireAuth, so the userID is always in the request context.
type GoalHandler struct {
	goals  *service.GoalService
	logger *slog.Logger
}

// NewGoalHandler creates a GoalHandler.
func NewGoalHandler(goals *service.GoalService, logger *slog.Logger) *GoalHandler {
	return &GoalHandler{goals: goals, logger: logger}
}

type goalRequest struct {
	Title string `json:"title"`
}

// HandleCreate adds a new habit.
//
// HTTP: POST /api/goals
func (h *GoalHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	goal, err := h.goals.Create(r.Context(), userID, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, goal)
}

// HandleList returns the user's active habits — the daily checklist.
//
// HTTP: GET /api/goals
func (h *GoalHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	goals, err := h.goals.ListActive(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// HandleHistory returns every habit including archived ones.
//
// HTTP: GET /api/goals/history
func (h *GoalHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	goals, err := h.goals.ListAll(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// HandleUpdate renames a habit.
//
// HTTP: PUT /api/goals/{id}
func (h *GoalHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	goal, err := h.goals.Rename(r.Context(), userID, id, req.Title)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// HandleArchive soft-deletes a habit; its history survives and it can be
// restored.
//
// HTTP: DELETE /api/goals/{id}
func (h *GoalHandler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.goals.Archive(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "goal archived"})
}

// HandleRestore brings an archived habit back.
//
// HTTP: POST /api/goals/{id}/restore
func (h *GoalHandler) HandleRestore(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	goal, err := h.goals.Restore(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

// HandlePurge permanently deletes a habit and its completion history.
//
// HTTP: DELETE /api/goals/{id}/permanent
func (h *GoalHandler) HandlePurge(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.goals.Purge(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "goal permanently deleted"})
}

type toggleRequest struct {
	Date string `json:"date"`
}

type toggleResponse struct {
	Status string `json:"status"`
}

// HandleToggle flips the completion mark for a habit on a date and reports
// the resulting state ("checked" or "unchecked").
//
// HTTP: POST /api/goals/{id}/toggle
func (h *GoalHandler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var req toggleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	status, err := h.goals.Toggle(r.Context(), userID, id, req.Date)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toggleResponse{Status: status})
}

// HandleListLogs returns all of the user's completion marks, for clients
// that render their own calendars.
//
// HTTP: GET /api/logs
func (h *GoalHandler) HandleListLogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	logs, err := h.goals.ListLogs(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, logs)
}
