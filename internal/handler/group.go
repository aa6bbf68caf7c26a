package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nhasan/journally/internal/auth"
	"github.com/nhasan/journally/internal/service"
)

// GroupHandler exposes circles over HTTP: create, join by code, list,
// leave, delete, and the daily leaderboard.
type GroupHandler struct {
	groups *service.GroupService
	logger *slog.Logger
}

// NewGroupHandler creates a GroupHandler.
func NewGroupHandler(groups *service.GroupService, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{groups: groups, logger: logger}
}

type createGroupRequest struct {
	Name string `json:"name"`
}

// HandleCreate makes a new circle owned by the caller.
//
// HTTP: POST /api/groups
func (h *GroupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.Create(r.Context(), userID, req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

type joinGroupRequest struct {
	Code string `json:"code"`
}

// HandleJoin adds the caller to the circle matching the join code.
// Rejoining an already-joined circle succeeds.
//
// HTTP: POST /api/groups/join
func (h *GroupHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req joinGroupRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	group, err := h.groups.Join(r.Context(), userID, req.Code)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

// HandleList returns the circles the caller belongs to.
//
// HTTP: GET /api/groups
func (h *GroupHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	groups, err := h.groups.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

// HandleLeave removes the caller from a circle.
//
// HTTP: POST /api/groups/{id}/leave
func (h *GroupHandler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.groups.Leave(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "left group"})
}

// HandleDelete removes a circle entirely. Owner only.
//
// HTTP: DELETE /api/groups/{id}
func (h *GroupHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	if err := h.groups.Delete(r.Context(), userID, id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "group deleted"})
}

// HandleMembers returns today's leaderboard for a circle the caller
// belongs to.
//
// HTTP: GET /api/groups/{id}/members
func (h *GroupHandler) HandleMembers(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	members, err := h.groups.Leaderboard(r.Context(), userID, id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}
