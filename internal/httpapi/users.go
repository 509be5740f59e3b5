package httpapi

import (
	"log"
	"net/http"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

type updateUserRequest struct {
	FullName *string `json:"full_name"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
	TeamID   *string `json:"team_id"`
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAction(w, r, access.ActionListUsers); !ok {
		return
	}
	skip, limit, ok := readPage(r)
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "skip must be >= 0 and limit between 1 and 1000")
		return
	}
	users, err := h.store.ListUsers(r.Context(), skip, limit)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *Handler) handleUserActions(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/users")
	requestID := requestIDFromRequest(r)

	if len(parts) == 3 && parts[0] == "teams" && parts[2] == "members" {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleTeamMembers(w, r, parts[1])
		return
	}
	if len(parts) != 1 {
		writeError(w, requestID, http.StatusNotFound, "not_found", "route not found")
		return
	}
	userID := parts[0]
	if !isValidUUID(userID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "user_id must be a UUID")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGetUser(w, r, userID)
	case http.MethodPut:
		h.handleUpdateUser(w, r, userID)
	case http.MethodDelete:
		h.handleDeleteUser(w, r, userID)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request, userID string) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	if caller.UserID != userID && !access.Allowed(caller.Role, access.ActionViewAnyUser) {
		writeStoreError(w, r, store.ErrAccessDenied)
		return
	}
	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleUpdateUser(w http.ResponseWriter, r *http.Request, userID string) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)
	isAdmin := access.Allowed(caller.Role, access.ActionUpdateAnyUser)
	if caller.UserID != userID && !isAdmin {
		writeStoreError(w, r, store.ErrAccessDenied)
		return
	}

	var req updateUserRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.FullName = trimmedPtr(req.FullName)
	req.Role = trimmedPtr(req.Role)
	req.TeamID = trimmedPtr(req.TeamID)
	if (req.Role != nil || req.IsActive != nil || req.TeamID != nil) && !isAdmin {
		writeError(w, requestID, http.StatusForbidden, "access_denied", "only administrators can change role, team or active flag")
		return
	}
	if req.FullName != nil && *req.FullName == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "full_name must not be empty")
		return
	}
	if req.Role != nil && !models.ValidRole(*req.Role) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "role is not valid")
		return
	}
	if req.TeamID != nil && *req.TeamID != "" && !isValidUUID(*req.TeamID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "team_id must be a UUID")
		return
	}

	user, err := h.store.UpdateUser(r.Context(), store.UpdateUserInput{
		UserID:   userID,
		FullName: req.FullName,
		Role:     req.Role,
		IsActive: req.IsActive,
		TeamID:   req.TeamID,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request, userID string) {
	caller, ok := requireAction(w, r, access.ActionDeleteUser)
	if !ok {
		return
	}
	if caller.UserID == userID {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "cannot delete your own account")
		return
	}
	if err := h.store.DeleteUser(r.Context(), userID); err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Printf("user deleted user_id=%s actor_id=%s", userID, caller.UserID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "User deleted successfully"})
}

func (h *Handler) handleTeamMembers(w http.ResponseWriter, r *http.Request, teamID string) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}
	teamID = strings.TrimSpace(teamID)
	if !isValidUUID(teamID) {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "team_id must be a UUID")
		return
	}
	team, err := h.store.GetTeam(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	allowed := caller.Role == models.RoleAdmin ||
		caller.Team() == team.TeamID ||
		(team.ManagerID != nil && *team.ManagerID == caller.UserID)
	if !allowed {
		writeStoreError(w, r, store.ErrAccessDenied)
		return
	}
	members, err := h.store.ListTeamMembers(r.Context(), teamID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, members)
}
