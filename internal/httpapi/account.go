package httpapi

import (
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/auth"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

type registerRequest struct {
	Email    string  `json:"email"`
	FullName string  `json:"full_name"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	IsActive *bool   `json:"is_active"`
	TeamID   *string `json:"team_id"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	requestID := requestIDFromRequest(r)

	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FullName = strings.TrimSpace(req.FullName)
	req.Role = strings.TrimSpace(req.Role)
	if req.Role == "" {
		req.Role = models.RoleCustomer
	}

	if req.Email == "" || req.FullName == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "email and full_name are required")
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "email is not valid")
		return
	}
	if err := auth.ValidatePassword(req.Password); err != nil {
		writeStoreError(w, r, err)
		return
	}
	if !models.ValidRole(req.Role) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "role is not valid")
		return
	}
	teamID := ""
	if req.TeamID != nil {
		teamID = strings.TrimSpace(*req.TeamID)
		if teamID != "" && !isValidUUID(teamID) {
			writeError(w, requestID, http.StatusBadRequest, "invalid_request", "team_id must be a UUID")
			return
		}
	}

	// Staff accounts can only be created by an administrator.
	if req.Role != models.RoleCustomer {
		info, err := h.authenticate(r.Context(), bearerToken(r.Header.Get("Authorization")))
		if err != nil || info.User.Role != models.RoleAdmin {
			writeError(w, requestID, http.StatusForbidden, "access_denied", "only administrators can create staff accounts")
			return
		}
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	user, err := h.store.CreateUser(r.Context(), store.CreateUserInput{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
		Role:     req.Role,
		IsActive: active,
		TeamID:   teamID,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Printf("user registered user_id=%s role=%s", user.UserID, user.Role)
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	requestID := requestIDFromRequest(r)

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if req.Email == "" || req.Password == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "email and password are required")
		return
	}

	user, err := h.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if status, _, _ := mapError(err); status == http.StatusUnauthorized {
			w.Header().Set("WWW-Authenticate", "Bearer")
		}
		writeStoreError(w, r, err)
		return
	}
	h.writeToken(w, r, user)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) handleRefreshToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	// The replaced token stops working once its successor is issued.
	if err := h.revoker.Revoke(r.Context(), info.Claims.TokenID, info.Claims.ExpiresAt); err != nil {
		log.Printf("refresh revoke error user_id=%s err=%v", info.User.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	h.writeToken(w, r, info.User)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	if err := h.revoker.Revoke(r.Context(), info.Claims.TokenID, info.Claims.ExpiresAt); err != nil {
		log.Printf("logout revoke error user_id=%s err=%v", info.User.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out"})
}

func (h *Handler) writeToken(w http.ResponseWriter, r *http.Request, user models.User) {
	if h.issuer == nil {
		writeError(w, requestIDFromRequest(r), http.StatusInternalServerError, "internal_error", "token issuer not configured")
		return
	}
	token, claims, err := h.issuer.Issue(user)
	if err != nil {
		log.Printf("token issue error user_id=%s err=%v", user.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: token,
		TokenType:   auth.TokenType,
		ExpiresIn:   int(claims.ExpiresAt.Sub(claims.IssuedAt).Seconds()),
	})
}
