package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/auth"
	"github.com/beashaj2001/complaintsManagement/internal/chatbot"
	"github.com/beashaj2001/complaintsManagement/internal/hub"
	"github.com/beashaj2001/complaintsManagement/internal/metrics"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
	"github.com/beashaj2001/complaintsManagement/internal/store"

	"github.com/google/uuid"
)

// SweepRunner runs one SLA breach sweep on demand.
type SweepRunner interface {
	RunOnce(ctx context.Context) ([]models.Complaint, error)
}

type Handler struct {
	store     store.Store
	issuer    *auth.Issuer
	revoker   auth.Revoker
	evaluator *sla.Evaluator
	bot       *chatbot.Bot
	hub       *hub.Hub
	sweeper   SweepRunner
	metrics   *metrics.Metrics
	live      http.Handler
	now       func() time.Time
}

type Options struct {
	Issuer    *auth.Issuer
	Revoker   auth.Revoker
	Evaluator *sla.Evaluator
	Bot       *chatbot.Bot
	Hub       *hub.Hub
	Sweeper   SweepRunner
	Metrics   *metrics.Metrics
	Live      bool
	Clock     func() time.Time
}

type errorResponse struct {
	RequestID string        `json:"request_id"`
	Error     responseError `json:"error"`
}

type responseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func NewHandler(st store.Store, options Options) *Handler {
	clock := options.Clock
	if clock == nil {
		clock = time.Now
	}
	evaluator := options.Evaluator
	if evaluator == nil {
		evaluator = sla.NewEvaluator(sla.Options{Clock: clock})
	}
	revoker := options.Revoker
	if revoker == nil {
		revoker = auth.NewMemoryRevoker(clock)
	}
	h := &Handler{
		store:     st,
		issuer:    options.Issuer,
		revoker:   revoker,
		evaluator: evaluator,
		bot:       options.Bot,
		hub:       options.Hub,
		sweeper:   options.Sweeper,
		metrics:   options.Metrics,
		now:       clock,
	}
	if h.bot == nil {
		h.bot = chatbot.New(chatbot.Options{Lookup: st.GetComplaintByNumber, Evaluator: evaluator})
	}
	if options.Live && h.hub != nil {
		h.live = h.liveHandler()
	}
	return h
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/health", h.handleHealth)
	if h.metrics != nil {
		mux.Handle("/metrics", h.metrics.Handler())
	}

	mux.HandleFunc("/api/auth/register", h.handleRegister)
	mux.HandleFunc("/api/auth/login", h.handleLogin)
	mux.HandleFunc("/api/auth/me", h.handleMe)
	mux.HandleFunc("/api/auth/refresh-token", h.handleRefreshToken)
	mux.HandleFunc("/api/auth/logout", h.handleLogout)

	mux.HandleFunc("/api/complaints", h.handleComplaints)
	mux.HandleFunc("/api/complaints/", h.handleComplaintActions)

	mux.HandleFunc("/api/users", h.handleUsers)
	mux.HandleFunc("/api/users/", h.handleUserActions)

	mux.HandleFunc("/api/admin/teams", h.handleTeams)
	mux.HandleFunc("/api/admin/teams/", h.handleTeamUpdate)
	mux.HandleFunc("/api/admin/sla-matrix", h.handleSLAMatrix)
	mux.HandleFunc("/api/admin/sla-matrix/", h.handleSLARuleUpdate)
	mux.HandleFunc("/api/admin/agent-action", h.handleAgentAction)

	mux.HandleFunc("/api/chatbot/query", h.handleChatbotQuery)
	mux.HandleFunc("/api/chatbot/suggestions", h.handleChatbotSuggestions)
	if h.live != nil {
		mux.Handle(livePrefix+"/", h.live)
	}
	return mux
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func decodeJSON(r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func isValidUUID(value string) bool {
	_, err := uuid.Parse(value)
	return err == nil
}

// pathParts returns the non-empty segments after prefix.
func pathParts(path, prefix string) []string {
	trimmed := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func readPage(r *http.Request) (int, int, bool) {
	skip, ok := readQueryInt(r, "skip", 0)
	if !ok || skip < 0 {
		return 0, 0, false
	}
	limit, ok := readQueryInt(r, "limit", 100)
	if !ok || limit < 1 || limit > 1000 {
		return 0, 0, false
	}
	return skip, limit, true
}

func readQueryInt(r *http.Request, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}

func readQueryBool(r *http.Request, key string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(key)))
	return err == nil && value
}

func trimmedPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func mapError(err error) (int, string, string) {
	switch {
	case errors.Is(err, store.ErrComplaintNotFound):
		return http.StatusNotFound, "complaint_not_found", "complaint not found"
	case errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", "user not found"
	case errors.Is(err, store.ErrTeamNotFound):
		return http.StatusNotFound, "team_not_found", "team not found"
	case errors.Is(err, store.ErrSLARuleNotFound):
		return http.StatusNotFound, "sla_rule_not_found", "sla rule not found"
	case errors.Is(err, store.ErrEmailTaken):
		return http.StatusBadRequest, "email_taken", "email already registered"
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid_credentials", "incorrect email or password"
	case errors.Is(err, store.ErrInactiveUser):
		return http.StatusBadRequest, "inactive_user", "inactive user"
	case errors.Is(err, store.ErrInvalidState):
		return http.StatusConflict, "invalid_state", "complaint state does not allow this action"
	case errors.Is(err, store.ErrAccessDenied):
		return http.StatusForbidden, "access_denied", "not enough permissions"
	case errors.Is(err, store.ErrHistoryTampered):
		return http.StatusConflict, "history_tampered", "complaint history failed verification"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenRevoked):
		return http.StatusUnauthorized, "unauthorized", "could not validate credentials"
	case errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest, "invalid_request", err.Error()
	case errors.Is(err, chatbot.ErrEmptyQuery):
		return http.StatusBadRequest, "invalid_request", "query is required"
	default:
		return http.StatusInternalServerError, "internal_error", "internal server error"
	}
}

func writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, msg := mapError(err)
	writeError(w, requestIDFromRequest(r), status, code, msg)
}

func writeError(w http.ResponseWriter, requestID string, status int, code, message string) {
	writeJSON(w, status, errorResponse{
		RequestID: requestID,
		Error: responseError{
			Code:    code,
			Message: message,
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}
