package httpapi

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

type createTeamRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ManagerID   string `json:"manager_id"`
	TeamLeadID  string `json:"team_lead_id"`
	IsActive    *bool  `json:"is_active"`
}

type updateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	ManagerID   *string `json:"manager_id"`
	TeamLeadID  *string `json:"team_lead_id"`
	IsActive    *bool   `json:"is_active"`
}

type slaRuleRequest struct {
	Product    *string `json:"product"`
	Subproduct *string `json:"subproduct"`
	Issue      *string `json:"issue"`
	Subissue   *string `json:"subissue"`
	Severity   *string `json:"severity"`
	SLAHours   *int    `json:"sla_hours"`
	IsActive   *bool   `json:"is_active"`
}

type agentActionResponse struct {
	Status           string    `json:"status"`
	Message          string    `json:"message"`
	ActionsPerformed int       `json:"actions_performed"`
	Timestamp        time.Time `json:"timestamp"`
}

func (h *Handler) handleTeams(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := requireAction(w, r, access.ActionListTeams); !ok {
			return
		}
		skip, limit, ok := readPage(r)
		if !ok {
			writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "skip must be >= 0 and limit between 1 and 1000")
			return
		}
		teams, err := h.store.ListTeams(r.Context(), skip, limit)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	case http.MethodPost:
		h.handleCreateTeam(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateTeam(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireAction(w, r, access.ActionCreateTeam)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)

	var req createTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.ManagerID = strings.TrimSpace(req.ManagerID)
	req.TeamLeadID = strings.TrimSpace(req.TeamLeadID)
	if req.Name == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "name is required")
		return
	}
	if (req.ManagerID != "" && !isValidUUID(req.ManagerID)) || (req.TeamLeadID != "" && !isValidUUID(req.TeamLeadID)) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "manager_id and team_lead_id must be UUIDs")
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	team, err := h.store.CreateTeam(r.Context(), store.CreateTeamInput{
		Name:        req.Name,
		Description: strings.TrimSpace(req.Description),
		ManagerID:   req.ManagerID,
		TeamLeadID:  req.TeamLeadID,
		IsActive:    active,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Printf("team created team_id=%s actor_id=%s", team.TeamID, caller.UserID)
	writeJSON(w, http.StatusOK, team)
}

func (h *Handler) handleTeamUpdate(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/admin/teams")
	requestID := requestIDFromRequest(r)
	if len(parts) != 1 {
		writeError(w, requestID, http.StatusNotFound, "not_found", "route not found")
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAction(w, r, access.ActionUpdateTeam); !ok {
		return
	}
	teamID := parts[0]
	if !isValidUUID(teamID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "team_id must be a UUID")
		return
	}

	var req updateTeamRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Name = trimmedPtr(req.Name)
	req.ManagerID = trimmedPtr(req.ManagerID)
	req.TeamLeadID = trimmedPtr(req.TeamLeadID)
	if req.Name != nil && *req.Name == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "name must not be empty")
		return
	}
	for _, id := range []*string{req.ManagerID, req.TeamLeadID} {
		if id != nil && *id != "" && !isValidUUID(*id) {
			writeError(w, requestID, http.StatusBadRequest, "invalid_request", "manager_id and team_lead_id must be UUIDs")
			return
		}
	}

	team, err := h.store.UpdateTeam(r.Context(), store.UpdateTeamInput{
		TeamID:      teamID,
		Name:        req.Name,
		Description: req.Description,
		ManagerID:   req.ManagerID,
		TeamLeadID:  req.TeamLeadID,
		IsActive:    req.IsActive,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

func (h *Handler) handleSLAMatrix(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if _, ok := requireAction(w, r, access.ActionListSLARules); !ok {
			return
		}
		skip, limit, ok := readPage(r)
		if !ok {
			writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_request", "skip must be >= 0 and limit between 1 and 1000")
			return
		}
		rules, err := h.store.ListSLARules(r.Context(), readQueryBool(r, "active_only"), skip, limit)
		if err != nil {
			writeStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rules)
	case http.MethodPost:
		h.handleCreateSLARule(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreateSLARule(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireAction(w, r, access.ActionCreateSLARule); !ok {
		return
	}
	requestID := requestIDFromRequest(r)

	var req slaRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if msg := validateSLARule(req, true); msg != "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", msg)
		return
	}
	rule := models.SLARule{
		Product:  strings.TrimSpace(*req.Product),
		Issue:    strings.TrimSpace(*req.Issue),
		Severity: strings.TrimSpace(*req.Severity),
		SLAHours: *req.SLAHours,
		IsActive: true,
	}
	if req.Subproduct != nil {
		rule.Subproduct = strings.TrimSpace(*req.Subproduct)
	}
	if req.Subissue != nil {
		rule.Subissue = strings.TrimSpace(*req.Subissue)
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}

	created, err := h.store.CreateSLARule(r.Context(), rule)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, created)
}

func (h *Handler) handleSLARuleUpdate(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/admin/sla-matrix")
	requestID := requestIDFromRequest(r)
	if len(parts) != 1 {
		writeError(w, requestID, http.StatusNotFound, "not_found", "route not found")
		return
	}
	if r.Method != http.MethodPut {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAction(w, r, access.ActionUpdateSLARule); !ok {
		return
	}
	ruleID := parts[0]
	if !isValidUUID(ruleID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "rule_id must be a UUID")
		return
	}

	var req slaRuleRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	if msg := validateSLARule(req, false); msg != "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", msg)
		return
	}

	rule, err := h.store.UpdateSLARule(r.Context(), store.SLARuleInput{
		RuleID:     ruleID,
		Product:    trimmedPtr(req.Product),
		Subproduct: trimmedPtr(req.Subproduct),
		Issue:      trimmedPtr(req.Issue),
		Subissue:   trimmedPtr(req.Subissue),
		Severity:   trimmedPtr(req.Severity),
		SLAHours:   req.SLAHours,
		IsActive:   req.IsActive,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

// validateSLARule returns an error message, or "" when req is acceptable.
// On create product, issue, severity and hours are mandatory.
func validateSLARule(req slaRuleRequest, create bool) string {
	if create {
		if req.Product == nil || strings.TrimSpace(*req.Product) == "" ||
			req.Issue == nil || strings.TrimSpace(*req.Issue) == "" ||
			req.Severity == nil || req.SLAHours == nil {
			return "product, issue, severity and sla_hours are required"
		}
	}
	if req.Product != nil && strings.TrimSpace(*req.Product) == "" {
		return "product must not be empty"
	}
	if req.Issue != nil && strings.TrimSpace(*req.Issue) == "" {
		return "issue must not be empty"
	}
	if req.Severity != nil && !models.ValidSeverity(strings.TrimSpace(*req.Severity)) {
		return "severity is not valid"
	}
	if req.SLAHours != nil && *req.SLAHours <= 0 {
		return "sla_hours must be greater than 0"
	}
	return ""
}

func (h *Handler) handleAgentAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	caller, ok := requireAction(w, r, access.ActionAgentRun)
	if !ok {
		return
	}
	if h.sweeper == nil {
		writeError(w, requestIDFromRequest(r), http.StatusServiceUnavailable, "sweeper_unavailable", "SLA sweep is not configured")
		return
	}

	breached, err := h.sweeper.RunOnce(r.Context())
	if err != nil {
		log.Printf("agent action error actor_id=%s err=%v", caller.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	log.Printf("agent action completed actor_id=%s breaches=%d", caller.UserID, len(breached))
	writeJSON(w, http.StatusOK, agentActionResponse{
		Status:           "success",
		Message:          fmt.Sprintf("SLA sweep completed, %d complaint(s) marked as breached", len(breached)),
		ActionsPerformed: len(breached),
		Timestamp:        h.now().UTC(),
	})
}
