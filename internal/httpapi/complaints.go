package httpapi

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/hub"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/sla"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

type createComplaintRequest struct {
	Product     string `json:"product"`
	Subproduct  string `json:"subproduct"`
	Issue       string `json:"issue"`
	Subissue    string `json:"subissue"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}

type updateComplaintRequest struct {
	Status         *string `json:"status"`
	AssignedTeamID *string `json:"assigned_team_id"`
	AssignedToID   *string `json:"assigned_to_id"`
	Description    *string `json:"description"`
	Severity       *string `json:"severity"`
}

type assignRequest struct {
	AssignedToID string `json:"assigned_to_id"`
}

type noteRequest struct {
	Note       string `json:"note"`
	IsInternal bool   `json:"is_internal"`
}

type slaView struct {
	sla.Result
	Label string `json:"label"`
}

type complaintView struct {
	models.Complaint
	SLA slaView `json:"sla"`
}

type historyResponse struct {
	Entries  []models.HistoryEntry `json:"entries"`
	Verified bool                  `json:"verified"`
}

func (h *Handler) complaintView(complaint models.Complaint) complaintView {
	result := h.evaluator.EvaluateTime(complaint.CreatedAt, float64(complaint.SLAHours))
	return complaintView{
		Complaint: complaint,
		SLA:       slaView{Result: result, Label: sla.Label(result)},
	}
}

func (h *Handler) handleComplaints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleListComplaints(w, r)
	case http.MethodPost:
		h.handleCreateComplaint(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleComplaintActions(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r.URL.Path, "/api/complaints")
	requestID := requestIDFromRequest(r)
	if len(parts) == 2 && parts[0] == "dashboard" && parts[1] == "stats" {
		h.handleDashboardStats(w, r)
		return
	}
	if len(parts) == 0 || len(parts) > 2 {
		writeError(w, requestID, http.StatusNotFound, "not_found", "route not found")
		return
	}
	complaintID := parts[0]
	if !isValidUUID(complaintID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "complaint_id must be a UUID")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleGetComplaint(w, r, complaintID)
		case http.MethodPut:
			h.handleUpdateComplaint(w, r, complaintID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}

	switch parts[1] {
	case "assign":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleAssignComplaint(w, r, complaintID)
	case "notes":
		switch r.Method {
		case http.MethodGet:
			h.handleListNotes(w, r, complaintID)
		case http.MethodPost:
			h.handleAddNote(w, r, complaintID)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	case "history":
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.handleHistory(w, r, complaintID)
	default:
		writeError(w, requestID, http.StatusNotFound, "not_found", "route not found")
	}
}

func (h *Handler) handleListComplaints(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)
	skip, limit, ok := readPage(r)
	if !ok {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "skip must be >= 0 and limit between 1 and 1000")
		return
	}
	query := r.URL.Query()
	status := strings.TrimSpace(query.Get("status"))
	if status != "" && !models.ValidStatus(status) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "status is not valid")
		return
	}
	severity := strings.TrimSpace(query.Get("severity"))
	if severity != "" && !models.ValidSeverity(severity) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "severity is not valid")
		return
	}
	teamID := strings.TrimSpace(query.Get("team_id"))
	if teamID != "" && !isValidUUID(teamID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "team_id must be a UUID")
		return
	}

	scope, err := h.complaintScope(r.Context(), user, readQueryBool(r, "assigned_to_me"))
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	complaints, err := h.store.ListComplaints(r.Context(), store.ComplaintFilter{
		Scope:    scope,
		Status:   status,
		Severity: severity,
		TeamID:   teamID,
		Skip:     skip,
		Limit:    limit,
	})
	if err != nil {
		log.Printf("list complaints error user_id=%s err=%v", user.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	views := make([]complaintView, 0, len(complaints))
	for _, complaint := range complaints {
		views = append(views, h.complaintView(complaint))
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *Handler) complaintScope(ctx context.Context, user models.User, assignedToMe bool) (access.Scope, error) {
	var managed []string
	if user.Role == models.RoleManager {
		var err error
		managed, err = h.store.ManagedTeamIDs(ctx, user.UserID)
		if err != nil {
			return access.Scope{}, err
		}
	}
	return access.ComplaintScope(user, managed, assignedToMe), nil
}

func (h *Handler) handleCreateComplaint(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)

	var req createComplaintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Product = strings.TrimSpace(req.Product)
	req.Issue = strings.TrimSpace(req.Issue)
	req.Description = strings.TrimSpace(req.Description)
	req.Severity = strings.TrimSpace(req.Severity)
	if req.Severity == "" {
		req.Severity = models.SeverityMedium
	}
	if req.Product == "" || req.Issue == "" || req.Description == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "product, issue and description are required")
		return
	}
	if !models.ValidSeverity(req.Severity) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "severity is not valid")
		return
	}

	complaint, err := h.store.CreateComplaint(r.Context(), store.CreateComplaintInput{
		Product:     req.Product,
		Subproduct:  strings.TrimSpace(req.Subproduct),
		Issue:       req.Issue,
		Subissue:    strings.TrimSpace(req.Subissue),
		Description: req.Description,
		Severity:    req.Severity,
		CustomerID:  user.UserID,
		CreatedAt:   h.now().UTC(),
	})
	if err != nil {
		log.Printf("create complaint error user_id=%s err=%v", user.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	log.Printf("complaint created complaint_id=%s number=%s sla_hours=%d", complaint.ComplaintID, complaint.ComplaintNumber, complaint.SLAHours)
	h.publish(hub.EventComplaintCreated, complaint, nil)
	writeJSON(w, http.StatusOK, h.complaintView(complaint))
}

// loadVisibleComplaint fetches the complaint and applies the read check.
func (h *Handler) loadVisibleComplaint(w http.ResponseWriter, r *http.Request, user models.User, complaintID string) (models.Complaint, bool) {
	complaint, err := h.store.GetComplaint(r.Context(), complaintID)
	if err != nil {
		writeStoreError(w, r, err)
		return models.Complaint{}, false
	}
	if !access.CanView(user, complaint) {
		writeStoreError(w, r, store.ErrAccessDenied)
		return models.Complaint{}, false
	}
	return complaint, true
}

func (h *Handler) handleGetComplaint(w http.ResponseWriter, r *http.Request, complaintID string) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	complaint, ok := h.loadVisibleComplaint(w, r, user, complaintID)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.complaintView(complaint))
}

func (h *Handler) handleUpdateComplaint(w http.ResponseWriter, r *http.Request, complaintID string) {
	user, ok := requireAction(w, r, access.ActionUpdateComplaint)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)

	var req updateComplaintRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Status = trimmedPtr(req.Status)
	req.Severity = trimmedPtr(req.Severity)
	req.AssignedTeamID = trimmedPtr(req.AssignedTeamID)
	req.AssignedToID = trimmedPtr(req.AssignedToID)
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "status is not valid")
		return
	}
	if req.Severity != nil && !models.ValidSeverity(*req.Severity) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "severity is not valid")
		return
	}
	if req.AssignedTeamID != nil && *req.AssignedTeamID != "" && !isValidUUID(*req.AssignedTeamID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "assigned_team_id must be a UUID")
		return
	}
	if req.AssignedToID != nil && *req.AssignedToID != "" && !isValidUUID(*req.AssignedToID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "assigned_to_id must be a UUID")
		return
	}
	if _, ok := h.loadVisibleComplaint(w, r, user, complaintID); !ok {
		return
	}

	complaint, err := h.store.UpdateComplaint(r.Context(), store.UpdateComplaintInput{
		ComplaintID:    complaintID,
		ActorID:        user.UserID,
		Status:         req.Status,
		AssignedTeamID: req.AssignedTeamID,
		AssignedToID:   req.AssignedToID,
		Description:    req.Description,
		Severity:       req.Severity,
		OccurredAt:     h.now().UTC(),
	})
	if err != nil {
		if !errors.Is(err, store.ErrInvalidState) {
			log.Printf("update complaint error complaint_id=%s err=%v", complaintID, err)
		}
		writeStoreError(w, r, err)
		return
	}
	h.publish(hub.EventComplaintUpdated, complaint, nil)
	writeJSON(w, http.StatusOK, h.complaintView(complaint))
}

func (h *Handler) handleAssignComplaint(w http.ResponseWriter, r *http.Request, complaintID string) {
	user, ok := requireAction(w, r, access.ActionAssignComplaint)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)

	assigneeID := strings.TrimSpace(r.URL.Query().Get("assigned_to_id"))
	if assigneeID == "" && r.ContentLength != 0 {
		var req assignRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
			return
		}
		assigneeID = strings.TrimSpace(req.AssignedToID)
	}
	if !isValidUUID(assigneeID) {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "assigned_to_id must be a UUID")
		return
	}

	complaint, assignee, err := h.store.AssignComplaint(r.Context(), store.AssignInput{
		ComplaintID: complaintID,
		ActorID:     user.UserID,
		AssigneeID:  assigneeID,
		OccurredAt:  h.now().UTC(),
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	log.Printf("complaint assigned complaint_id=%s assignee_id=%s actor_id=%s", complaint.ComplaintID, assignee.UserID, user.UserID)
	h.publish(hub.EventComplaintAssigned, complaint, map[string]string{"assigned_to_name": assignee.FullName})
	writeJSON(w, http.StatusOK, messageResponse{Message: "Complaint assigned to " + assignee.FullName})
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request, complaintID string) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if _, ok := h.loadVisibleComplaint(w, r, user, complaintID); !ok {
		return
	}
	notes, err := h.store.ListNotes(r.Context(), complaintID, user.Role != models.RoleCustomer)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, notes)
}

func (h *Handler) handleAddNote(w http.ResponseWriter, r *http.Request, complaintID string) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	requestID := requestIDFromRequest(r)

	var req noteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestID, http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	req.Note = strings.TrimSpace(req.Note)
	if req.Note == "" {
		writeError(w, requestID, http.StatusBadRequest, "invalid_request", "note is required")
		return
	}
	if req.IsInternal && user.Role == models.RoleCustomer {
		writeStoreError(w, r, store.ErrAccessDenied)
		return
	}
	if _, ok := h.loadVisibleComplaint(w, r, user, complaintID); !ok {
		return
	}

	note, err := h.store.AddNote(r.Context(), store.NoteInput{
		ComplaintID: complaintID,
		UserID:      user.UserID,
		Note:        req.Note,
		IsInternal:  req.IsInternal,
	})
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request, complaintID string) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	if _, ok := h.loadVisibleComplaint(w, r, user, complaintID); !ok {
		return
	}
	entries, err := h.store.ListHistory(r.Context(), complaintID)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	verified := true
	if err := store.VerifyHistory(entries); err != nil {
		verified = false
		log.Printf("history verification failed complaint_id=%s err=%v", complaintID, err)
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	writeJSON(w, http.StatusOK, historyResponse{Entries: entries, Verified: verified})
}

func (h *Handler) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	scope, err := h.complaintScope(r.Context(), user, false)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	stats, err := h.store.DashboardStats(r.Context(), scope)
	if err != nil {
		log.Printf("dashboard stats error user_id=%s err=%v", user.UserID, err)
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) publish(eventType string, complaint models.Complaint, extra interface{}) {
	if h.hub == nil {
		return
	}
	h.hub.PublishComplaint(eventType, complaint, extra)
}
