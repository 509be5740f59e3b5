// Package client is a typed wrapper over the complaint service REST API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/chatbot"
	"github.com/beashaj2001/complaintsManagement/internal/models"
)

const DefaultBaseURL = "http://localhost:8000/api"

// TokenSource supplies the bearer token for each request. An empty token
// sends the request anonymously.
type TokenSource interface {
	Token() string
}

type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error: status %d: %s: %s", e.Status, e.Code, e.Message)
}

// IsUnauthorized reports whether err is an API 401.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

type Options struct {
	BaseURL        string
	HTTPClient     *http.Client
	Tokens         TokenSource
	OnUnauthorized func()
}

type Client struct {
	baseURL        string
	http           *http.Client
	tokens         TokenSource
	onUnauthorized func()
}

// BaseURLFromEnv returns CMS_API_URL or the local default.
func BaseURLFromEnv() string {
	if value := strings.TrimSpace(os.Getenv("CMS_API_URL")); value != "" {
		return value
	}
	return DefaultBaseURL
}

func New(options Options) *Client {
	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = BaseURLFromEnv()
	}
	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:        baseURL,
		http:           httpClient,
		tokens:         options.Tokens,
		onUnauthorized: options.OnUnauthorized,
	}
}

// SetUnauthorizedHook replaces the hook run on every 401 response.
func (c *Client) SetUnauthorizedHook(hook func()) {
	c.onUnauthorized = hook
}

// BuildQuery encodes params in key order, skipping empty values.
func BuildQuery(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for key, value := range params {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	values := url.Values{}
	for _, key := range keys {
		values.Set(key, params[key])
	}
	return values.Encode()
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type RegisterInput struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type ComplaintListParams struct {
	Skip         int
	Limit        int
	Status       string
	Severity     string
	TeamID       string
	AssignedToMe bool
}

type CreateComplaintInput struct {
	Product     string `json:"product"`
	Subproduct  string `json:"subproduct,omitempty"`
	Issue       string `json:"issue"`
	Subissue    string `json:"subissue,omitempty"`
	Description string `json:"description"`
	Severity    string `json:"severity,omitempty"`
}

type UpdateComplaintInput struct {
	Status         *string `json:"status,omitempty"`
	AssignedTeamID *string `json:"assigned_team_id,omitempty"`
	AssignedToID   *string `json:"assigned_to_id,omitempty"`
	Description    *string `json:"description,omitempty"`
	Severity       *string `json:"severity,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (c *Client) Login(ctx context.Context, email, password string) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", "", map[string]string{"email": email, "password": password}, &out)
	return out, err
}

func (c *Client) Register(ctx context.Context, input RegisterInput) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodPost, "/auth/register", "", input, &out)
	return out, err
}

func (c *Client) Me(ctx context.Context) (models.User, error) {
	var out models.User
	err := c.do(ctx, http.MethodGet, "/auth/me", "", nil, &out)
	return out, err
}

func (c *Client) RefreshToken(ctx context.Context) (TokenResponse, error) {
	var out TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh-token", "", nil, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", "", nil, nil)
}

func (c *Client) ListComplaints(ctx context.Context, params ComplaintListParams) ([]models.Complaint, error) {
	query := map[string]string{
		"status":   params.Status,
		"severity": params.Severity,
		"team_id":  params.TeamID,
	}
	if params.Skip > 0 {
		query["skip"] = fmt.Sprint(params.Skip)
	}
	if params.Limit > 0 {
		query["limit"] = fmt.Sprint(params.Limit)
	}
	if params.AssignedToMe {
		query["assigned_to_me"] = "true"
	}
	var out []models.Complaint
	err := c.do(ctx, http.MethodGet, "/complaints", BuildQuery(query), nil, &out)
	return out, err
}

func (c *Client) GetComplaint(ctx context.Context, complaintID string) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodGet, "/complaints/"+url.PathEscape(complaintID), "", nil, &out)
	return out, err
}

func (c *Client) CreateComplaint(ctx context.Context, input CreateComplaintInput) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPost, "/complaints", "", input, &out)
	return out, err
}

func (c *Client) UpdateComplaint(ctx context.Context, complaintID string, input UpdateComplaintInput) (models.Complaint, error) {
	var out models.Complaint
	err := c.do(ctx, http.MethodPut, "/complaints/"+url.PathEscape(complaintID), "", input, &out)
	return out, err
}

// AssignComplaint returns the server's confirmation message.
func (c *Client) AssignComplaint(ctx context.Context, complaintID, assigneeID string) (string, error) {
	var out messageResponse
	path := "/complaints/" + url.PathEscape(complaintID) + "/assign"
	err := c.do(ctx, http.MethodPost, path, "", map[string]string{"assigned_to_id": assigneeID}, &out)
	return out.Message, err
}

func (c *Client) AddNote(ctx context.Context, complaintID, note string, internal bool) (models.Note, error) {
	var out models.Note
	path := "/complaints/" + url.PathEscape(complaintID) + "/notes"
	err := c.do(ctx, http.MethodPost, path, "", map[string]interface{}{"note": note, "is_internal": internal}, &out)
	return out, err
}

func (c *Client) DashboardStats(ctx context.Context) (models.DashboardStats, error) {
	var out models.DashboardStats
	err := c.do(ctx, http.MethodGet, "/complaints/dashboard/stats", "", nil, &out)
	return out, err
}

func (c *Client) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	var out []models.User
	err := c.do(ctx, http.MethodGet, "/users", pageQuery(skip, limit), nil, &out)
	return out, err
}

func (c *Client) ListTeams(ctx context.Context, skip, limit int) ([]models.Team, error) {
	var out []models.Team
	err := c.do(ctx, http.MethodGet, "/admin/teams", pageQuery(skip, limit), nil, &out)
	return out, err
}

func (c *Client) ListSLARules(ctx context.Context, skip, limit int) ([]models.SLARule, error) {
	var out []models.SLARule
	err := c.do(ctx, http.MethodGet, "/admin/sla-matrix", pageQuery(skip, limit), nil, &out)
	return out, err
}

func (c *Client) ChatbotQuery(ctx context.Context, query string) (chatbot.Response, error) {
	var out chatbot.Response
	err := c.do(ctx, http.MethodPost, "/chatbot/query", "", map[string]string{"query": query}, &out)
	return out, err
}

func (c *Client) ChatbotSuggestions(ctx context.Context) ([]string, error) {
	var out suggestionsResponse
	err := c.do(ctx, http.MethodGet, "/chatbot/suggestions", "", nil, &out)
	return out.Suggestions, err
}

func pageQuery(skip, limit int) string {
	params := map[string]string{}
	if skip > 0 {
		params["skip"] = fmt.Sprint(skip)
	}
	if limit > 0 {
		params["limit"] = fmt.Sprint(limit)
	}
	return BuildQuery(params)
}

type errorEnvelope struct {
	RequestID string `json:"request_id"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path, query string, body, out interface{}) error {
	target := c.baseURL + path
	if query != "" {
		target += "?" + query
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("client: create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return decodeAPIError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("client: decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(data) == 0 {
		return apiErr
	}
	var envelope errorEnvelope
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
