package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestBuildQuery(t *testing.T) {
	got := BuildQuery(map[string]string{"status": "open", "severity": "", "limit": "10"})
	if got != "limit=10&status=open" {
		t.Fatalf("unexpected query %q", got)
	}
	if got := BuildQuery(nil); got != "" {
		t.Fatalf("expected empty query, got %q", got)
	}
}

func TestListComplaintsSendsTokenAndQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/complaints" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("missing bearer token")
		}
		if r.URL.RawQuery != "assigned_to_me=true&limit=5&status=open" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode([]map[string]interface{}{
			{"complaint_id": "c1", "complaint_number": "CMP20260112ABCDEF01", "sla": map[string]interface{}{"status": "safe"}},
		})
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL + "/api/", Tokens: staticToken("tok")})
	complaints, err := c.ListComplaints(context.Background(), ComplaintListParams{Status: models.StatusOpen, Limit: 5, AssignedToMe: true})
	if err != nil {
		t.Fatalf("list complaints: %v", err)
	}
	if len(complaints) != 1 || complaints[0].ComplaintNumber != "CMP20260112ABCDEF01" {
		t.Fatalf("unexpected complaints %+v", complaints)
	}
}

func TestErrorEnvelopeAndUnauthorizedHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"request_id":"r1","error":{"code":"unauthorized","message":"could not validate credentials"}}`))
	}))
	defer server.Close()

	cleared := false
	c := New(Options{BaseURL: server.URL, Tokens: staticToken("expired"), OnUnauthorized: func() { cleared = true }})
	_, err := c.Me(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Code != "unauthorized" || apiErr.Message != "could not validate credentials" {
		t.Fatalf("unexpected api error %+v", apiErr)
	}
	if !cleared || !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized hook to run")
	}
}

func TestNonJSONErrorFallsBackToStatusText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL})
	err := c.Logout(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "Too Many Requests" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoginPostsCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if r.Method != http.MethodPost || body["email"] != "a@example.com" || body["password"] != "secret1" {
			t.Errorf("unexpected login request %s %+v", r.Method, body)
		}
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected anonymous login")
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{AccessToken: "tok", TokenType: "bearer", ExpiresIn: 1800})
	}))
	defer server.Close()

	c := New(Options{BaseURL: server.URL, Tokens: staticToken("")})
	token, err := c.Login(context.Background(), "a@example.com", "secret1")
	if err != nil || token.AccessToken != "tok" {
		t.Fatalf("unexpected login result %+v %v", token, err)
	}
}

func TestBaseURLFromEnv(t *testing.T) {
	t.Setenv("CMS_API_URL", "")
	if got := BaseURLFromEnv(); got != DefaultBaseURL {
		t.Fatalf("expected default, got %q", got)
	}
	t.Setenv("CMS_API_URL", "https://cms.example.com/api")
	if got := BaseURLFromEnv(); got != "https://cms.example.com/api" {
		t.Fatalf("expected env override, got %q", got)
	}
}
