package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRenderTemplate(t *testing.T) {
	got := RenderTemplate("Complaint {number} breached its {hours}h SLA", map[string]string{
		"number": "CMP20260112ABCDEF01",
		"hours":  "24",
	})
	if got != "Complaint CMP20260112ABCDEF01 breached its 24h SLA" {
		t.Fatalf("unexpected render: %s", got)
	}
}

func TestWebhookProvider(t *testing.T) {
	var received map[string]string
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	provider := NewProvider(server.URL, "tok")
	if err := provider.Send(context.Background(), "hello", "lead@example.com"); err != nil {
		t.Fatalf("send: %v", err)
	}
	if auth != "Bearer tok" || received["recipient"] != "lead@example.com" || received["message"] != "hello" {
		t.Fatalf("unexpected webhook call auth=%q body=%v", auth, received)
	}
}

func TestWebhookProviderRejects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	if err := NewProvider(server.URL, "").Send(context.Background(), "x", "y"); err == nil {
		t.Fatalf("expected error on rejected webhook")
	}
}

func TestNewProviderDefaults(t *testing.T) {
	if _, ok := NewProvider("", "").(logProvider); !ok {
		t.Fatalf("expected log provider by default")
	}
	if _, ok := NewProvider("noop", "").(noopProvider); !ok {
		t.Fatalf("expected noop provider")
	}
	if _, ok := NewProvider("carrier-pigeon", "").(logProvider); !ok {
		t.Fatalf("expected unknown kinds to fall back to log")
	}
}
