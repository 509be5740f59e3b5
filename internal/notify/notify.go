package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"
)

// Provider delivers a rendered message to a recipient address.
type Provider interface {
	Send(ctx context.Context, message, recipient string) error
}

// NewProvider picks a provider from kind: "log" (default), "noop", or an
// http(s) webhook URL.
func NewProvider(kind, token string) Provider {
	switch {
	case kind == "" || kind == "log":
		return logProvider{}
	case kind == "noop":
		return noopProvider{}
	case strings.HasPrefix(kind, "http://") || strings.HasPrefix(kind, "https://"):
		return webhookProvider{url: kind, token: token, client: &http.Client{Timeout: 5 * time.Second}}
	default:
		log.Printf("notify unknown provider kind=%s, using log", kind)
		return logProvider{}
	}
}

type logProvider struct{}

func (logProvider) Send(_ context.Context, message, recipient string) error {
	log.Printf("notify recipient=%s message=%q", recipient, message)
	return nil
}

type noopProvider struct{}

func (noopProvider) Send(context.Context, string, string) error {
	return nil
}

type webhookProvider struct {
	url    string
	token  string
	client *http.Client
}

func (p webhookProvider) Send(ctx context.Context, message, recipient string) error {
	body, err := json.Marshal(map[string]string{
		"recipient": recipient,
		"message":   message,
	})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected notification: status %d", resp.StatusCode)
	}
	return nil
}

// RenderTemplate replaces {key} placeholders with values.
func RenderTemplate(template string, values map[string]string) string {
	out := template
	for key, value := range values {
		out = strings.ReplaceAll(out, "{"+key+"}", value)
	}
	return out
}
