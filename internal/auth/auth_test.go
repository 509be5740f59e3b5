package auth

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/models"

	"github.com/google/uuid"
)

func testUser() models.User {
	return models.User{UserID: uuid.NewString(), Email: "agent@example.com", Role: models.RoleOpsMember}
}

func TestIssueAndParse(t *testing.T) {
	now := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	issuer, err := NewIssuer("secret", 0, func() time.Time { return now })
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	if issuer.TTL() != 30*time.Minute {
		t.Fatalf("expected default ttl 30m, got %s", issuer.TTL())
	}

	user := testUser()
	raw, issued, err := issuer.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := issuer.Parse(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != user.UserID || claims.Role != user.Role || claims.TokenID != issued.TokenID {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if !claims.ExpiresAt.Equal(now.Add(30 * time.Minute)) {
		t.Fatalf("unexpected expiry %s", claims.ExpiresAt)
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	clock := now
	issuer, _ := NewIssuer("secret", time.Minute, func() time.Time { return clock })
	raw, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	clock = now.Add(2 * time.Minute)
	if _, err := issuer.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to be invalid, got %v", err)
	}

	other, _ := NewIssuer("other-secret", time.Minute, func() time.Time { return now })
	clock = now
	if _, err := other.Parse(raw); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign signature to be invalid, got %v", err)
	}
	if _, err := issuer.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected garbage to be invalid, got %v", err)
	}
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	if _, err := NewIssuer("", time.Minute, nil); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("12345"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	if err := ValidatePassword("123456"); err != nil {
		t.Fatalf("expected valid password, got %v", err)
	}
}

func TestMemoryRevoker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 12, 8, 0, 0, 0, time.UTC)
	clock := now
	revoker := NewMemoryRevoker(func() time.Time { return clock })

	if err := revoker.Revoke(ctx, "t1", now.Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if revoked, _ := revoker.IsRevoked(ctx, "t1"); !revoked {
		t.Fatalf("expected t1 revoked")
	}
	if revoked, _ := revoker.IsRevoked(ctx, "t2"); revoked {
		t.Fatalf("expected t2 not revoked")
	}

	clock = now.Add(2 * time.Minute)
	if revoked, _ := revoker.IsRevoked(ctx, "t1"); revoked {
		t.Fatalf("expected revocation to lapse after expiry")
	}
}

func TestRedisRevoker(t *testing.T) {
	redisURL := os.Getenv("TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("TEST_REDIS_URL is required for redis tests")
	}
	ctx := context.Background()
	client, err := ConnectRedis(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	revoker := NewRedisRevoker(client)
	tokenID := uuid.NewString()
	if err := revoker.Revoke(ctx, tokenID, time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := revoker.IsRevoked(ctx, tokenID)
	if err != nil || !revoked {
		t.Fatalf("expected revoked, got %v %v", revoked, err)
	}
}
