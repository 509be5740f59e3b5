package appstate

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/client"
	"github.com/beashaj2001/complaintsManagement/internal/models"
)

type fakeAPI struct {
	loginFn    func(ctx context.Context, email, password string) (client.TokenResponse, error)
	registerFn func(ctx context.Context, input client.RegisterInput) (models.User, error)
	meFn       func(ctx context.Context) (models.User, error)
}

func (f fakeAPI) Login(ctx context.Context, email, password string) (client.TokenResponse, error) {
	if f.loginFn == nil {
		return client.TokenResponse{}, errors.New("login not stubbed")
	}
	return f.loginFn(ctx, email, password)
}

func (f fakeAPI) Register(ctx context.Context, input client.RegisterInput) (models.User, error) {
	if f.registerFn == nil {
		return models.User{}, nil
	}
	return f.registerFn(ctx, input)
}

func (f fakeAPI) Me(ctx context.Context) (models.User, error) {
	if f.meFn == nil {
		return models.User{}, errors.New("me not stubbed")
	}
	return f.meFn(ctx)
}

func TestFileStoragePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	storage, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("new storage: %v", err)
	}
	if err := storage.Set("theme", "light"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := storage.Set("token", "abc"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := storage.Delete("token"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	reopened, err := NewFileStorage(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if value, ok := reopened.Get("theme"); !ok || value != "light" {
		t.Fatalf("expected persisted theme, got %q %v", value, ok)
	}
	if _, ok := reopened.Get("token"); ok {
		t.Fatalf("expected deleted token to stay deleted")
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 state file, got %v", info.Mode().Perm())
	}
}

func TestFileStorageRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileStorage(path); err == nil {
		t.Fatalf("expected corrupt state file to fail")
	}
}

func TestThemeDefaultsToDarkAndToggles(t *testing.T) {
	storage := NewMemoryStorage()
	theme := NewTheme(storage)
	if !theme.IsDark() || theme.Colors() != darkPalette {
		t.Fatalf("expected dark default")
	}
	dark, err := theme.Toggle()
	if err != nil || dark {
		t.Fatalf("expected light after toggle, got dark=%v err=%v", dark, err)
	}
	if value, _ := storage.Get("theme"); value != "light" {
		t.Fatalf("expected persisted light, got %q", value)
	}
	if NewTheme(storage).IsDark() {
		t.Fatalf("expected reloaded theme to be light")
	}
	if _, err := theme.Toggle(); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if value, _ := storage.Get("theme"); value != "dark" || theme.Name() != "dark" {
		t.Fatalf("expected persisted dark, got %q", value)
	}
}

func TestSessionLoginAndLogout(t *testing.T) {
	storage := NewMemoryStorage()
	session := NewSession(storage)
	session.Bind(fakeAPI{
		loginFn: func(ctx context.Context, email, password string) (client.TokenResponse, error) {
			return client.TokenResponse{AccessToken: "tok-1", TokenType: "bearer"}, nil
		},
		meFn: func(ctx context.Context) (models.User, error) {
			if session.Token() != "tok-1" {
				t.Errorf("expected token to be set before /me, got %q", session.Token())
			}
			return models.User{UserID: "u1", Role: models.RoleAdmin}, nil
		},
	})

	if decision := access.Resolve("/admin", session.GuardState()); decision.Location != access.PathLogin {
		t.Fatalf("expected anonymous redirect to login, got %+v", decision)
	}
	user, err := session.Login(context.Background(), "a@example.com", "secret1")
	if err != nil || user.UserID != "u1" {
		t.Fatalf("login: %+v %v", user, err)
	}
	if value, _ := storage.Get("token"); value != "tok-1" {
		t.Fatalf("expected token in storage, got %q", value)
	}
	if decision := access.Resolve("/admin", session.GuardState()); decision.Kind != access.DecisionRender {
		t.Fatalf("expected admin to render, got %+v", decision)
	}

	if err := session.Logout(); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := session.User(); ok || session.Token() != "" {
		t.Fatalf("expected cleared session")
	}
	if _, ok := storage.Get("token"); ok {
		t.Fatalf("expected token removed from storage")
	}
}

func TestSessionRestore(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set("token", "stale")
	session := NewSession(storage)
	session.Bind(fakeAPI{
		meFn: func(ctx context.Context) (models.User, error) {
			return models.User{}, &client.APIError{Status: 401}
		},
	})
	if err := session.Restore(context.Background()); err == nil {
		t.Fatalf("expected restore error")
	}
	if session.Token() != "" || session.Loading() {
		t.Fatalf("expected rejected token to be discarded")
	}
	if _, ok := storage.Get("token"); ok {
		t.Fatalf("expected storage to be cleared")
	}

	empty := NewSession(NewMemoryStorage())
	empty.Bind(fakeAPI{})
	if err := empty.Restore(context.Background()); err != nil {
		t.Fatalf("expected restore without token to succeed, got %v", err)
	}
	if empty.GuardState().Loading {
		t.Fatalf("expected loading to be cleared")
	}
}

func TestSessionWithoutAPI(t *testing.T) {
	session := NewSession(NewMemoryStorage())
	if _, err := session.Login(context.Background(), "a", "b"); !errors.Is(err, ErrNoAPI) {
		t.Fatalf("expected ErrNoAPI, got %v", err)
	}
}

func TestSessionExpire(t *testing.T) {
	storage := NewMemoryStorage()
	_ = storage.Set("token", "tok")
	session := NewSession(storage)
	if session.Token() != "tok" {
		t.Fatalf("expected token loaded from storage")
	}
	session.Expire()
	if session.Token() != "" {
		t.Fatalf("expected token cleared")
	}
}
