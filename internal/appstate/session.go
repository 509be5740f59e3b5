package appstate

import (
	"context"
	"errors"
	"sync"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/client"
	"github.com/beashaj2001/complaintsManagement/internal/models"
)

const tokenKey = "token"

var ErrNoAPI = errors.New("session has no api client")

// API is the subset of the REST client the session drives.
type API interface {
	Login(ctx context.Context, email, password string) (client.TokenResponse, error)
	Register(ctx context.Context, input client.RegisterInput) (models.User, error)
	Me(ctx context.Context) (models.User, error)
}

// Session holds the signed-in user and token. It satisfies client.TokenSource
// so the API client can read the current token on every request.
type Session struct {
	mu      sync.RWMutex
	storage Storage
	api     API
	token   string
	user    *models.User
	loading bool
}

func NewSession(storage Storage) *Session {
	token, _ := storage.Get(tokenKey)
	return &Session{storage: storage, token: token}
}

// Bind attaches the API client. It is separate from NewSession because the
// client itself reads tokens from the session.
func (s *Session) Bind(api API) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.api = api
}

// Restore resolves the stored token into a user. A token the server rejects
// is discarded.
func (s *Session) Restore(ctx context.Context) error {
	api, token := s.begin()
	if api == nil {
		s.finish(nil)
		return ErrNoAPI
	}
	if token == "" {
		s.finish(nil)
		return nil
	}
	user, err := api.Me(ctx)
	if err != nil {
		s.finish(nil)
		_ = s.clear()
		return err
	}
	s.finish(&user)
	return nil
}

func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	api, _ := s.begin()
	if api == nil {
		s.finish(nil)
		return models.User{}, ErrNoAPI
	}
	token, err := api.Login(ctx, email, password)
	if err != nil {
		s.finish(nil)
		return models.User{}, err
	}
	if err := s.setToken(token.AccessToken); err != nil {
		s.finish(nil)
		return models.User{}, err
	}
	user, err := api.Me(ctx)
	if err != nil {
		s.finish(nil)
		_ = s.clear()
		return models.User{}, err
	}
	s.finish(&user)
	return user, nil
}

// Register creates the account without signing in.
func (s *Session) Register(ctx context.Context, input client.RegisterInput) (models.User, error) {
	s.mu.RLock()
	api := s.api
	s.mu.RUnlock()
	if api == nil {
		return models.User{}, ErrNoAPI
	}
	return api.Register(ctx, input)
}

func (s *Session) Logout() error {
	return s.clear()
}

// Expire drops the token after the server answered 401.
func (s *Session) Expire() {
	_ = s.clear()
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// GuardState snapshots the session for access.Guard.
func (s *Session) GuardState() access.GuardState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state := access.GuardState{Loading: s.loading}
	if s.user != nil {
		user := *s.user
		state.User = &user
	}
	return state
}

func (s *Session) begin() (API, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = true
	return s.api, s.token
}

func (s *Session) finish(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	s.user = user
}

func (s *Session) setToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(tokenKey, token); err != nil {
		return err
	}
	s.token = token
	return nil
}

func (s *Session) clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	return s.storage.Delete(tokenKey)
}
