package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/auth"
	"github.com/beashaj2001/complaintsManagement/internal/models"
	"github.com/beashaj2001/complaintsManagement/internal/store"
)

type authContextKey struct{}

type authInfo struct {
	User   models.User
	Claims auth.Claims
}

func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicEndpoint(r) {
			next.ServeHTTP(w, r)
			return
		}
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			w.Header().Set("WWW-Authenticate", "Bearer")
			writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}
		info, err := h.authenticate(r.Context(), token)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				err = auth.ErrInvalidToken
			}
			status, code, msg := mapError(err)
			if status == http.StatusUnauthorized {
				w.Header().Set("WWW-Authenticate", "Bearer")
			}
			writeError(w, requestIDFromRequest(r), status, code, msg)
			return
		}
		ctx := context.WithValue(r.Context(), authContextKey{}, info)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *Handler) authenticate(ctx context.Context, token string) (authInfo, error) {
	if h.issuer == nil {
		return authInfo{}, auth.ErrInvalidToken
	}
	claims, err := h.issuer.Parse(token)
	if err != nil {
		return authInfo{}, err
	}
	revoked, err := h.revoker.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		return authInfo{}, err
	}
	if revoked {
		return authInfo{}, auth.ErrTokenRevoked
	}
	user, err := h.store.GetUser(ctx, claims.UserID)
	if err != nil {
		return authInfo{}, err
	}
	if !user.IsActive {
		return authInfo{}, store.ErrInactiveUser
	}
	return authInfo{User: user, Claims: claims}, nil
}

func authFromContext(ctx context.Context) (authInfo, bool) {
	info, ok := ctx.Value(authContextKey{}).(authInfo)
	return info, ok
}

func currentUser(w http.ResponseWriter, r *http.Request) (models.User, bool) {
	info, ok := authFromContext(r.Context())
	if !ok {
		writeError(w, requestIDFromRequest(r), http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return models.User{}, false
	}
	return info.User, true
}

// requireAction resolves the caller and checks the action against the role
// table.
func requireAction(w http.ResponseWriter, r *http.Request, action access.Action) (models.User, bool) {
	user, ok := currentUser(w, r)
	if !ok {
		return models.User{}, false
	}
	if !access.Allowed(user.Role, action) {
		writeError(w, requestIDFromRequest(r), http.StatusForbidden, "access_denied", "not enough permissions")
		return models.User{}, false
	}
	return user, true
}

func requestIDFromRequest(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Request-ID"))
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.Fields(header)
	if len(parts) != 2 {
		return ""
	}
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}
	return parts[1]
}

func isPublicEndpoint(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/health", "/metrics":
		return true
	case "/api/auth/register", "/api/auth/login":
		return r.Method == http.MethodPost || r.Method == http.MethodOptions
	default:
		if strings.HasPrefix(r.URL.Path, livePrefix+"/") {
			return true
		}
		return r.Method == http.MethodOptions
	}
}
