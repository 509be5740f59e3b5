package access

import (
	"strings"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

const (
	PathLogin     = "/login"
	PathDashboard = "/dashboard"
)

type Route struct {
	Pattern      string
	Public       bool
	AllowedRoles []string
	RedirectTo   string
}

type GuardState struct {
	Loading bool
	User    *models.User
}

type DecisionKind string

const (
	DecisionRender   DecisionKind = "render"
	DecisionLoading  DecisionKind = "loading"
	DecisionRedirect DecisionKind = "redirect"
)

type Decision struct {
	Kind     DecisionKind `json:"kind"`
	Location string       `json:"location,omitempty"`
}

var adminOnly = []string{models.RoleAdmin}

var Routes = []Route{
	{Pattern: "/login", Public: true},
	{Pattern: "/register", Public: true},
	{Pattern: "/", RedirectTo: PathDashboard},
	{Pattern: "/dashboard"},
	{Pattern: "/complaints"},
	{Pattern: "/complaints/create"},
	{Pattern: "/complaints/:id"},
	{Pattern: "/admin", AllowedRoles: adminOnly},
	{Pattern: "/admin/users", AllowedRoles: adminOnly},
	{Pattern: "/admin/teams", AllowedRoles: adminOnly},
	{Pattern: "/admin/sla", AllowedRoles: adminOnly},
}

// Match resolves a concrete path against Routes. Literal patterns win over
// parameterised ones.
func Match(path string) (Route, bool) {
	path = normalizePath(path)
	for _, route := range Routes {
		if route.Pattern == path {
			return route, true
		}
	}
	for _, route := range Routes {
		if matchPattern(route.Pattern, path) {
			return route, true
		}
	}
	return Route{}, false
}

// Resolve is Match plus the catch-all: unknown paths go to the dashboard.
func Resolve(path string, state GuardState) Decision {
	route, ok := Match(path)
	if !ok {
		return Decision{Kind: DecisionRedirect, Location: PathDashboard}
	}
	return Guard(route, state)
}

func Guard(route Route, state GuardState) Decision {
	if state.Loading {
		return Decision{Kind: DecisionLoading}
	}
	if route.Public {
		if state.User != nil {
			return Decision{Kind: DecisionRedirect, Location: PathDashboard}
		}
		return Decision{Kind: DecisionRender}
	}
	if state.User == nil {
		return Decision{Kind: DecisionRedirect, Location: PathLogin}
	}
	if len(route.AllowedRoles) > 0 && !contains(route.AllowedRoles, state.User.Role) {
		return Decision{Kind: DecisionRedirect, Location: PathDashboard}
	}
	if route.RedirectTo != "" {
		return Decision{Kind: DecisionRedirect, Location: route.RedirectTo}
	}
	return Decision{Kind: DecisionRender}
}

func normalizePath(path string) string {
	path = strings.TrimSpace(path)
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func matchPattern(pattern, path string) bool {
	patternParts := strings.Split(strings.Trim(pattern, "/"), "/")
	pathParts := strings.Split(strings.Trim(path, "/"), "/")
	if len(patternParts) != len(pathParts) {
		return false
	}
	for i, part := range patternParts {
		if strings.HasPrefix(part, ":") {
			if pathParts[i] == "" {
				return false
			}
			continue
		}
		if part != pathParts[i] {
			return false
		}
	}
	return true
}

func contains(values []string, value string) bool {
	for _, item := range values {
		if item == value {
			return true
		}
	}
	return false
}
