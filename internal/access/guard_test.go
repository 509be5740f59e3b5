package access

import (
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/models"
)

func TestGuard(t *testing.T) {
	admin := &models.User{UserID: "u-admin", Role: models.RoleAdmin}
	customer := &models.User{UserID: "u-cust", Role: models.RoleCustomer}

	cases := []struct {
		name  string
		path  string
		state GuardState
		want  Decision
	}{
		{"loading wins", "/admin", GuardState{Loading: true, User: admin}, Decision{Kind: DecisionLoading}},
		{"login anonymous", "/login", GuardState{}, Decision{Kind: DecisionRender}},
		{"login signed in", "/login", GuardState{User: customer}, Decision{Kind: DecisionRedirect, Location: "/dashboard"}},
		{"register signed in", "/register", GuardState{User: admin}, Decision{Kind: DecisionRedirect, Location: "/dashboard"}},
		{"dashboard anonymous", "/dashboard", GuardState{}, Decision{Kind: DecisionRedirect, Location: "/login"}},
		{"dashboard customer", "/dashboard", GuardState{User: customer}, Decision{Kind: DecisionRender}},
		{"complaint detail", "/complaints/42", GuardState{User: customer}, Decision{Kind: DecisionRender}},
		{"complaint create", "/complaints/create", GuardState{User: customer}, Decision{Kind: DecisionRender}},
		{"admin as customer", "/admin/users", GuardState{User: customer}, Decision{Kind: DecisionRedirect, Location: "/dashboard"}},
		{"admin as admin", "/admin/sla", GuardState{User: admin}, Decision{Kind: DecisionRender}},
		{"admin anonymous", "/admin", GuardState{}, Decision{Kind: DecisionRedirect, Location: "/login"}},
		{"root", "/", GuardState{User: customer}, Decision{Kind: DecisionRedirect, Location: "/dashboard"}},
		{"root anonymous", "/", GuardState{}, Decision{Kind: DecisionRedirect, Location: "/login"}},
		{"unknown path", "/nowhere", GuardState{User: customer}, Decision{Kind: DecisionRedirect, Location: "/dashboard"}},
		{"trailing slash and query", "/complaints/?status=open", GuardState{User: customer}, Decision{Kind: DecisionRender}},
	}

	for _, tt := range cases {
		if got := Resolve(tt.path, tt.state); got != tt.want {
			t.Fatalf("%s: Resolve(%q)=%+v, want %+v", tt.name, tt.path, got, tt.want)
		}
	}
}

func TestMatchPrefersLiteral(t *testing.T) {
	route, ok := Match("/complaints/create")
	if !ok || route.Pattern != "/complaints/create" {
		t.Fatalf("expected literal route, got %+v ok=%v", route, ok)
	}
	route, ok = Match("/complaints/abc")
	if !ok || route.Pattern != "/complaints/:id" {
		t.Fatalf("expected param route, got %+v ok=%v", route, ok)
	}
	if _, ok := Match("/complaints/abc/notes"); ok {
		t.Fatalf("expected no match for deeper path")
	}
}
