package postgres

import (
	"reflect"
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/access"
)

func TestScopeConditions(t *testing.T) {
	cases := []struct {
		name       string
		scope      access.Scope
		conditions []string
		args       []interface{}
	}{
		{"unrestricted", access.Scope{}, nil, nil},
		{"none", access.Scope{None: true}, []string{"FALSE"}, nil},
		{"customer", access.Scope{CustomerID: "c1"}, []string{"customer_id = $1"}, []interface{}{"c1"}},
		{
			"team or assignee",
			access.Scope{TeamIDs: []string{"t1"}, AssignedToID: "u1", TeamOrAssignee: true},
			[]string{"(assigned_team_id = ANY($2::uuid[]) OR assigned_to_id = $1)"},
			[]interface{}{"u1", []string{"t1"}},
		},
		{
			"assignee without team",
			access.Scope{AssignedToID: "u1", TeamOrAssignee: true},
			[]string{"assigned_to_id = $1"},
			[]interface{}{"u1"},
		},
		{"assigned only", access.Scope{AssignedToID: "u1"}, []string{"assigned_to_id = $1"}, []interface{}{"u1"}},
		{
			"managed teams",
			access.Scope{TeamIDs: []string{"t1", "t2"}},
			[]string{"assigned_team_id = ANY($1::uuid[])"},
			[]interface{}{[]string{"t1", "t2"}},
		},
	}

	for _, tt := range cases {
		conditions, args := scopeConditions(tt.scope, nil)
		if !reflect.DeepEqual(conditions, tt.conditions) {
			t.Fatalf("%s: conditions %v, want %v", tt.name, conditions, tt.conditions)
		}
		if !reflect.DeepEqual(args, tt.args) {
			t.Fatalf("%s: args %v, want %v", tt.name, args, tt.args)
		}
	}
}

func TestScopeConditionsContinueNumbering(t *testing.T) {
	conditions, args := scopeConditions(access.Scope{CustomerID: "c1"}, []interface{}{"open"})
	if len(conditions) != 1 || conditions[0] != "customer_id = $2" {
		t.Fatalf("unexpected conditions %v", conditions)
	}
	if len(args) != 2 {
		t.Fatalf("expected 2 args, got %d", len(args))
	}
	if got := whereClause(conditions); got != " WHERE customer_id = $2" {
		t.Fatalf("unexpected where clause %q", got)
	}
	if got := whereClause(nil); got != "" {
		t.Fatalf("expected empty where clause, got %q", got)
	}
}

func TestNormalizePage(t *testing.T) {
	cases := []struct {
		skip, limit         int
		wantSkip, wantLimit int
	}{
		{0, 0, 0, 100},
		{-5, 50, 0, 50},
		{10, 5000, 10, 1000},
	}
	for _, tt := range cases {
		skip, limit := normalizePage(tt.skip, tt.limit)
		if skip != tt.wantSkip || limit != tt.wantLimit {
			t.Fatalf("normalizePage(%d, %d)=(%d, %d)", tt.skip, tt.limit, skip, limit)
		}
	}
}
