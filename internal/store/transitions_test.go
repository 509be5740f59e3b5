package store

import "testing"

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from  string
		to    string
		valid bool
	}{
		{"open", "inprocess", true},
		{"open", "pending", true},
		{"open", "closed", true},
		{"inprocess", "closed", true},
		{"pending", "inprocess", true},
		{"closed", "open", true},
		{"closed", "pending", false},
		{"closed", "inprocess", false},
		{"open", "open", true},
		{"open", "archived", false},
		{"unknown", "open", false},
	}

	for _, tt := range cases {
		if got := ValidTransition(tt.from, tt.to); got != tt.valid {
			t.Fatalf("ValidTransition(%q, %q)=%v, want %v", tt.from, tt.to, got, tt.valid)
		}
	}
}

func TestCanAssign(t *testing.T) {
	if CanAssign("closed") {
		t.Fatalf("closed complaints must not be assignable")
	}
	if !CanAssign("pending") {
		t.Fatalf("pending complaints must be assignable")
	}
}
