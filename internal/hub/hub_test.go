package hub

import (
	"encoding/json"
	"testing"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/models"
)

func teamPtr(value string) *string {
	return &value
}

func TestPublishComplaintRespectsScope(t *testing.T) {
	h := New()
	teamA := &Client{ID: "a", Send: make(chan []byte, 4)}
	teamB := &Client{ID: "b", Send: make(chan []byte, 4)}
	idle := &Client{ID: "c", Send: make(chan []byte, 4)}
	h.Register(teamA)
	h.Register(teamB)
	h.Register(idle)
	teamA.Subscribe(access.Scope{TeamIDs: []string{"team-a"}})
	teamB.Subscribe(access.Scope{TeamIDs: []string{"team-b"}})

	complaint := models.Complaint{ComplaintID: "c1", AssignedTeamID: teamPtr("team-a")}
	h.PublishComplaint(EventComplaintAssigned, complaint, nil)

	if len(teamA.Send) != 1 {
		t.Fatalf("expected team A to receive the event")
	}
	if len(teamB.Send) != 0 || len(idle.Send) != 0 {
		t.Fatalf("expected other clients to receive nothing")
	}

	var env struct {
		Type    string `json:"type"`
		Payload struct {
			Complaint models.Complaint `json:"complaint"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(<-teamA.Send, &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Type != EventComplaintAssigned || env.Payload.Complaint.ComplaintID != "c1" {
		t.Fatalf("unexpected envelope %+v", env)
	}

	teamA.Unsubscribe()
	h.PublishComplaint(EventComplaintUpdated, complaint, nil)
	if len(teamA.Send) != 0 {
		t.Fatalf("expected unsubscribed client to receive nothing")
	}
}

func TestPublishDropsForFullClient(t *testing.T) {
	h := New()
	client := &Client{ID: "slow", Send: make(chan []byte, 1)}
	h.Register(client)
	client.Subscribe(access.Scope{})

	h.PublishComplaint(EventComplaintCreated, models.Complaint{ComplaintID: "1"}, nil)
	h.PublishComplaint(EventComplaintCreated, models.Complaint{ComplaintID: "2"}, nil)
	if len(client.Send) != 1 {
		t.Fatalf("expected one buffered message, got %d", len(client.Send))
	}

	h.Unregister(client)
	h.Unregister(client)
	if h.Count() != 0 {
		t.Fatalf("expected no clients")
	}
}

func TestParseMessage(t *testing.T) {
	cases := []struct {
		raw string
		ok  bool
	}{
		{`{"action":"subscribe"}`, true},
		{`{"action":"subscribe","assigned_to_me":true}`, true},
		{`{"action":"unsubscribe"}`, true},
		{`{"action":"query","query":"balance"}`, true},
		{`{"action":"query"}`, false},
		{`{"action":"dance"}`, false},
		{`not json`, false},
	}
	for _, tt := range cases {
		if _, ok := ParseMessage([]byte(tt.raw)); ok != tt.ok {
			t.Fatalf("ParseMessage(%s) ok=%v, want %v", tt.raw, ok, tt.ok)
		}
	}
}
