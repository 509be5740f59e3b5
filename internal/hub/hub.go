package hub

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/models"
)

const (
	EventComplaintCreated  = "complaint.created"
	EventComplaintUpdated  = "complaint.updated"
	EventComplaintAssigned = "complaint.assigned"
	EventSLABreached       = "complaint.sla_breached"
	EventChatResponse      = "chatbot.response"
)

// Client is one live connection. Scope limits which complaint events reach it.
type Client struct {
	ID     string
	UserID string
	Send   chan []byte

	mu         sync.RWMutex
	scope      access.Scope
	subscribed bool
}

type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	CreatedAt time.Time   `json:"created_at"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
}

func New() *Hub {
	return &Hub{clients: make(map[string]*Client)}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	close(client.Send)
}

func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (c *Client) Subscribe(scope access.Scope) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope = scope
	c.subscribed = true
}

func (c *Client) Unsubscribe() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subscribed = false
}

func (c *Client) wants(complaint models.Complaint) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscribed && c.scope.Matches(complaint)
}

// PublishComplaint fans an event out to every subscribed client whose scope
// covers the complaint. Slow clients drop messages rather than block.
func (h *Hub) PublishComplaint(eventType string, complaint models.Complaint, extra interface{}) {
	payload := map[string]interface{}{"complaint": complaint}
	if extra != nil {
		payload["detail"] = extra
	}
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload, CreatedAt: time.Now().UTC()})
	if err != nil {
		log.Printf("hub marshal error type=%s err=%v", eventType, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if !client.wants(complaint) {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("hub drop message client=%s type=%s", client.ID, eventType)
		}
	}
}

type ClientMessage struct {
	Action       string `json:"action"`
	Query        string `json:"query,omitempty"`
	AssignedToMe bool   `json:"assigned_to_me,omitempty"`
}

const (
	ActionSubscribe   = "subscribe"
	ActionUnsubscribe = "unsubscribe"
	ActionQuery       = "query"
)

func ParseMessage(data []byte) (ClientMessage, bool) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return ClientMessage{}, false
	}
	switch msg.Action {
	case ActionSubscribe, ActionUnsubscribe:
		return msg, true
	case ActionQuery:
		return msg, msg.Query != ""
	default:
		return ClientMessage{}, false
	}
}

func Encode(eventType string, payload interface{}) []byte {
	data, err := json.Marshal(Envelope{Type: eventType, Payload: payload, CreatedAt: time.Now().UTC()})
	if err != nil {
		log.Printf("hub marshal error type=%s err=%v", eventType, err)
		return nil
	}
	return data
}
