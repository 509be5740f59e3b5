package httpapi

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/beashaj2001/complaintsManagement/internal/access"
	"github.com/beashaj2001/complaintsManagement/internal/chatbot"
	"github.com/beashaj2001/complaintsManagement/internal/hub"

	"github.com/google/uuid"
	"github.com/igm/sockjs-go/sockjs"
)

const livePrefix = "/api/chatbot/live"

type chatbotQueryRequest struct {
	Query string `json:"query"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func (h *Handler) handleChatbotQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAction(w, r, access.ActionChatbotQuery); !ok {
		return
	}

	var req chatbotQueryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, requestIDFromRequest(r), http.StatusBadRequest, "invalid_json", "invalid JSON payload")
		return
	}
	answer, err := h.bot.Answer(r.Context(), req.Query)
	if err != nil {
		writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

func (h *Handler) handleChatbotSuggestions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := currentUser(w, r); !ok {
		return
	}
	writeJSON(w, http.StatusOK, suggestionsResponse{Suggestions: chatbot.Suggestions()})
}

// liveHandler serves the SockJS channel. Clients authenticate with the same
// bearer token, passed as a header or as the token query parameter.
func (h *Handler) liveHandler() http.Handler {
	return sockjs.NewHandler(livePrefix, sockjs.DefaultOptions, func(session sockjs.Session) {
		req := session.Request()
		token := liveToken(req)
		if token == "" {
			_ = session.Close(4001, "missing token")
			return
		}
		info, err := h.authenticate(context.Background(), token)
		if err != nil {
			_ = session.Close(4002, "invalid token")
			return
		}

		client := &hub.Client{ID: uuid.NewString(), UserID: info.User.UserID, Send: make(chan []byte, 16)}
		h.hub.Register(client)
		h.metrics.SetLiveClients(h.hub.Count())
		defer func() {
			h.hub.Unregister(client)
			h.metrics.SetLiveClients(h.hub.Count())
		}()

		go func() {
			for msg := range client.Send {
				_ = session.Send(string(msg))
			}
		}()

		for {
			raw, err := session.Recv()
			if err != nil {
				return
			}
			msg, ok := hub.ParseMessage([]byte(raw))
			if !ok {
				continue
			}
			switch msg.Action {
			case hub.ActionSubscribe:
				scope, err := h.complaintScope(context.Background(), info.User, msg.AssignedToMe)
				if err != nil {
					log.Printf("live subscribe error user_id=%s err=%v", info.User.UserID, err)
					_ = session.Close(4003, "scope lookup failed")
					return
				}
				client.Subscribe(scope)
			case hub.ActionUnsubscribe:
				client.Unsubscribe()
			case hub.ActionQuery:
				if !access.Allowed(info.User.Role, access.ActionChatbotQuery) {
					_ = session.Close(4003, "access denied")
					return
				}
				h.answerLive(client, msg.Query)
			}
		}
	})
}

func (h *Handler) answerLive(client *hub.Client, query string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	answer, err := h.bot.Answer(ctx, query)
	if err != nil {
		_, _, msg := mapError(err)
		answer = chatbot.Response{Response: msg}
	}
	data := hub.Encode(hub.EventChatResponse, answer)
	if data == nil {
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Printf("live drop response client=%s", client.ID)
	}
}

func liveToken(r *http.Request) string {
	if r == nil {
		return ""
	}
	if token := bearerToken(r.Header.Get("Authorization")); token != "" {
		return token
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
