package websocket

import (
	"encoding/json"
	"sync"
)

const (
	NoticeMail    = "mail"
	NoticeBalance = "balance"
)

// Notice is pushed to every open connection of one user.
type Notice struct {
	Type    string `json:"type"`
	Balance string `json:"balance,omitempty"`
	MailID  string `json:"mailId,omitempty"`
	Subject string `json:"subject,omitempty"`
}

type Hub struct {
	mu      sync.RWMutex
	clients map[string]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]map[*Client]struct{}),
	}
}

func (h *Hub) Register(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
}

func (h *Hub) Unregister(userID string, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[userID] == nil {
		return
	}
	delete(h.clients[userID], client)
	if len(h.clients[userID]) == 0 {
		delete(h.clients, userID)
	}
}

// Publish never blocks: a client whose buffer is full misses the notice.
func (h *Hub) Publish(userID string, notice Notice) {
	payload, err := json.Marshal(notice)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- payload:
		default:
		}
	}
}

func (h *Hub) Connected(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
