package main

import (
	"log"
	"sync"
)

const (
	maxConnsPerIP = 5
	maxTotalConns = 1000
)

// Hub manages all connected clients and routes them to matches
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	matches    *Registry
	// Connection limiting (mutex-protected, accessed from HTTP handlers)
	connMu     sync.Mutex
	ipConns    map[string]int
	totalConns int
	// Accounts & history (both optional; nil without a database)
	db   *DB
	auth *Auth
}

// NewHub creates a Hub playing for the given target word. db may be nil.
func NewHub(word TargetWord, db *DB) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client, 64),
		unregister: make(chan *Client, 64),
		matches:    NewRegistry(word),
		ipConns:    make(map[string]int),
		db:         db,
	}
	if db != nil {
		h.auth = NewAuth(db)
		h.matches.OnResult = h.recordResult
	}
	return h
}

// TryAccept reserves a connection slot for ip. Check and increment happen
// under one lock so racing upgrades cannot overshoot the caps; callers that
// get true must pair it with TrackDisconnect.
func (h *Hub) TryAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	h.ipConns[ip]++
	h.totalConns++
	return true
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
}

// Run processes register/unregister events
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			// A dropped connection counts as leaving the match
			if client.matchID != "" {
				if actor := h.matches.Get(client.matchID); actor != nil {
					actor.Unsubscribe(client)
					if client.playerName != "" {
						actor.Leave(client.playerName)
					}
				}
			}
		}
	}
}

// recordResult persists a finished match. Runs on the actor goroutine, so
// keep it short; sqlite writes are quick at this volume.
func (h *Hub) recordResult(res MatchResult) {
	if err := h.db.RecordMatch(res); err != nil {
		log.Printf("record match %s: %v", res.ID, err)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}
