package main

import (
	"errors"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session full")
)

// SessionInfo describes a hosted session visible to clients.
type SessionInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	MatchType  string `json:"matchType"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
}

// Open reports whether the session has a free slot.
func (s SessionInfo) Open() bool {
	return s.MaxPlayers <= 0 || s.Players < s.MaxPlayers
}

type sessionRecord struct {
	SessionInfo
	LastSeen time.Time
}

// Registry is an in-memory store of hosted sessions with TTL-based expiry.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*sessionRecord
	ttl      time.Duration
	now      func() time.Time
	stopCh   chan struct{}
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		sessions: make(map[string]*sessionRecord),
		ttl:      ttl,
		now:      time.Now,
		stopCh:   make(chan struct{}),
	}
}

// Start runs expiry in the background until Stop.
func (r *Registry) Start() {
	go r.cleanupLoop()
}

func (r *Registry) Stop() {
	close(r.stopCh)
}

// Host adds a session and returns its ID.
func (r *Registry) Host(info SessionInfo) string {
	info.ID = uuid.NewString()

	r.mu.Lock()
	r.sessions[info.ID] = &sessionRecord{
		SessionInfo: info,
		LastSeen:    r.now(),
	}
	n := len(r.sessions)
	r.mu.Unlock()

	sessionsActive.Set(float64(n))
	return info.ID
}

// Find lists open sessions, optionally only those of one match type.
func (r *Registry) Find(matchType string) []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]SessionInfo, 0, len(r.sessions))
	for _, rec := range r.sessions {
		if matchType != "" && rec.MatchType != matchType {
			continue
		}
		if !rec.Open() {
			continue
		}
		result = append(result, rec.SessionInfo)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Join reserves a slot in a session. The next heartbeat replaces the
// reserved count with the server's real one.
func (r *Registry) Join(id string) (SessionInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return SessionInfo{}, ErrSessionNotFound
	}
	if !rec.Open() {
		return SessionInfo{}, ErrSessionFull
	}
	rec.Players++
	return rec.SessionInfo, nil
}

func (r *Registry) Heartbeat(id string, players int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[id]
	if !ok {
		return false
	}
	rec.LastSeen = r.now()
	rec.Players = players
	return true
}

// Destroy removes a session. It reports whether the session existed.
func (r *Registry) Destroy(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()

	sessionsActive.Set(float64(n))
	return ok
}

func (r *Registry) cleanupLoop() {
	ticker := time.NewTicker(r.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.expire()
		}
	}
}

// expire drops sessions whose last heartbeat is older than the TTL.
func (r *Registry) expire() {
	r.mu.Lock()
	now := r.now()
	for id, rec := range r.sessions {
		if now.Sub(rec.LastSeen) >= r.ttl {
			log.Printf("[master] expired session %q (id=%s, last seen %s ago)",
				rec.Name, id, now.Sub(rec.LastSeen).Round(time.Second))
			delete(r.sessions, id)
			sessionsExpired.Inc()
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	sessionsActive.Set(float64(n))
}
