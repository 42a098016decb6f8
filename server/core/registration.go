package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	cfg "github.com/automoto/blaster-mp/config"
)

// PlayerCounter reports how many players a server holds.
type PlayerCounter interface {
	PlayerCount() int
}

// Registration hosts this server in the session directory and keeps the
// entry alive with heartbeats.
type Registration struct {
	directoryURL string
	sessionID    string
	name         string
	address      string
	version      string
	matchType    string
	maxPlayers   int
	interval     time.Duration
	players      PlayerCounter
	client       *http.Client
}

type hostRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	MatchType  string `json:"matchType"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
}

type hostResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	Players int `json:"players"`
}

func NewRegistration(directoryURL, name, address, version string, maxPlayers int, players PlayerCounter) *Registration {
	return &Registration{
		directoryURL: directoryURL,
		name:         name,
		address:      address,
		version:      version,
		matchType:    cfg.Session.MatchType,
		maxPlayers:   maxPlayers,
		interval:     cfg.Session.HeartbeatInterval,
		players:      players,
		client:       &http.Client{Timeout: 5 * time.Second},
	}
}

// SessionID is the directory's ID for this server, empty until registered.
func (r *Registration) SessionID() string {
	return r.sessionID
}

// Run registers and heartbeats until ctx is done, then removes the entry.
func (r *Registration) Run(ctx context.Context) error {
	if err := r.register(ctx); err != nil {
		log.Printf("[registration] initial registration failed: %v", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.deregister()
			return nil
		case <-ticker.C:
			if err := r.sendHeartbeat(ctx); err != nil {
				log.Printf("[registration] heartbeat failed: %v", err)
			}
		}
	}
}

func (r *Registration) post(ctx context.Context, path string, v any) (*http.Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.directoryURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post: %w", err)
	}
	return resp, nil
}

func (r *Registration) register(ctx context.Context) error {
	resp, err := r.post(ctx, "/sessions", hostRequest{
		Name:       r.name,
		Address:    r.address,
		MatchType:  r.matchType,
		Players:    r.players.PlayerCount(),
		MaxPlayers: r.maxPlayers,
		Version:    r.version,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result hostResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.sessionID = result.ID
	log.Printf("[registration] hosted session %s", r.sessionID)
	return nil
}

func (r *Registration) sendHeartbeat(ctx context.Context) error {
	if r.sessionID == "" {
		return r.register(ctx)
	}

	resp, err := r.post(ctx, "/sessions/"+r.sessionID+"/heartbeat", heartbeatRequest{
		Players: r.players.PlayerCount(),
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Println("[registration] directory lost our session, re-registering")
		return r.register(ctx)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}

func (r *Registration) deregister() {
	if r.sessionID == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, r.directoryURL+"/sessions/"+r.sessionID, nil)
	if err != nil {
		return
	}
	resp, err := r.client.Do(req)
	if err != nil {
		log.Printf("[registration] destroy session: %v", err)
		return
	}
	resp.Body.Close()
	log.Printf("[registration] destroyed session %s", r.sessionID)
}
