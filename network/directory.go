package network

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionFull     = errors.New("session full")
)

// SessionInfo is a session as listed by the directory.
type SessionInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	MatchType  string `json:"matchType"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
}

// Directory queries the session directory.
type Directory struct {
	baseURL string
	client  *http.Client
}

func NewDirectory(baseURL string) *Directory {
	return &Directory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Find lists open sessions. An empty matchType lists all of them.
func (d *Directory) Find(ctx context.Context, matchType string) ([]SessionInfo, error) {
	u := d.baseURL + "/sessions"
	if matchType != "" {
		u += "?match=" + url.QueryEscape(matchType)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("find sessions: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("find sessions: unexpected status %d", resp.StatusCode)
	}
	var sessions []SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&sessions); err != nil {
		return nil, fmt.Errorf("decode sessions: %w", err)
	}
	return sessions, nil
}

// Join reserves a slot and returns the session to connect to.
func (d *Directory) Join(ctx context.Context, id string) (SessionInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/sessions/"+url.PathEscape(id)+"/join", nil)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("new request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return SessionInfo{}, fmt.Errorf("join session: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return SessionInfo{}, ErrSessionNotFound
	case http.StatusConflict:
		return SessionInfo{}, ErrSessionFull
	default:
		return SessionInfo{}, fmt.Errorf("join session: unexpected status %d", resp.StatusCode)
	}

	var info SessionInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return SessionInfo{}, fmt.Errorf("decode session: %w", err)
	}
	return info, nil
}
