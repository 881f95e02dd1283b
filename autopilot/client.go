package autopilot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/wricardo/snake-game/game/engine"
	"github.com/wricardo/snake-game/game/service"
)

// Client drives one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

// NewClient creates a client for the game server at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client plays
func (c *Client) SessionID() string { return c.sessionID }

// UseSession resumes an existing session
func (c *Client) UseSession(id string) { c.sessionID = id }

// CreateSession creates a manual session so the game only advances on Tick
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.Snapshot, error) {
	body := map[string]interface{}{"manual": true}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	c.sessionID = session.ID
	return session.State, nil
}

// State returns the latest snapshot
func (c *Client) State(ctx context.Context) (*engine.Snapshot, error) {
	var snap engine.Snapshot
	if err := c.do(ctx, http.MethodGet, c.path("/state"), nil, &snap); err != nil {
		return nil, fmt.Errorf("get state: %w", err)
	}
	return &snap, nil
}

// Turn buffers a direction change
func (c *Client) Turn(ctx context.Context, d engine.Direction) (*service.DirectionResult, error) {
	var result service.DirectionResult
	if err := c.do(ctx, http.MethodPost, c.path("/direction"), map[string]string{"direction": d.String()}, &result); err != nil {
		return nil, fmt.Errorf("turn %s: %w", d, err)
	}
	return &result, nil
}

// Tick advances the game by steps ticks
func (c *Client) Tick(ctx context.Context, steps int) (*service.TickResult, error) {
	var result service.TickResult
	if err := c.do(ctx, http.MethodPost, c.path("/tick"), map[string]int{"steps": steps}, &result); err != nil {
		return nil, fmt.Errorf("tick: %w", err)
	}
	return &result, nil
}

type resetResponse struct {
	Message string          `json:"message"`
	State   engine.Snapshot `json:"state"`
}

// Reset restarts the game
func (c *Client) Reset(ctx context.Context) (*engine.Snapshot, error) {
	var resp resetResponse
	if err := c.do(ctx, http.MethodPost, c.path("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return &resp.State, nil
}

func (c *Client) path(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(data, &errResp) == nil && errResp["error"] != "" {
			return fmt.Errorf("%s", errResp["error"])
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}
	}
	return nil
}
