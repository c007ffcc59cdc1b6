package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wricardo/game2048/game/engine"
	"github.com/wricardo/game2048/game/service"
)

// Client plays one session through the REST API
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// do sends body as JSON and decodes the response into out. Non-2xx
// responses become errors carrying the API's error message.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %s (%d)", method, path, apiErr.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: %s - %s", method, path, resp.Status, strings.TrimSpace(string(data)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

func (c *Client) sessionPath(suffix string) string {
	return fmt.Sprintf("/api/sessions/%s%s", c.sessionID, suffix)
}

// CreateSession starts a new session with the given preset ("" for the default)
func (c *Client) CreateSession(ctx context.Context, configID string) (*engine.GameState, error) {
	var body any
	if configID != "" {
		body = map[string]string{"config_id": configID}
	}

	var info service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", body, &info); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = info.ID
	return info.GameState, nil
}

func (c *Client) GetState(ctx context.Context) (*engine.GameState, error) {
	var state engine.GameState
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/state"), nil, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *Client) Move(ctx context.Context, direction string) (*service.MoveResult, error) {
	var result service.MoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/move"), map[string]any{"direction": direction}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) BulkMove(ctx context.Context, directions []string) (*service.BulkMoveResult, error) {
	var result service.BulkMoveResult
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/bulk-move"), map[string]any{"moves": directions}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Suggest(ctx context.Context) (*service.SuggestResult, error) {
	var result service.SuggestResult
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/suggest"), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type ResetResponse struct {
	Message string            `json:"message"`
	State   *engine.GameState `json:"state"`
}

func (c *Client) Reset(ctx context.Context) (*engine.GameState, error) {
	var resp ResetResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/reset"), nil, &resp); err != nil {
		return nil, fmt.Errorf("reset: %w", err)
	}
	return resp.State, nil
}
