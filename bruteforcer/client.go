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

	"github.com/wricardo/power-2048/game/engine"
	"github.com/wricardo/power-2048/game/service"
)

// Client plays one game at a time against the REST API
type Client struct {
	baseURL string
	gameID  string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GameID returns the game the client is playing
func (c *Client) GameID() string {
	return c.gameID
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
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
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("%s %s failed: %s - %s", method, path, resp.Status, errResp.Error)
		}
		return fmt.Errorf("%s %s failed: %s", method, path, resp.Status)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s response: %w", path, err)
	}
	return nil
}

// NewGame starts a game with the named rules; "" selects the server default
func (c *Client) NewGame(ctx context.Context, rules string) (*service.GameView, error) {
	var view service.GameView
	body := map[string]string{}
	if rules != "" {
		body["rules"] = rules
	}
	if err := c.do(ctx, http.MethodPost, "/api/new-game", body, &view); err != nil {
		return nil, err
	}
	c.gameID = view.GameID
	return &view, nil
}

// Resume continues an existing game
func (c *Client) Resume(ctx context.Context, gameID string) (*service.GameView, error) {
	var view service.GameView
	if err := c.do(ctx, http.MethodGet, "/api/game/"+gameID, nil, &view); err != nil {
		return nil, err
	}
	c.gameID = view.GameID
	return &view, nil
}

func (c *Client) Move(ctx context.Context, d engine.Direction) (*service.MoveResult, error) {
	var result service.MoveResult
	body := map[string]string{"game_id": c.gameID, "direction": string(d)}
	if err := c.do(ctx, http.MethodPost, "/api/move", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Undo(ctx context.Context) (*service.PowerUpResult, error) {
	var result service.PowerUpResult
	body := map[string]string{"game_id": c.gameID}
	if err := c.do(ctx, http.MethodPost, "/api/undo", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Swap(ctx context.Context, a, b engine.Position) (*service.PowerUpResult, error) {
	var result service.PowerUpResult
	body := map[string]interface{}{
		"game_id": c.gameID,
		"pos1":    []int{a.Row, a.Col},
		"pos2":    []int{b.Row, b.Col},
	}
	if err := c.do(ctx, http.MethodPost, "/api/swap", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Delete(ctx context.Context, value int) (*service.PowerUpResult, error) {
	var result service.PowerUpResult
	body := map[string]interface{}{"game_id": c.gameID, "number": value}
	if err := c.do(ctx, http.MethodPost, "/api/delete", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Rules fetches a rule set so the strategy can use its spawn odds
func (c *Client) Rules(ctx context.Context, name string) (*service.RulesInfo, error) {
	var info service.RulesInfo
	if err := c.do(ctx, http.MethodGet, "/api/rules/"+name, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
