package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Room mirrors the server's room resource.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoomAPI is a thin client for the room REST collaborator.
type RoomAPI struct {
	// BaseURL of the server, e.g. "http://localhost:3000".
	BaseURL string
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
}

func (a *RoomAPI) client() *http.Client {
	if a.HTTPClient != nil {
		return a.HTTPClient
	}
	return http.DefaultClient
}

// CreateRoom calls POST /room?name=<string>.
func (a *RoomAPI) CreateRoom(ctx context.Context, name string) (*Room, error) {
	u := fmt.Sprintf("%s/room?name=%s", strings.TrimRight(a.BaseURL, "/"), url.QueryEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, nil)
	if err != nil {
		return nil, err
	}
	return a.doRoom(req)
}

// GetRoom calls GET /room/{id}.
func (a *RoomAPI) GetRoom(ctx context.Context, id string) (*Room, error) {
	u := fmt.Sprintf("%s/room/%s", strings.TrimRight(a.BaseURL, "/"), url.PathEscape(id))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	return a.doRoom(req)
}

func (a *RoomAPI) doRoom(req *http.Request) (*Room, error) {
	resp, err := a.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Error != "" {
			return nil, fmt.Errorf("server: %s (status %d)", body.Error, resp.StatusCode)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var room Room
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return nil, fmt.Errorf("decode room: %w", err)
	}
	return &room, nil
}
