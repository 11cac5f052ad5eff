// Package client implements the browser side of the budget application in
// Go: an HTTP API client, a file-persisted local budget store, and the
// push/pull sync protocol between them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"budgetbox-server/src/models"
)

var (
	// ErrUnauthorized means the token is missing, invalid or expired; the
	// user must log in again.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the requested snapshot does not exist.
	ErrNotFound = errors.New("not found")
)

// Client talks to the budgetbox API. Responses have exactly one schema per
// endpoint; anything else is an error.
type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// Login authenticates and installs the returned token on the client.
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", models.AuthRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

func (c *Client) Register(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var resp models.AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", models.AuthRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return nil, err
	}
	c.token = resp.Token
	return &resp, nil
}

// PushBudget sends the full budget with its claimed updatedAt. The response
// always carries the authoritative state: accepted=false means the server
// held a newer copy and returned it instead of taking the write.
func (c *Client) PushBudget(ctx context.Context, budget models.Budget) (*models.SyncResponse, error) {
	var resp models.SyncResponse
	err := c.do(ctx, http.MethodPost, "/api/budget/sync", models.SyncRequest{Budget: budget}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// PullResult is the outcome of PullLatest; Present is false when the server
// has no copy for this user.
type PullResult struct {
	Present   bool
	Budget    models.Budget
	UpdatedAt time.Time
}

func (c *Client) PullLatest(ctx context.Context) (*PullResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/budget/latest", nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return &PullResult{Present: false}, nil
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case resp.StatusCode >= 400:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var latest models.LatestResponse
	if err := json.NewDecoder(resp.Body).Decode(&latest); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &PullResult{Present: true, Budget: latest.Budget, UpdatedAt: latest.UpdatedAt}, nil
}

func (c *Client) CreateSnapshot(ctx context.Context, budget models.Budget) (*models.SnapshotCreatedResponse, error) {
	var resp models.SnapshotCreatedResponse
	err := c.do(ctx, http.MethodPost, "/api/history", models.SnapshotRequest{Budget: budget}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	var resp models.SnapshotListResponse
	err := c.do(ctx, http.MethodGet, "/api/history", nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.Snapshots, nil
}

// DeleteSnapshot reports how many rows were removed (0 or 1); deleting an
// unknown id is not an error.
func (c *Client) DeleteSnapshot(ctx context.Context, snapshotID int64) (int64, error) {
	var resp models.DeleteSnapshotResponse
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/history/%d", snapshotID), nil, &resp)
	if err != nil {
		return 0, err
	}
	return resp.Deleted, nil
}

// RestoreSnapshot fetches the stored copy; the caller applies it to the
// local store. Returns ErrNotFound when the id does not exist for this user.
func (c *Client) RestoreSnapshot(ctx context.Context, snapshotID int64) (*models.Budget, error) {
	var resp models.RestoreResponse
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/history/%d/restore", snapshotID), nil, &resp)
	if err != nil {
		return nil, err
	}
	return &resp.Budget, nil
}
