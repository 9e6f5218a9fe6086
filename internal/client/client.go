// Package client talks to the chat API and drives the debounced room-name
// validator used while a user types a new room title.
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

	"github.com/V4T54L/yapli/internal/domain"
)

const defaultCheckFailure = "Failed to check room name availability"

// ErrNetworkFailure is returned when the API could not be reached or answered
// with something that is not JSON.
var ErrNetworkFailure = errors.New("Network error while checking room name availability")

// APIError is a non-2xx answer from the API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// CheckResult is the answer to a room-name availability check.
type CheckResult struct {
	Available bool   `json:"available"`
	Title     string `json:"title"`
}

// Client is a small HTTP client for the chat API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for baseURL. token is sent as a bearer token when set.
func New(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

// WithToken returns a copy of c that authenticates with token.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

// CheckRoomName asks whether the caller could create a room titled title.
func (c *Client) CheckRoomName(ctx context.Context, title string) (CheckResult, error) {
	var out CheckResult
	if err := c.do(ctx, http.MethodPost, "/api/rooms/check-name", map[string]string{"title": title}, &out, defaultCheckFailure); err != nil {
		return CheckResult{}, err
	}
	return out, nil
}

// CreateRoom creates a room owned by the caller.
func (c *Client) CreateRoom(ctx context.Context, title string) (*domain.Chatroom, error) {
	var out domain.Chatroom
	if err := c.do(ctx, http.MethodPost, "/api/rooms", map[string]string{"title": title}, &out, "Failed to create room"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	in := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", in, &out, "Failed to log in"); err != nil {
		return "", err
	}
	return out.Token, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}, fallback string) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrNetworkFailure, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := fallback
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode body: %v", ErrNetworkFailure, err)
	}
	return nil
}

// ErrorMessage turns a client error into the text shown next to the input.
func ErrorMessage(err error) string {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Message
	case errors.Is(err, ErrNetworkFailure):
		return ErrNetworkFailure.Error()
	default:
		return defaultCheckFailure
	}
}
