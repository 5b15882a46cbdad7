// Package client implements the HTTP client for the taskwire REST API.
// It handles authentication and carries the bearer token on every call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
)

// Client talks to a taskwire server.
type Client struct {
	baseURL    string
	httpClient *http.Client

	token  string
	userID uuid.UUID
}

// New creates a client for the server at baseURL (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// UserID returns the authenticated user's ID. Zero until Login succeeds.
func (c *Client) UserID() uuid.UUID { return c.userID }

// Token returns the current access token. Empty until Login succeeds.
func (c *Client) Token() string { return c.token }

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID      uuid.UUID `json:"user_id"`
	AccessToken string    `json:"token"`
}

// User is the public user projection returned by the directory endpoint.
type User struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
}

// Login authenticates with email and password and stores the session
// token for subsequent calls.
func (c *Client) Login(ctx context.Context, email, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return err
	}

	c.token = resp.AccessToken
	c.userID = resp.UserID
	return nil
}

// Register creates an account and stores the session token.
func (c *Client) Register(ctx context.Context, email, displayName, password string) error {
	var resp authResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/register", map[string]string{
		"email":        email,
		"display_name": displayName,
		"password":     password,
	}, &resp)
	if err != nil {
		return err
	}

	c.token = resp.AccessToken
	c.userID = resp.UserID
	return nil
}

// ListTasks fetches every task the session user participates in.
func (c *Client) ListTasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// ListUsers fetches the user directory.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// CreateTask creates a task with the given title and default fields.
func (c *Client) CreateTask(ctx context.Context, title string) (*domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPost, "/api/tasks", map[string]string{"title": title}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// SetTaskStatus updates one task's status. Updates are partial: fields
// not sent keep their current values.
func (c *Client) SetTaskStatus(ctx context.Context, taskID uuid.UUID, status domain.Status) (*domain.Task, error) {
	var task domain.Task
	err := c.do(ctx, http.MethodPut, "/api/tasks/"+taskID.String(),
		map[string]string{"status": string(status)}, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task. The removal also reaches this client as a
// pushed task:deleted event.
func (c *Client) DeleteTask(ctx context.Context, taskID uuid.UUID) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+taskID.String(), nil, nil)
}

type errorResponse struct {
	Error string `json:"error"`
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// do performs one JSON request/response round trip.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errResp errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errResp); decodeErr == nil {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
