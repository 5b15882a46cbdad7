package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwire/taskwire/internal/client"
	"github.com/taskwire/taskwire/internal/domain"
)

func TestLogin_StoresSession(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.com", body["email"])
		assert.Equal(t, "password123", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"user_id": userID,
			"token":   "access-token",
		})
	}))
	defer server.Close()

	c := client.New(server.URL)
	err := c.Login(context.Background(), "alice@example.com", "password123")

	require.NoError(t, err)
	assert.Equal(t, userID, c.UserID())
	assert.Equal(t, "access-token", c.Token())
}

func TestLogin_InvalidCredentials(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid credentials"})
	}))
	defer server.Close()

	c := client.New(server.URL)
	err := c.Login(context.Background(), "alice@example.com", "wrong")

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
	assert.Empty(t, c.Token())
}

func TestListTasks_SendsBearerToken(t *testing.T) {
	t.Parallel()

	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	task := domain.Task{
		ID:        uuid.New(),
		Title:     "Ship the release",
		Priority:  domain.PriorityHigh,
		Status:    domain.StatusInProgress,
		CreatorID: uuid.New(),
		DueDate:   &due,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"user_id": uuid.New(), "token": "the-token",
			})
		case "/api/tasks":
			require.Equal(t, "Bearer the-token", r.Header.Get("Authorization"))
			_ = json.NewEncoder(w).Encode([]domain.Task{task})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	c := client.New(server.URL)
	require.NoError(t, c.Login(context.Background(), "a@b.c", "password123"))

	tasks, err := c.ListTasks(context.Background())

	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, task.ID, tasks[0].ID)
	assert.Equal(t, task.Title, tasks[0].Title)
	require.NotNil(t, tasks[0].DueDate)
	assert.True(t, due.Equal(*tasks[0].DueDate))
}

func TestSetTaskStatus(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/tasks/"+taskID.String(), r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Completed", body["status"])

		_ = json.NewEncoder(w).Encode(domain.Task{
			ID:     taskID,
			Title:  "done now",
			Status: domain.StatusCompleted,
		})
	}))
	defer server.Close()

	c := client.New(server.URL)
	task, err := c.SetTaskStatus(context.Background(), taskID, domain.StatusCompleted)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, task.Status)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	taskID := uuid.New()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/tasks/"+taskID.String(), r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	c := client.New(server.URL)
	err := c.DeleteTask(context.Background(), taskID)

	require.NoError(t, err)
}

func TestDo_ServerErrorWithoutJSONBody(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	c := client.New(server.URL)
	_, err := c.ListTasks(context.Background())

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}
