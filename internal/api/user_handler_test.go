package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/mocks"
)

func seedUser(store *mocks.MockUserStore, email, displayName string) *domain.User {
	user := &domain.User{
		ID:             uuid.New(),
		Email:          email,
		DisplayName:    displayName,
		HashedPassword: "hash",
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}
	store.Users[email] = user
	return user
}

func TestListUsers(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	me := seedUser(userStore, "b@example.com", "Me")
	seedUser(userStore, "a@example.com", "Other")

	handler := NewUserHandler(userStore, nil)

	req := asUser(httptest.NewRequest("GET", "/api/users", nil), me.ID)
	recorder := httptest.NewRecorder()
	handler.ListUsers(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp []UserResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "a@example.com", resp[0].Email, "directory is ordered by email")

	assert.NotContains(t, recorder.Body.String(), "password")
}

func TestListUsers_Unauthenticated(t *testing.T) {
	t.Parallel()

	handler := NewUserHandler(mocks.NewMockUserStore(), nil)

	recorder := httptest.NewRecorder()
	handler.ListUsers(recorder, httptest.NewRequest("GET", "/api/users", nil))

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestGetMe(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	me := seedUser(userStore, "me@example.com", "Me")
	handler := NewUserHandler(userStore, nil)

	req := asUser(httptest.NewRequest("GET", "/api/users/me", nil), me.ID)
	recorder := httptest.NewRecorder()
	handler.GetMe(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp UserResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, me.ID, resp.ID)
	assert.Equal(t, "me@example.com", resp.Email)
	assert.Equal(t, "Me", resp.DisplayName)
}

func TestUpdateMe(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	me := seedUser(userStore, "me@example.com", "Old Name")
	handler := NewUserHandler(userStore, nil)

	req := asUser(httptest.NewRequest("PATCH", "/api/users/me",
		bytes.NewBufferString(`{"display_name":"New Name"}`)), me.ID)
	recorder := httptest.NewRecorder()
	handler.UpdateMe(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)

	var resp UserResponse
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	assert.Equal(t, "New Name", resp.DisplayName)
	assert.Equal(t, "New Name", userStore.Users["me@example.com"].DisplayName)
}

func TestUpdateMe_Validation(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	me := seedUser(userStore, "me@example.com", "Name")
	handler := NewUserHandler(userStore, nil)

	tests := []struct {
		name string
		body string
	}{
		{"missing display name", `{}`},
		{"empty display name", `{"display_name":""}`},
		{"too long", `{"display_name":"` + string(bytes.Repeat([]byte("x"), 101)) + `"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := asUser(httptest.NewRequest("PATCH", "/api/users/me",
				bytes.NewBufferString(tt.body)), me.ID)
			recorder := httptest.NewRecorder()
			handler.UpdateMe(recorder, req)
			assert.Equal(t, http.StatusBadRequest, recorder.Code)
		})
	}
}
