package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwire/taskwire/internal/domain"
	"github.com/taskwire/taskwire/internal/mocks"
	"github.com/taskwire/taskwire/internal/service/auth"
)

func TestRegister(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
	hasher := &mocks.MockPasswordHasher{}
	verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}

	handler := NewAuthHandler(userStore, jwtService, hasher, verifier)

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid registration",
			payload: map[string]interface{}{
				"email":        "test@example.com",
				"display_name": "Test User",
				"password":     "password123",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "display name is optional",
			payload: map[string]interface{}{
				"email":    "minimal@example.com",
				"password": "password123",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"email":    "invalid-email",
				"password": "password123",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			payload: map[string]interface{}{
				"email":    "test2@example.com",
				"password": "short",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing email",
			payload: map[string]interface{}{
				"password": "password123",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing password",
			payload: map[string]interface{}{
				"email": "test3@example.com",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payloadBytes))
			req.Header.Set("Content-Type", "application/json")
			recorder := httptest.NewRecorder()

			handler.Register(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantToken {
				var authResp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&authResp))
				assert.NotEqual(t, uuid.Nil, authResp.UserID)
				assert.Equal(t, "test-token", authResp.AccessToken)
				assert.Equal(t, "test-refresh", authResp.RefreshToken)
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
	handler := NewAuthHandler(userStore, jwtService, &mocks.MockPasswordHasher{}, &mocks.MockPasswordVerifier{})

	payload := []byte(`{"email":"dup@example.com","password":"password123"}`)

	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payload))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code)

	req = httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payload))
	recorder = httptest.NewRecorder()
	handler.Register(recorder, req)
	assert.Equal(t, http.StatusConflict, recorder.Code)
}

func TestRegister_NeverStoresPlaintext(t *testing.T) {
	t.Parallel()

	userStore := mocks.NewMockUserStore()
	jwtService := &mocks.MockJWTService{Token: "t", RefreshToken: "r"}
	handler := NewAuthHandler(userStore, jwtService, &mocks.MockPasswordHasher{}, &mocks.MockPasswordVerifier{})

	payload := []byte(`{"email":"safe@example.com","password":"password123"}`)
	req := httptest.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(payload))
	recorder := httptest.NewRecorder()
	handler.Register(recorder, req)
	require.Equal(t, http.StatusCreated, recorder.Code)

	stored := userStore.Users["safe@example.com"]
	require.NotNil(t, stored)
	assert.Empty(t, stored.Password, "plaintext password must be cleared before storage")
	assert.Equal(t, "hashed:password123", stored.HashedPassword)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	testEmail := "login@example.com"

	newHandler := func(verifier *mocks.MockPasswordVerifier) *AuthHandler {
		userStore := mocks.NewMockUserStore()
		userStore.Users[testEmail] = &domain.User{
			ID:             userID,
			Email:          testEmail,
			HashedPassword: "stored-hash",
		}
		jwtService := &mocks.MockJWTService{Token: "test-token", RefreshToken: "test-refresh"}
		return NewAuthHandler(userStore, jwtService, &mocks.MockPasswordHasher{}, verifier)
	}

	tests := []struct {
		name       string
		payload    map[string]interface{}
		verifier   *mocks.MockPasswordVerifier
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid login",
			payload: map[string]interface{}{
				"email":    testEmail,
				"password": "password123",
			},
			verifier:   &mocks.MockPasswordVerifier{ShouldSucceed: true},
			wantStatus: http.StatusOK,
			wantToken:  true,
		},
		{
			name: "wrong password",
			payload: map[string]interface{}{
				"email":    testEmail,
				"password": "wrong",
			},
			verifier:   &mocks.MockPasswordVerifier{ShouldSucceed: false},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "unknown email",
			payload: map[string]interface{}{
				"email":    "nobody@example.com",
				"password": "password123",
			},
			verifier:   &mocks.MockPasswordVerifier{ShouldSucceed: true},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "malformed email",
			payload: map[string]interface{}{
				"email":    "not-an-email",
				"password": "password123",
			},
			verifier:   &mocks.MockPasswordVerifier{ShouldSucceed: true},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payloadBytes, err := json.Marshal(tt.payload)
			require.NoError(t, err)

			req := httptest.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(payloadBytes))
			recorder := httptest.NewRecorder()

			newHandler(tt.verifier).Login(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
			if tt.wantToken {
				var authResp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&authResp))
				assert.Equal(t, userID, authResp.UserID)
				assert.Equal(t, "test-token", authResp.AccessToken)
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("valid refresh token", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{
			Token:        "new-access",
			RefreshToken: "new-refresh",
			Claims:       &auth.Claims{UserID: userID, TokenType: "refresh"},
		}
		handler := NewAuthHandler(mocks.NewMockUserStore(), jwtService,
			&mocks.MockPasswordHasher{}, &mocks.MockPasswordVerifier{})

		req := httptest.NewRequest("POST", "/api/auth/refresh",
			bytes.NewBufferString(`{"refresh_token":"old-refresh"}`))
		recorder := httptest.NewRecorder()
		handler.RefreshToken(recorder, req)

		require.Equal(t, http.StatusOK, recorder.Code)
		var resp RefreshTokenResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "new-access", resp.AccessToken)
		assert.Equal(t, "new-refresh", resp.RefreshToken)
	})

	t.Run("expired refresh token", func(t *testing.T) {
		t.Parallel()

		jwtService := &mocks.MockJWTService{ValidateRefreshErr: auth.ErrExpiredRefreshToken}
		handler := NewAuthHandler(mocks.NewMockUserStore(), jwtService,
			&mocks.MockPasswordHasher{}, &mocks.MockPasswordVerifier{})

		req := httptest.NewRequest("POST", "/api/auth/refresh",
			bytes.NewBufferString(`{"refresh_token":"stale"}`))
		recorder := httptest.NewRecorder()
		handler.RefreshToken(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("missing refresh token", func(t *testing.T) {
		t.Parallel()

		handler := NewAuthHandler(mocks.NewMockUserStore(), &mocks.MockJWTService{},
			&mocks.MockPasswordHasher{}, &mocks.MockPasswordVerifier{})

		req := httptest.NewRequest("POST", "/api/auth/refresh", bytes.NewBufferString(`{}`))
		recorder := httptest.NewRecorder()
		handler.RefreshToken(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
