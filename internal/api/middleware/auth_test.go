package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskwire/taskwire/internal/mocks"
	"github.com/taskwire/taskwire/internal/service/auth"
)

func okHandler(t *testing.T, wantUserID uuid.UUID) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := GetUserID(r)
		require.True(t, ok, "user ID must be present downstream of the middleware")
		assert.Equal(t, wantUserID, userID)
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_ValidToken(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	jwtService := &mocks.MockJWTService{
		Claims: &auth.Claims{UserID: userID, TokenType: "access"},
	}
	middleware := NewAuthMiddleware(jwtService)

	req := httptest.NewRequest("GET", "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer some-token")
	recorder := httptest.NewRecorder()

	middleware.Authenticate(okHandler(t, userID)).ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestAuthenticate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		authHeader string
		jwtService *mocks.MockJWTService
		wantStatus int
	}{
		{
			name:       "missing header",
			authHeader: "",
			jwtService: &mocks.MockJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not bearer",
			authHeader: "Basic dXNlcjpwYXNz",
			jwtService: &mocks.MockJWTService{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer stale",
			jwtService: &mocks.MockJWTService{ValidateErr: auth.ErrExpiredToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: "Bearer garbage",
			jwtService: &mocks.MockJWTService{ValidateErr: auth.ErrInvalidToken},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "refresh token on access endpoint",
			authHeader: "Bearer refresh-token",
			jwtService: &mocks.MockJWTService{ValidateErr: auth.ErrWrongTokenType},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "token not yet valid",
			authHeader: "Bearer early",
			jwtService: &mocks.MockJWTService{ValidateErr: auth.ErrTokenNotYetValid},
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			middleware := NewAuthMiddleware(tt.jwtService)
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("next handler must not run for rejected requests")
			})

			req := httptest.NewRequest("GET", "/api/tasks", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			recorder := httptest.NewRecorder()

			middleware.Authenticate(next).ServeHTTP(recorder, req)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestGetUserID_Absent(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	_, ok := GetUserID(req)
	assert.False(t, ok)
}
