package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskwire/taskwire/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email       string `json:"email"        validate:"required,email"`
	DisplayName string `json:"display_name" validate:"omitempty,max=100"`
	Password    string `json:"password"     validate:"required,min=8,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT token used for API authorization
	AccessToken string `json:"token"`

	// RefreshToken is the JWT token used to obtain new access tokens
	RefreshToken string `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint. Refreshing rotates both tokens.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// UserResponse is the public projection of a user. Password material is
// never part of any response shape.
type UserResponse struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// userToResponse converts a domain.User to a UserResponse.
func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}

// UpdateProfileRequest defines the payload for updating the authenticated
// user's profile.
type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// CreateTaskRequest defines the payload for creating a task. The task wire
// format uses camelCase field names.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty"`

	// DueDate is an RFC 3339 timestamp, or absent for no due date.
	DueDate string `json:"dueDate" validate:"omitempty"`

	Priority     domain.Priority `json:"priority"     validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status       domain.Status   `json:"status"       validate:"omitempty,oneof=ToDo InProgress Review Completed"`
	AssignedToID *uuid.UUID      `json:"assignedToId" validate:"omitempty"`
}

// UpdateTaskRequest defines the payload for a partial task update.
//
// Two kinds of optionality are in play. Plain pointer fields distinguish
// omitted (keep current value) from present. Nullable fields additionally
// distinguish an explicit JSON null, which clears the stored value; the
// null-clears rule applies uniformly to description, dueDate and
// assignedToId.
type UpdateTaskRequest struct {
	Title    *string          `json:"title"    validate:"omitempty,min=1,max=100"`
	Priority *domain.Priority `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH URGENT"`
	Status   *domain.Status   `json:"status"   validate:"omitempty,oneof=ToDo InProgress Review Completed"`

	Description  domain.Nullable[string]    `json:"description"`
	DueDate      domain.Nullable[string]    `json:"dueDate"`
	AssignedToID domain.Nullable[uuid.UUID] `json:"assignedToId"`
}
