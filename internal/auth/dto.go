package auth

import (
	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
)

// RegisterRequest captures the fields needed to open an account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token paired with the expired access token.
type RefreshRequest struct {
	AccessToken  string `json:"access_token" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserDTO is the account shape returned to clients.
type UserDTO struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	FullName    string             `json:"full_name"`
	AccountType *enums.AccountType `json:"account_type,omitempty"`
	PhoneNumber *string            `json:"phone_number,omitempty"`
}

// AuthResponse contains the tokens and user produced by register, login, and
// refresh.
type AuthResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	User         *UserDTO `json:"user"`
}

// UserFromModel maps the persistence model to the client-facing shape.
func UserFromModel(user *models.User) *UserDTO {
	if user == nil {
		return nil
	}
	return &UserDTO{
		ID:          user.ID,
		Email:       user.Email,
		FullName:    user.FullName,
		AccountType: user.AccountType,
		PhoneNumber: user.PhoneNumber,
	}
}
