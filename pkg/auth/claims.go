package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID      uuid.UUID
	FullName    string
	AccountType *enums.AccountType
	JTI         string
}

// AccessTokenClaims represents the typed JWT issued to clients.
type AccessTokenClaims struct {
	UserID      uuid.UUID          `json:"user_id"`
	FullName    string             `json:"full_name"`
	AccountType *enums.AccountType `json:"account_type,omitempty"`
	jwt.RegisteredClaims
}
