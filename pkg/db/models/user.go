package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
)

// User is a marketplace account. AccountType stays null until the profile
// completion step assigns a role.
type User struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string             `gorm:"column:email;not null;uniqueIndex"`
	FullName     string             `gorm:"column:full_name;not null"`
	PasswordHash string             `gorm:"column:password_hash;not null"`
	AccountType  *enums.AccountType `gorm:"column:account_type;type:text"`
	PhoneNumber  *string            `gorm:"column:phone_number"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
