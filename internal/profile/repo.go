package profile

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
)

// Repository exposes user persistence for profile operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a profile repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByID loads a user by their UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile persists the onboarding fields.
func (r *Repository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"account_type": user.AccountType,
			"phone_number": user.PhoneNumber,
		}).Error
}
