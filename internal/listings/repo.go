package listings

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
)

// Repository exposes listing persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	List(ctx context.Context) ([]models.Listing, error)
	ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return nil, err
	}
	return listing, nil
}

func (r *repository) Update(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) List(ctx context.Context) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) ListByFarmer(ctx context.Context, farmerID uuid.UUID) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("farmer_id = ?", farmerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}
