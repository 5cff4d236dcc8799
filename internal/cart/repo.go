package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/db/models"
)

// Repository exposes raw cart entry persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartEntry, error)
	FindByBuyerAndProduct(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartEntry, error)
	Create(ctx context.Context, entry *models.CartEntry) (*models.CartEntry, error)
	UpdateQuantity(ctx context.Context, entryID uuid.UUID, quantity int) error
	Delete(ctx context.Context, buyerID, entryID uuid.UUID) error
	DeleteByIDs(ctx context.Context, buyerID uuid.UUID, entryIDs []uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a cart repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListByBuyer(ctx context.Context, buyerID uuid.UUID) ([]models.CartEntry, error) {
	var entries []models.CartEntry
	err := r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) FindByBuyerAndProduct(ctx context.Context, buyerID, productID uuid.UUID) (*models.CartEntry, error) {
	var entry models.CartEntry
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND product_id = ?", buyerID, productID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) Create(ctx context.Context, entry *models.CartEntry) (*models.CartEntry, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) UpdateQuantity(ctx context.Context, entryID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).
		Model(&models.CartEntry{}).
		Where("id = ?", entryID).
		UpdateColumn("quantity", quantity).Error
}

func (r *repository) Delete(ctx context.Context, buyerID, entryID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("buyer_id = ?", buyerID).
		Delete(&models.CartEntry{}, "id = ?", entryID).Error
}

func (r *repository) DeleteByIDs(ctx context.Context, buyerID uuid.UUID, entryIDs []uuid.UUID) error {
	if len(entryIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Where("buyer_id = ? AND id IN ?", buyerID, entryIDs).
		Delete(&models.CartEntry{}).Error
}
