package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/farmfreshconnect/farmfresh-backend/pkg/enums"
)

// Order is an immutable-once-created record of a buyer's commitment to
// purchase a set of items from one specific farmer. Created only by the
// checkout transaction; afterwards only Status may change, and only forward.
type Order struct {
	ID        uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID   uuid.UUID         `gorm:"column:buyer_id;type:uuid;not null;index"`
	BuyerName string            `gorm:"column:buyer_name;not null"`
	FarmerID  uuid.UUID         `gorm:"column:farmer_id;type:uuid;not null;index"`
	Total     decimal.Decimal   `gorm:"column:total;type:numeric(12,2);not null"`
	Status    enums.OrderStatus `gorm:"column:status;type:text;not null;default:'Pending'"`
	Lines     []OrderLine       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
