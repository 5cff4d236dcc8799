package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartEntry is a buyer's raw pending-purchase intent. The owning farmer is
// never stored here; it is derived by joining against the listing at read
// time.
type CartEntry struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	BuyerID     uuid.UUID       `gorm:"column:buyer_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Unit        string          `gorm:"column:unit;not null"`
	ImageURL    string          `gorm:"column:image_url"`
	Quantity    int             `gorm:"column:quantity;not null"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
