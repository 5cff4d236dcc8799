package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderLine captures the snapshot of each item within an order. The cart
// entry identifier is deliberately stripped; lines reference the listing.
type OrderLine struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID   uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Unit        string          `gorm:"column:unit;not null"`
	ImageURL    string          `gorm:"column:image_url"`
	Quantity    int             `gorm:"column:quantity;not null"`
}
