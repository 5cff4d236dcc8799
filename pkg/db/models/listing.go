package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Listing is a farmer's published produce offering.
type Listing struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FarmerID    uuid.UUID       `gorm:"column:farmer_id;type:uuid;not null;index"`
	FarmerName  string          `gorm:"column:farmer_name;not null"`
	ProductName string          `gorm:"column:product_name;not null"`
	Category    string          `gorm:"column:category;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	Unit        string          `gorm:"column:unit;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	Location    string          `gorm:"column:location"`
	ImageURL    string          `gorm:"column:image_url"`
	Description string          `gorm:"column:description"`
	PhoneNumber string          `gorm:"column:phone_number"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
