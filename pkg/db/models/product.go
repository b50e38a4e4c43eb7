package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/maraneea/storefront-backend/pkg/enums"
)

// Product represents a catalog listing.
type Product struct {
	ID                 uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string                `gorm:"column:name;not null"`
	Slug               string                `gorm:"column:slug;not null;uniqueIndex"`
	SKU                string                `gorm:"column:sku;not null;uniqueIndex"`
	Description        string                `gorm:"column:description;not null"`
	ShortDescription   *string               `gorm:"column:short_description"`
	Category           enums.ProductCategory `gorm:"column:category;not null"`
	Price              decimal.Decimal       `gorm:"column:price;type:numeric(12,2);not null"`
	OriginalPrice      *decimal.Decimal      `gorm:"column:original_price;type:numeric(12,2)"`
	IsOnSale           bool                  `gorm:"column:is_on_sale;not null;default:false"`
	DiscountPercentage decimal.Decimal       `gorm:"column:discount_percentage;type:numeric(5,2);not null;default:0"`
	Stock              int                   `gorm:"column:stock;not null;default:0"`
	Tags               pq.StringArray        `gorm:"column:tags;type:text[]"`
	Images             pq.StringArray        `gorm:"column:images;type:text[]"`
	IsActive           bool                  `gorm:"column:is_active;not null;default:true"`
	IsFeatured         bool                  `gorm:"column:is_featured;not null;default:false"`
	CreatedAt          time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
