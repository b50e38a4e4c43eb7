package models

import (
	"time"

	"github.com/google/uuid"
)

// Cart holds the line items a user has staged for checkout. Exactly one
// cart exists per user; clearing empties the items but keeps the record.
type Cart struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;uniqueIndex"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at"`
}

// CartItem is one product (plus optional variant) staged in a cart. The
// quantity bound is enforced at persistence time only; in-memory mutation
// leaves bounds checking to the service layer.
type CartItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID       uuid.UUID `gorm:"column:cart_id;type:uuid;not null"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	Quantity     int       `gorm:"column:quantity;not null;check:quantity >= 1 AND quantity <= 99"`
	VariantName  *string   `gorm:"column:variant_name"`
	VariantValue *string   `gorm:"column:variant_value"`
	AddedAt      time.Time `gorm:"column:added_at;not null"`
}
