package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maraneea/storefront-backend/pkg/enums"
)

// Order is a checkout snapshot. Line pricing is frozen at creation so later
// catalog edits never change what the customer was charged.
type Order struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber   string              `gorm:"column:order_number;not null;uniqueIndex"`
	UserID        uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	Status        enums.OrderStatus   `gorm:"column:status;not null;default:'pending'"`
	PaymentMethod enums.PaymentMethod `gorm:"column:payment_method;not null"`
	PaymentStatus enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`

	ShippingName       string  `gorm:"column:shipping_name;not null"`
	ShippingPhone      string  `gorm:"column:shipping_phone;not null"`
	ShippingStreet     string  `gorm:"column:shipping_street;not null"`
	ShippingCity       string  `gorm:"column:shipping_city;not null"`
	ShippingProvince   string  `gorm:"column:shipping_province;not null"`
	ShippingPostalCode string  `gorm:"column:shipping_postal_code;not null"`
	ShippingCountry    string  `gorm:"column:shipping_country;not null;default:'Indonesia'"`
	ShippingNotes      *string `gorm:"column:shipping_notes"`

	Subtotal     decimal.Decimal `gorm:"column:subtotal;type:numeric(14,2);not null"`
	ShippingCost decimal.Decimal `gorm:"column:shipping_cost;type:numeric(12,2);not null"`
	Total        decimal.Decimal `gorm:"column:total;type:numeric(14,2);not null"`

	Items     []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem freezes one cart line at checkout time.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID    uuid.UUID       `gorm:"column:product_id;type:uuid;not null"`
	ProductName  string          `gorm:"column:product_name;not null"`
	Quantity     int             `gorm:"column:quantity;not null;check:quantity >= 1"`
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	VariantName  *string         `gorm:"column:variant_name"`
	VariantValue *string         `gorm:"column:variant_value"`
	LineTotal    decimal.Decimal `gorm:"column:line_total;type:numeric(14,2);not null"`
}
