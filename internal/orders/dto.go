package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maraneea/storefront-backend/pkg/db/models"
	"github.com/maraneea/storefront-backend/pkg/enums"
)

// ShippingAddressInput captures the delivery address supplied at checkout.
type ShippingAddressInput struct {
	Name       string  `json:"name" validate:"required,max=120"`
	Phone      string  `json:"phone" validate:"required,max=32"`
	Street     string  `json:"street" validate:"required,max=255"`
	City       string  `json:"city" validate:"required,max=120"`
	Province   string  `json:"province" validate:"required,max=120"`
	PostalCode string  `json:"postal_code" validate:"required,max=16"`
	Country    string  `json:"country" validate:"omitempty,max=120"`
	Notes      *string `json:"notes" validate:"omitempty,max=500"`
}

// CheckoutInput is the request body for converting a cart into an order.
type CheckoutInput struct {
	PaymentMethod   string               `json:"payment_method" validate:"required"`
	ShippingAddress ShippingAddressInput `json:"shipping_address" validate:"required"`
}

// OrderItemDTO is one frozen line of a placed order.
type OrderItemDTO struct {
	ProductID    uuid.UUID       `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	VariantName  *string         `json:"variant_name,omitempty"`
	VariantValue *string         `json:"variant_value,omitempty"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// OrderDTO is the full order view returned to the owning customer.
type OrderDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`

	ShippingName       string  `json:"shipping_name"`
	ShippingPhone      string  `json:"shipping_phone"`
	ShippingStreet     string  `json:"shipping_street"`
	ShippingCity       string  `json:"shipping_city"`
	ShippingProvince   string  `json:"shipping_province"`
	ShippingPostalCode string  `json:"shipping_postal_code"`
	ShippingCountry    string  `json:"shipping_country"`
	ShippingNotes      *string `json:"shipping_notes,omitempty"`

	Subtotal     decimal.Decimal `json:"subtotal"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	Total        decimal.Decimal `json:"total"`

	Items     []OrderItemDTO `json:"items"`
	CreatedAt time.Time      `json:"created_at"`
}

// OrderSummaryDTO is the condensed row used by order history listings.
type OrderSummaryDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Total         decimal.Decimal     `json:"total"`
	ItemCount     int                 `json:"item_count"`
	CreatedAt     time.Time           `json:"created_at"`
}

// OrderListResult carries one page of a user's order history.
type OrderListResult struct {
	Orders     []OrderSummaryDTO `json:"orders"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

func toOrderDTO(order *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemDTO{
			ProductID:    item.ProductID,
			ProductName:  item.ProductName,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			VariantName:  item.VariantName,
			VariantValue: item.VariantValue,
			LineTotal:    item.LineTotal,
		})
	}
	return &OrderDTO{
		ID:                 order.ID,
		OrderNumber:        order.OrderNumber,
		Status:             order.Status,
		PaymentMethod:      order.PaymentMethod,
		PaymentStatus:      order.PaymentStatus,
		ShippingName:       order.ShippingName,
		ShippingPhone:      order.ShippingPhone,
		ShippingStreet:     order.ShippingStreet,
		ShippingCity:       order.ShippingCity,
		ShippingProvince:   order.ShippingProvince,
		ShippingPostalCode: order.ShippingPostalCode,
		ShippingCountry:    order.ShippingCountry,
		ShippingNotes:      order.ShippingNotes,
		Subtotal:           order.Subtotal,
		ShippingCost:       order.ShippingCost,
		Total:              order.Total,
		Items:              items,
		CreatedAt:          order.CreatedAt,
	}
}

func toOrderSummary(order *models.Order) OrderSummaryDTO {
	count := 0
	for _, item := range order.Items {
		count += item.Quantity
	}
	return OrderSummaryDTO{
		ID:            order.ID,
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.Total,
		ItemCount:     count,
		CreatedAt:     order.CreatedAt,
	}
}
