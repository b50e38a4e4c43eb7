package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantDTO mirrors the optional line variant on the wire.
type VariantDTO struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// CartItemDTO is one cart line enriched with catalog data.
type CartItemDTO struct {
	ProductID          uuid.UUID       `json:"product_id"`
	ProductName        string          `json:"product_name"`
	ProductSlug        string          `json:"product_slug"`
	Image              *string         `json:"image,omitempty"`
	Quantity           int             `json:"quantity"`
	Variant            *VariantDTO     `json:"variant,omitempty"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	EffectiveUnitPrice decimal.Decimal `json:"effective_unit_price"`
	LineTotal          decimal.Decimal `json:"line_total"`
	AddedAt            time.Time       `json:"added_at"`
}

// CartDTO is the serialized cart plus derived totals.
type CartDTO struct {
	Items       []CartItemDTO   `json:"items"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	ItemCount   int             `json:"item_count"`
	UniqueItems int             `json:"unique_items"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// VariantInput is the optional variant selector on mutation payloads.
type VariantInput struct {
	Name  string `json:"name" validate:"required"`
	Value string `json:"value" validate:"required"`
}

// AddItemInput is the payload for adding a line to the cart.
type AddItemInput struct {
	ProductID uuid.UUID     `json:"product_id" validate:"required"`
	Quantity  int           `json:"quantity" validate:"required,min=1,max=99"`
	Variant   *VariantInput `json:"variant,omitempty"`
}

// UpdateQuantityInput is the payload for setting a line's quantity.
type UpdateQuantityInput struct {
	ProductID uuid.UUID     `json:"product_id" validate:"required"`
	Quantity  int           `json:"quantity" validate:"max=99"`
	Variant   *VariantInput `json:"variant,omitempty"`
}

// RemoveItemInput is the payload for dropping a line from the cart.
type RemoveItemInput struct {
	ProductID uuid.UUID     `json:"product_id" validate:"required"`
	Variant   *VariantInput `json:"variant,omitempty"`
}

func variantFromInput(input *VariantInput) *Variant {
	if input == nil {
		return nil
	}
	return &Variant{Name: input.Name, Value: input.Value}
}

func variantToDTO(variant *Variant) *VariantDTO {
	if variant == nil {
		return nil
	}
	return &VariantDTO{Name: variant.Name, Value: variant.Value}
}
