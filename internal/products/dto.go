package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maraneea/storefront-backend/pkg/db/models"
	"github.com/maraneea/storefront-backend/pkg/enums"
)

// ProductSummary is the listing-page shape: enough to render a card.
type ProductSummary struct {
	ID                 uuid.UUID             `json:"id"`
	Name               string                `json:"name"`
	Slug               string                `json:"slug"`
	SKU                string                `json:"sku"`
	ShortDescription   *string               `json:"short_description,omitempty"`
	Category           enums.ProductCategory `json:"category"`
	Price              decimal.Decimal       `json:"price"`
	OriginalPrice      *decimal.Decimal      `json:"original_price,omitempty"`
	EffectivePrice     decimal.Decimal       `json:"effective_price"`
	IsOnSale           bool                  `json:"is_on_sale"`
	DiscountPercentage decimal.Decimal       `json:"discount_percentage"`
	Stock              int                   `json:"stock"`
	Image              *string               `json:"image,omitempty"`
	IsFeatured         bool                  `json:"is_featured"`
	CreatedAt          time.Time             `json:"created_at"`
}

// ProductListResult carries one page of summaries plus the next cursor.
type ProductListResult struct {
	Products   []ProductSummary `json:"products"`
	NextCursor string           `json:"next_cursor,omitempty"`
}

// ProductListFilters narrows the catalog listing.
type ProductListFilters struct {
	Category     *enums.ProductCategory
	Query        string
	PriceMin     *decimal.Decimal
	PriceMax     *decimal.Decimal
	OnSale       *bool
	FeaturedOnly bool
}

// CreateProductInput is the admin payload for a new listing. SKU and slug
// are generated when left empty.
type CreateProductInput struct {
	Name               string                `json:"name" validate:"required,min=2,max=200"`
	Description        string                `json:"description" validate:"required"`
	ShortDescription   *string               `json:"short_description,omitempty" validate:"omitempty,max=300"`
	Category           enums.ProductCategory `json:"category" validate:"required"`
	Price              decimal.Decimal       `json:"price" validate:"required"`
	OriginalPrice      *decimal.Decimal      `json:"original_price,omitempty"`
	IsOnSale           bool                  `json:"is_on_sale"`
	DiscountPercentage decimal.Decimal       `json:"discount_percentage"`
	Stock              int                   `json:"stock" validate:"min=0"`
	Tags               []string              `json:"tags,omitempty"`
	Images             []string              `json:"images,omitempty"`
	IsFeatured         bool                  `json:"is_featured"`
}

// UpdateProductInput carries partial updates; nil fields are untouched.
type UpdateProductInput struct {
	Name               *string          `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Description        *string          `json:"description,omitempty"`
	ShortDescription   *string          `json:"short_description,omitempty" validate:"omitempty,max=300"`
	Price              *decimal.Decimal `json:"price,omitempty"`
	OriginalPrice      *decimal.Decimal `json:"original_price,omitempty"`
	IsOnSale           *bool            `json:"is_on_sale,omitempty"`
	DiscountPercentage *decimal.Decimal `json:"discount_percentage,omitempty"`
	Stock              *int             `json:"stock,omitempty" validate:"omitempty,min=0"`
	Tags               []string         `json:"tags,omitempty"`
	Images             []string         `json:"images,omitempty"`
	IsActive           *bool            `json:"is_active,omitempty"`
	IsFeatured         *bool            `json:"is_featured,omitempty"`
}

// ToSummary flattens a product row into its listing shape.
func ToSummary(product *models.Product) ProductSummary {
	var image *string
	if len(product.Images) > 0 {
		first := product.Images[0]
		image = &first
	}
	return ProductSummary{
		ID:                 product.ID,
		Name:               product.Name,
		Slug:               product.Slug,
		SKU:                product.SKU,
		ShortDescription:   product.ShortDescription,
		Category:           product.Category,
		Price:              product.Price,
		OriginalPrice:      product.OriginalPrice,
		EffectivePrice:     EffectivePrice(product),
		IsOnSale:           product.IsOnSale,
		DiscountPercentage: product.DiscountPercentage,
		Stock:              product.Stock,
		Image:              image,
		IsFeatured:         product.IsFeatured,
		CreatedAt:          product.CreatedAt,
	}
}

var oneHundred = decimal.NewFromInt(100)

// EffectivePrice applies the sale discount when active.
func EffectivePrice(product *models.Product) decimal.Decimal {
	if product.IsOnSale && product.DiscountPercentage.GreaterThan(decimal.Zero) {
		factor := decimal.NewFromInt(1).Sub(product.DiscountPercentage.Div(oneHundred))
		return product.Price.Mul(factor)
	}
	return product.Price
}
