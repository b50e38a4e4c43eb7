package cart

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/maraneea/storefront-backend/pkg/errors"
)

// Variant is a named product option (size, color) that distinguishes
// otherwise-identical lines. A nil *Variant means no option selected.
type Variant struct {
	Name  string
	Value string
}

// VariantEqual is the matching rule shared by every cart mutation: both nil,
// or both present with identical Name and Value.
func VariantEqual(a, b *Variant) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Name == b.Name && a.Value == b.Value
}

// LineItem is one product (plus optional variant) and a quantity. AddedAt is
// set when the line first appears and never refreshed by quantity changes.
type LineItem struct {
	ProductID uuid.UUID
	Quantity  int
	Variant   *Variant
	AddedAt   time.Time
}

// Cart is the aggregate the mutation operations transform. Operations mutate
// the value in place and leave persistence to the caller.
type Cart struct {
	UserID    uuid.UUID
	Items     []LineItem
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PriceInfo carries the pricing attributes the totals computation needs.
type PriceInfo struct {
	Price              decimal.Decimal
	IsOnSale           bool
	DiscountPercentage decimal.Decimal
}

// CatalogLookup resolves a product id to its pricing attributes.
type CatalogLookup interface {
	PriceInfo(ctx context.Context, productID uuid.UUID) (*PriceInfo, error)
}

// Totals is the derived summary of a cart.
type Totals struct {
	Subtotal    decimal.Decimal
	ItemCount   int
	UniqueItems int
}

var oneHundred = decimal.NewFromInt(100)

// AddItem merges quantity into the line matching (productID, variant), or
// appends a new line with AddedAt = now. Bounds beyond basic input sanity
// (stock, the 1..99 ceiling) are the caller's responsibility.
func (c *Cart) AddItem(productID uuid.UUID, quantity int, variant *Variant, now time.Time) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if quantity <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID && VariantEqual(c.Items[i].Variant, variant) {
			c.Items[i].Quantity += quantity
			c.UpdatedAt = now
			return nil
		}
	}

	c.Items = append(c.Items, LineItem{
		ProductID: productID,
		Quantity:  quantity,
		Variant:   variant,
		AddedAt:   now,
	})
	c.UpdatedAt = now
	return nil
}

// RemoveItem drops every line matching (productID, variant). Removing an
// absent line is a no-op, not an error.
func (c *Cart) RemoveItem(productID uuid.UUID, variant *Variant, now time.Time) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	kept := c.Items[:0]
	removed := false
	for _, item := range c.Items {
		if item.ProductID == productID && VariantEqual(item.Variant, variant) {
			removed = true
			continue
		}
		kept = append(kept, item)
	}
	c.Items = kept
	if removed {
		c.UpdatedAt = now
	}
	return nil
}

// UpdateQuantity sets the quantity on the matching line. A non-positive
// quantity behaves as RemoveItem. When no line matches, nothing happens and
// no line is created.
func (c *Cart) UpdateQuantity(productID uuid.UUID, newQuantity int, variant *Variant, now time.Time) error {
	if productID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if newQuantity <= 0 {
		return c.RemoveItem(productID, variant, now)
	}

	for i := range c.Items {
		if c.Items[i].ProductID == productID && VariantEqual(c.Items[i].Variant, variant) {
			c.Items[i].Quantity = newQuantity
			c.UpdatedAt = now
			return nil
		}
	}
	return nil
}

// Clear empties the item list. The cart record itself survives.
func (c *Cart) Clear(now time.Time) {
	if len(c.Items) == 0 {
		return
	}
	c.Items = nil
	c.UpdatedAt = now
}

// Totals resolves every line through the catalog and sums effective prices.
// Any unresolvable product fails the whole computation; no partial totals
// are ever returned.
func (c *Cart) Totals(ctx context.Context, catalog CatalogLookup) (*Totals, error) {
	if catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog lookup is required")
	}

	subtotal := decimal.Zero
	itemCount := 0
	for _, item := range c.Items {
		info, err := catalog.PriceInfo(ctx, item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, fmt.Sprintf("resolving product %s", item.ProductID))
		}
		unit := EffectiveUnitPrice(info)
		subtotal = subtotal.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
		itemCount += item.Quantity
	}

	return &Totals{
		Subtotal:    subtotal,
		ItemCount:   itemCount,
		UniqueItems: len(c.Items),
	}, nil
}

// EffectiveUnitPrice applies the sale discount when the product is on sale
// with a positive discount percentage.
func EffectiveUnitPrice(info *PriceInfo) decimal.Decimal {
	if info.IsOnSale && info.DiscountPercentage.GreaterThan(decimal.Zero) {
		factor := decimal.NewFromInt(1).Sub(info.DiscountPercentage.Div(oneHundred))
		return info.Price.Mul(factor)
	}
	return info.Price
}
