package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/maraneea/storefront-backend/pkg/errors"
)

type stubCatalog struct {
	prices map[uuid.UUID]*PriceInfo
}

func (s *stubCatalog) PriceInfo(ctx context.Context, productID uuid.UUID) (*PriceInfo, error) {
	info, ok := s.prices[productID]
	if !ok {
		return nil, fmt.Errorf("product %s not found", productID)
	}
	return info, nil
}

func TestAddItemMergesMatchingLines(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	variant := &Variant{Name: "Size", Value: "M"}
	cart := &Cart{UserID: uuid.New()}

	if err := cart.AddItem(productID, 2, variant, now); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if err := cart.AddItem(productID, 3, &Variant{Name: "Size", Value: "M"}, now.Add(time.Minute)); err != nil {
		t.Fatalf("second add: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected one merged line, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
	if !cart.Items[0].AddedAt.Equal(now) {
		t.Fatal("AddedAt must keep the first-create timestamp")
	}
	if !cart.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatal("UpdatedAt must reflect the latest mutation")
	}
}

func TestAddItemVariantAndNilAreDistinctLines(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}

	if err := cart.AddItem(productID, 1, &Variant{Name: "Size", Value: "M"}, now); err != nil {
		t.Fatalf("add with variant: %v", err)
	}
	if err := cart.AddItem(productID, 1, nil, now); err != nil {
		t.Fatalf("add without variant: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("expected two distinct lines, got %d", len(cart.Items))
	}
}

func TestAddItemDifferentVariantValuesAreDistinct(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}

	for _, value := range []string{"S", "M", "L"} {
		if err := cart.AddItem(productID, 1, &Variant{Name: "Size", Value: value}, now); err != nil {
			t.Fatalf("add %s: %v", value, err)
		}
	}

	if len(cart.Items) != 3 {
		t.Fatalf("expected three lines, got %d", len(cart.Items))
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	cart := &Cart{UserID: uuid.New()}

	err := cart.AddItem(uuid.Nil, 1, nil, time.Now())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for nil product id, got %v", err)
	}

	err = cart.AddItem(uuid.New(), 0, nil, time.Now())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}

	if len(cart.Items) != 0 {
		t.Fatal("rejected input must not mutate the cart")
	}
}

func TestRemoveItemIsIdempotent(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	variant := &Variant{Name: "Color", Value: "Red"}
	cart := &Cart{UserID: uuid.New()}

	if err := cart.AddItem(productID, 2, variant, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	if err := cart.RemoveItem(productID, variant, now.Add(time.Minute)); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected empty cart, got %d lines", len(cart.Items))
	}

	if err := cart.RemoveItem(productID, variant, now.Add(2*time.Minute)); err != nil {
		t.Fatalf("second remove must be a no-op, got %v", err)
	}
	if !cart.UpdatedAt.Equal(now.Add(time.Minute)) {
		t.Fatal("no-op remove must not refresh UpdatedAt")
	}
}

func TestRemoveItemOnlyMatchingVariant(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}

	if err := cart.AddItem(productID, 1, &Variant{Name: "Size", Value: "M"}, now); err != nil {
		t.Fatalf("add variant line: %v", err)
	}
	if err := cart.AddItem(productID, 1, nil, now); err != nil {
		t.Fatalf("add plain line: %v", err)
	}

	if err := cart.RemoveItem(productID, nil, now); err != nil {
		t.Fatalf("remove: %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected one remaining line, got %d", len(cart.Items))
	}
	if cart.Items[0].Variant == nil || cart.Items[0].Variant.Value != "M" {
		t.Fatal("wrong line removed")
	}
}

func TestUpdateQuantityZeroBehavesAsRemove(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}

	if err := cart.AddItem(productID, 2, nil, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.UpdateQuantity(productID, 0, nil, now.Add(time.Minute)); err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if len(cart.Items) != 0 {
		t.Fatalf("expected line removed, got %d lines", len(cart.Items))
	}
}

func TestUpdateQuantitySetsNewValue(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}

	if err := cart.AddItem(productID, 2, nil, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := cart.UpdateQuantity(productID, 7, nil, now.Add(time.Minute)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if cart.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", cart.Items[0].Quantity)
	}
}

func TestUpdateQuantityMissingLineIsNoOp(t *testing.T) {
	t.Parallel()

	now := time.Now()
	cart := &Cart{UserID: uuid.New()}
	if err := cart.AddItem(uuid.New(), 2, nil, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	before := make([]LineItem, len(cart.Items))
	copy(before, cart.Items)

	if err := cart.UpdateQuantity(uuid.New(), 5, nil, now.Add(time.Minute)); err != nil {
		t.Fatalf("update on missing line: %v", err)
	}

	if len(cart.Items) != len(before) {
		t.Fatal("item count changed")
	}
	for i := range before {
		if cart.Items[i] != before[i] {
			t.Fatal("items mutated by no-op update")
		}
	}
	if !cart.UpdatedAt.Equal(now) {
		t.Fatal("no-op update must not refresh UpdatedAt")
	}
}

func TestClearEmptiesItemsKeepsCart(t *testing.T) {
	t.Parallel()

	now := time.Now()
	userID := uuid.New()
	cart := &Cart{UserID: userID, CreatedAt: now}

	if err := cart.AddItem(uuid.New(), 2, nil, now); err != nil {
		t.Fatalf("add: %v", err)
	}
	cart.Clear(now.Add(time.Minute))

	if len(cart.Items) != 0 {
		t.Fatalf("expected empty items, got %d", len(cart.Items))
	}
	if cart.UserID != userID || !cart.CreatedAt.Equal(now) {
		t.Fatal("clear must keep the cart record itself")
	}
}

func TestTotalsSingleDiscountedLine(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}
	if err := cart.AddItem(productID, 2, nil, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	catalog := &stubCatalog{prices: map[uuid.UUID]*PriceInfo{
		productID: {
			Price:              decimal.NewFromInt(100000),
			IsOnSale:           true,
			DiscountPercentage: decimal.NewFromInt(25),
		},
	}}

	totals, err := cart.Totals(context.Background(), catalog)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if !totals.Subtotal.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("expected subtotal 150000, got %s", totals.Subtotal)
	}
	if totals.ItemCount != 2 {
		t.Fatalf("expected item count 2, got %d", totals.ItemCount)
	}
	if totals.UniqueItems != 1 {
		t.Fatalf("expected 1 unique item, got %d", totals.UniqueItems)
	}
}

func TestTotalsMixedLines(t *testing.T) {
	t.Parallel()

	now := time.Now()
	p1 := uuid.New()
	p2 := uuid.New()
	cart := &Cart{UserID: uuid.New()}
	if err := cart.AddItem(p1, 2, nil, now); err != nil {
		t.Fatalf("add p1: %v", err)
	}
	if err := cart.AddItem(p2, 1, nil, now); err != nil {
		t.Fatalf("add p2: %v", err)
	}

	catalog := &stubCatalog{prices: map[uuid.UUID]*PriceInfo{
		p1: {Price: decimal.NewFromInt(50000)},
		p2: {
			Price:              decimal.NewFromInt(200000),
			IsOnSale:           true,
			DiscountPercentage: decimal.NewFromInt(10),
		},
	}}

	totals, err := cart.Totals(context.Background(), catalog)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}

	if !totals.Subtotal.Equal(decimal.NewFromInt(280000)) {
		t.Fatalf("expected subtotal 280000, got %s", totals.Subtotal)
	}
	if totals.ItemCount != 3 {
		t.Fatalf("expected item count 3, got %d", totals.ItemCount)
	}
	if totals.UniqueItems != 2 {
		t.Fatalf("expected 2 unique items, got %d", totals.UniqueItems)
	}
}

func TestTotalsOffSaleIgnoresDiscount(t *testing.T) {
	t.Parallel()

	now := time.Now()
	productID := uuid.New()
	cart := &Cart{UserID: uuid.New()}
	if err := cart.AddItem(productID, 1, nil, now); err != nil {
		t.Fatalf("add: %v", err)
	}

	// discount set but sale flag off: full price applies
	catalog := &stubCatalog{prices: map[uuid.UUID]*PriceInfo{
		productID: {
			Price:              decimal.NewFromInt(80000),
			IsOnSale:           false,
			DiscountPercentage: decimal.NewFromInt(50),
		},
	}}

	totals, err := cart.Totals(context.Background(), catalog)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Subtotal.Equal(decimal.NewFromInt(80000)) {
		t.Fatalf("expected subtotal 80000, got %s", totals.Subtotal)
	}
}

func TestTotalsFailsWholeComputationOnMissingProduct(t *testing.T) {
	t.Parallel()

	now := time.Now()
	known := uuid.New()
	missing := uuid.New()
	cart := &Cart{UserID: uuid.New()}
	if err := cart.AddItem(known, 1, nil, now); err != nil {
		t.Fatalf("add known: %v", err)
	}
	if err := cart.AddItem(missing, 1, nil, now); err != nil {
		t.Fatalf("add missing: %v", err)
	}

	catalog := &stubCatalog{prices: map[uuid.UUID]*PriceInfo{
		known: {Price: decimal.NewFromInt(10000)},
	}}

	totals, err := cart.Totals(context.Background(), catalog)
	if totals != nil {
		t.Fatal("no partial totals on resolution failure")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestTotalsEmptyCart(t *testing.T) {
	t.Parallel()

	cart := &Cart{UserID: uuid.New()}
	totals, err := cart.Totals(context.Background(), &stubCatalog{})
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if !totals.Subtotal.IsZero() || totals.ItemCount != 0 || totals.UniqueItems != 0 {
		t.Fatalf("expected zero totals, got %+v", totals)
	}
}

func TestVariantEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b *Variant
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs present", nil, &Variant{Name: "Size", Value: "M"}, false},
		{"equal fields", &Variant{Name: "Size", Value: "M"}, &Variant{Name: "Size", Value: "M"}, true},
		{"different value", &Variant{Name: "Size", Value: "M"}, &Variant{Name: "Size", Value: "L"}, false},
		{"different name", &Variant{Name: "Size", Value: "M"}, &Variant{Name: "Color", Value: "M"}, false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := VariantEqual(tc.a, tc.b); got != tc.want {
				t.Fatalf("VariantEqual(%+v, %+v) = %v, want %v", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
