package cart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maraneea/storefront-backend/pkg/db/models"
	pkgerrors "github.com/maraneea/storefront-backend/pkg/errors"
)

const (
	maxLineQuantity = 99

	badgeCountTTL = 24 * time.Hour
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type badgeCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartCountKey(userID string) string
}

// Service exposes the cart operations consumed by the HTTP layer.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID uuid.UUID, input RemoveItemInput) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	ItemCount(ctx context.Context, userID uuid.UUID) (int, error)
}

type service struct {
	repo     CartRepository
	tx       txRunner
	products productLoader
	badges   badgeCache
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo CartRepository, tx txRunner, products productLoader, badges badgeCache) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if badges == nil {
		return nil, fmt.Errorf("badge cache required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		badges:   badges,
	}, nil
}

// Get returns the user's cart with resolved pricing. A user who never added
// anything gets an empty cart, not an error.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return emptyCartDTO(), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	return s.buildDTO(ctx, toAggregate(record))
}

// AddItem validates stock and bounds, then merges the line through the
// aggregate and persists the result. The cart row is created lazily on the
// first add.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity < 1 || input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxLineQuantity))
	}

	product, err := s.loadSellableProduct(ctx, input.ProductID)
	if err != nil {
		return nil, err
	}

	variant := variantFromInput(input.Variant)
	now := time.Now().UTC()

	var aggregate *Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByUser(ctx, userID)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			record, err = txRepo.Create(ctx, &models.Cart{UserID: userID, UpdatedAt: now})
			if err != nil {
				return err
			}
		}

		aggregate = toAggregate(record)

		existing := 0
		for _, item := range aggregate.Items {
			if item.ProductID == input.ProductID && VariantEqual(item.Variant, variant) {
				existing = item.Quantity
				break
			}
		}
		if existing+input.Quantity > maxLineQuantity {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("line quantity cannot exceed %d", maxLineQuantity))
		}
		if existing+input.Quantity > product.Stock {
			return pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product")
		}

		if err := aggregate.AddItem(input.ProductID, input.Quantity, variant, now); err != nil {
			return err
		}

		record.UpdatedAt = aggregate.UpdatedAt
		return txRepo.ReplaceItems(ctx, record, toRows(aggregate))
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	s.refreshBadge(ctx, userID, aggregate)
	return s.buildDTO(ctx, aggregate)
}

// UpdateQuantity sets the quantity on an existing line. Zero or negative
// removes the line; a missing line is a no-op.
func (s *service) UpdateQuantity(ctx context.Context, userID uuid.UUID, input UpdateQuantityInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	if input.Quantity > maxLineQuantity {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity cannot exceed %d", maxLineQuantity))
	}

	if input.Quantity > 0 {
		product, err := s.loadSellableProduct(ctx, input.ProductID)
		if err != nil {
			return nil, err
		}
		if input.Quantity > product.Stock {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock for product")
		}
	}

	return s.mutate(ctx, userID, func(aggregate *Cart, now time.Time) error {
		return aggregate.UpdateQuantity(input.ProductID, input.Quantity, variantFromInput(input.Variant), now)
	})
}

// RemoveItem drops the matching line. Removing an absent line succeeds.
func (s *service) RemoveItem(ctx context.Context, userID uuid.UUID, input RemoveItemInput) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	return s.mutate(ctx, userID, func(aggregate *Cart, now time.Time) error {
		return aggregate.RemoveItem(input.ProductID, variantFromInput(input.Variant), now)
	})
}

// Clear empties the cart's items. The cart row itself is kept.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	return s.mutate(ctx, userID, func(aggregate *Cart, now time.Time) error {
		aggregate.Clear(now)
		return nil
	})
}

// ItemCount returns the badge count (sum of quantities across lines).
func (s *service) ItemCount(ctx context.Context, userID uuid.UUID) (int, error) {
	if userID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}

	record, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	aggregate := toAggregate(record)
	s.refreshBadge(ctx, userID, aggregate)
	return countItems(aggregate), nil
}

// mutate runs one aggregate transformation against the stored cart and
// persists the result. A user without a cart row sees an empty-cart result
// without a row being created: every mutation here is a removal of some kind.
func (s *service) mutate(ctx context.Context, userID uuid.UUID, apply func(aggregate *Cart, now time.Time) error) (*CartDTO, error) {
	now := time.Now().UTC()

	var aggregate *Cart
	if err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		record, err := txRepo.FindByUser(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				aggregate = &Cart{UserID: userID}
				return nil
			}
			return err
		}

		aggregate = toAggregate(record)
		if err := apply(aggregate, now); err != nil {
			return err
		}

		record.UpdatedAt = aggregate.UpdatedAt
		return txRepo.ReplaceItems(ctx, record, toRows(aggregate))
	}); err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}

	s.refreshBadge(ctx, userID, aggregate)
	return s.buildDTO(ctx, aggregate)
}

func (s *service) loadSellableProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	product, err := s.products.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product is not available")
	}
	return product, nil
}

// buildDTO resolves every line against the catalog. Resolution failures fail
// the whole response; no partially priced cart is ever returned.
func (s *service) buildDTO(ctx context.Context, aggregate *Cart) (*CartDTO, error) {
	dto := &CartDTO{
		Items:       make([]CartItemDTO, 0, len(aggregate.Items)),
		UpdatedAt:   aggregate.UpdatedAt,
		UniqueItems: len(aggregate.Items),
	}

	subtotal := decimal.Zero
	for _, item := range aggregate.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s no longer exists", item.ProductID))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve product")
		}

		unit := EffectiveUnitPrice(&PriceInfo{
			Price:              product.Price,
			IsOnSale:           product.IsOnSale,
			DiscountPercentage: product.DiscountPercentage,
		})
		lineTotal := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		subtotal = subtotal.Add(lineTotal)
		dto.ItemCount += item.Quantity

		var image *string
		if len(product.Images) > 0 {
			first := product.Images[0]
			image = &first
		}

		dto.Items = append(dto.Items, CartItemDTO{
			ProductID:          item.ProductID,
			ProductName:        product.Name,
			ProductSlug:        product.Slug,
			Image:              image,
			Quantity:           item.Quantity,
			Variant:            variantToDTO(item.Variant),
			UnitPrice:          product.Price,
			EffectiveUnitPrice: unit,
			LineTotal:          lineTotal,
			AddedAt:            item.AddedAt,
		})
	}

	dto.Subtotal = subtotal
	return dto, nil
}

// refreshBadge updates the cached header badge count. The badge is advisory;
// cache failures never fail the cart operation.
func (s *service) refreshBadge(ctx context.Context, userID uuid.UUID, aggregate *Cart) {
	key := s.badges.CartCountKey(userID.String())
	count := countItems(aggregate)
	if count == 0 {
		_ = s.badges.Del(ctx, key)
		return
	}
	_ = s.badges.Set(ctx, key, strconv.Itoa(count), badgeCountTTL)
}

func countItems(aggregate *Cart) int {
	total := 0
	for _, item := range aggregate.Items {
		total += item.Quantity
	}
	return total
}

func emptyCartDTO() *CartDTO {
	return &CartDTO{
		Items:    []CartItemDTO{},
		Subtotal: decimal.Zero,
	}
}
