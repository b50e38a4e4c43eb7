package orders

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maraneea/storefront-backend/internal/cart"
	"github.com/maraneea/storefront-backend/internal/products"
	"github.com/maraneea/storefront-backend/pkg/db/models"
	"github.com/maraneea/storefront-backend/pkg/enums"
	pkgerrors "github.com/maraneea/storefront-backend/pkg/errors"
	"github.com/maraneea/storefront-backend/pkg/pagination"
)

const defaultShippingCountry = "Indonesia"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type badgeCache interface {
	Del(ctx context.Context, keys ...string) error
	CartCountKey(userID string) string
}

// Service converts carts into orders and serves the customer's history.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error)
	GetByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error)
}

type service struct {
	repo         Repository
	carts        cart.CartRepository
	products     productLoader
	tx           txRunner
	badge        badgeCache
	shippingCost decimal.Decimal
	now          func() time.Time
	randomSuffix func() int
}

// NewService builds the checkout service. The shipping cost is the flat
// per-order fee in rupiah.
func NewService(repo Repository, carts cart.CartRepository, loader productLoader, tx txRunner, badge badgeCache, shippingCost int64) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if loader == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if badge == nil {
		return nil, fmt.Errorf("badge cache required")
	}
	if shippingCost < 0 {
		return nil, fmt.Errorf("shipping cost cannot be negative")
	}
	return &service{
		repo:         repo,
		carts:        carts,
		products:     loader,
		tx:           tx,
		badge:        badge,
		shippingCost: decimal.NewFromInt(shippingCost),
		now:          time.Now,
		randomSuffix: func() int { return rand.Intn(1000) },
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}

	record, err := s.carts.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if len(record.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	items, subtotal, err := s.freezeLines(ctx, record.Items)
	if err != nil {
		return nil, err
	}

	number, err := s.allocateOrderNumber(ctx)
	if err != nil {
		return nil, err
	}

	country := strings.TrimSpace(input.ShippingAddress.Country)
	if country == "" {
		country = defaultShippingCountry
	}

	order := &models.Order{
		OrderNumber:        number,
		UserID:             userID,
		Status:             enums.OrderStatusPending,
		PaymentMethod:      method,
		PaymentStatus:      enums.PaymentStatusPending,
		ShippingName:       strings.TrimSpace(input.ShippingAddress.Name),
		ShippingPhone:      strings.TrimSpace(input.ShippingAddress.Phone),
		ShippingStreet:     strings.TrimSpace(input.ShippingAddress.Street),
		ShippingCity:       strings.TrimSpace(input.ShippingAddress.City),
		ShippingProvince:   strings.TrimSpace(input.ShippingAddress.Province),
		ShippingPostalCode: strings.TrimSpace(input.ShippingAddress.PostalCode),
		ShippingCountry:    country,
		ShippingNotes:      input.ShippingAddress.Notes,
		Subtotal:           subtotal,
		ShippingCost:       s.shippingCost,
		Total:              subtotal.Add(s.shippingCost),
		Items:              items,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return s.carts.WithTx(tx).DeleteByUser(ctx, userID)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "placing order")
	}

	// The cart is gone, so the badge count is stale. Cache cleanup is
	// advisory only.
	_ = s.badge.Del(ctx, s.badge.CartCountKey(userID.String()))

	return toOrderDTO(order), nil
}

func (s *service) GetByID(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	if userID == uuid.Nil || orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	order, err := s.repo.FindByIDAndUser(ctx, orderID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	return toOrderDTO(order), nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	result, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return result, nil
}

// freezeLines snapshots the cart lines against the live catalog. Pricing
// uses the effective sale price at checkout time, never the price at the
// moment the item was added.
func (s *service) freezeLines(ctx context.Context, lines []models.CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	items := make([]models.OrderItem, 0, len(lines))
	subtotal := decimal.Zero

	for _, line := range lines {
		product, err := s.products.GetByID(ctx, line.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s no longer exists", line.ProductID))
			}
			return nil, decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading product")
		}
		if !product.IsActive {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %q is no longer available", product.Name))
		}
		if product.Stock < line.Quantity {
			return nil, decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("insufficient stock for product %q", product.Name))
		}

		unit := products.EffectivePrice(product)
		lineTotal := unit.Mul(decimal.NewFromInt(int64(line.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  product.Name,
			Quantity:     line.Quantity,
			UnitPrice:    unit,
			VariantName:  line.VariantName,
			VariantValue: line.VariantValue,
			LineTotal:    lineTotal,
		})
		subtotal = subtotal.Add(lineTotal)
	}
	return items, subtotal, nil
}

func (s *service) allocateOrderNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxOrderNumberAttempts; attempt++ {
		number := FormatOrderNumber(s.now(), s.randomSuffix())
		taken, err := s.repo.OrderNumberTaken(ctx, number)
		if err != nil {
			return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking order number")
		}
		if !taken {
			return number, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeInternal, "could not allocate an order number")
}
