package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/maraneea/storefront-backend/pkg/db/models"
	pkgerrors "github.com/maraneea/storefront-backend/pkg/errors"
)

type stubCartRepo struct {
	record  *models.Cart
	findErr error

	created      *models.Cart
	replacedWith []models.CartItem
}

func (s *stubCartRepo) WithTx(tx *gorm.DB) CartRepository { return s }

func (s *stubCartRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	return s.record, nil
}

func (s *stubCartRepo) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	record.ID = uuid.New()
	s.created = record
	s.record = record
	s.findErr = nil
	return record, nil
}

func (s *stubCartRepo) ReplaceItems(ctx context.Context, record *models.Cart, items []models.CartItem) error {
	s.replacedWith = items
	s.record.Items = items
	s.record.UpdatedAt = record.UpdatedAt
	return nil
}

func (s *stubCartRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	s.record = nil
	s.findErr = gorm.ErrRecordNotFound
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubProductLoader struct {
	products map[uuid.UUID]*models.Product
}

func (s *stubProductLoader) GetByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, ok := s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return product, nil
}

type stubBadgeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
}

func newStubBadgeCache() *stubBadgeCache {
	return &stubBadgeCache{values: map[string]string{}}
}

func (s *stubBadgeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value.(string)
	return nil
}

func (s *stubBadgeCache) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.values, key)
		s.deleted = append(s.deleted, key)
	}
	return nil
}

func (s *stubBadgeCache) CartCountKey(userID string) string {
	return "cart_count:" + userID
}

func activeProduct(price int64, stock int) *models.Product {
	return &models.Product{
		ID:                 uuid.New(),
		Name:               "Kopi Gayo",
		Slug:               "kopi-gayo",
		Price:              decimal.NewFromInt(price),
		DiscountPercentage: decimal.Zero,
		Stock:              stock,
		IsActive:           true,
	}
}

func newTestCartService(t *testing.T, repo *stubCartRepo, products *stubProductLoader) (Service, *stubBadgeCache) {
	t.Helper()
	badges := newStubBadgeCache()
	svc, err := NewService(repo, stubTxRunner{}, products, badges)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, badges
}

func TestServiceAddItemCreatesCartLazily(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 10)
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, badges := newTestCartService(t, repo, loader)

	userID := uuid.New()
	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	if err != nil {
		t.Fatalf("add item: %v", err)
	}

	if repo.created == nil || repo.created.UserID != userID {
		t.Fatal("expected cart row created for user")
	}
	if len(repo.replacedWith) != 1 || repo.replacedWith[0].Quantity != 2 {
		t.Fatalf("unexpected persisted items: %+v", repo.replacedWith)
	}
	if dto.ItemCount != 2 || dto.UniqueItems != 1 {
		t.Fatalf("unexpected totals: %+v", dto)
	}
	if !dto.Subtotal.Equal(decimal.NewFromInt(100000)) {
		t.Fatalf("expected subtotal 100000, got %s", dto.Subtotal)
	}
	if badges.values[badges.CartCountKey(userID.String())] != "2" {
		t.Fatal("expected badge count cached")
	}
}

func TestServiceAddItemRejectsQuantityBounds(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 10)
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, _ := newTestCartService(t, repo, loader)

	for _, qty := range []int{0, -1, 100} {
		_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: qty})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("qty %d: expected validation error, got %v", qty, err)
		}
	}
}

func TestServiceAddItemRejectsOverStock(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 3)
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, _ := newTestCartService(t, repo, loader)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 5})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestServiceAddItemMergedLineRespectsCeiling(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 200)
	userID := uuid.New()
	repo := &stubCartRepo{record: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: product.ID, Quantity: 98, AddedAt: time.Now()},
		},
	}}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, _ := newTestCartService(t, repo, loader)

	_, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for merged quantity over 99, got %v", err)
	}

	dto, err := svc.AddItem(context.Background(), userID, AddItemInput{ProductID: product.ID, Quantity: 1})
	if err != nil {
		t.Fatalf("add within ceiling: %v", err)
	}
	if dto.ItemCount != 99 {
		t.Fatalf("expected merged quantity 99, got %d", dto.ItemCount)
	}
}

func TestServiceAddItemInactiveProduct(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 10)
	product.IsActive = false
	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, _ := newTestCartService(t, repo, loader)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{ProductID: product.ID, Quantity: 1})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for inactive product, got %v", err)
	}
}

func TestServiceGetWithoutCartReturnsEmpty(t *testing.T) {
	t.Parallel()

	repo := &stubCartRepo{findErr: gorm.ErrRecordNotFound}
	svc, _ := newTestCartService(t, repo, &stubProductLoader{})

	dto, err := svc.Get(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(dto.Items) != 0 || dto.ItemCount != 0 || !dto.Subtotal.IsZero() {
		t.Fatalf("expected empty cart, got %+v", dto)
	}
}

func TestServiceGetAppliesSalePricing(t *testing.T) {
	t.Parallel()

	product := activeProduct(100000, 10)
	product.IsOnSale = true
	product.DiscountPercentage = decimal.NewFromInt(25)

	userID := uuid.New()
	repo := &stubCartRepo{record: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: product.ID, Quantity: 2, AddedAt: time.Now()},
		},
	}}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, _ := newTestCartService(t, repo, loader)

	dto, err := svc.Get(context.Background(), userID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !dto.Subtotal.Equal(decimal.NewFromInt(150000)) {
		t.Fatalf("expected subtotal 150000, got %s", dto.Subtotal)
	}
	if !dto.Items[0].EffectiveUnitPrice.Equal(decimal.NewFromInt(75000)) {
		t.Fatalf("expected effective unit price 75000, got %s", dto.Items[0].EffectiveUnitPrice)
	}
}

func TestServiceGetFailsOnUnresolvableLine(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	repo := &stubCartRepo{record: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: uuid.New(), Quantity: 1, AddedAt: time.Now()},
		},
	}}
	svc, _ := newTestCartService(t, repo, &stubProductLoader{})

	_, err := svc.Get(context.Background(), userID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestServiceUpdateQuantityZeroRemovesLine(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 10)
	userID := uuid.New()
	repo := &stubCartRepo{record: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: product.ID, Quantity: 2, AddedAt: time.Now()},
		},
	}}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, badges := newTestCartService(t, repo, loader)

	dto, err := svc.UpdateQuantity(context.Background(), userID, UpdateQuantityInput{ProductID: product.ID, Quantity: 0})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatalf("expected line removed, got %+v", dto.Items)
	}
	if len(badges.deleted) == 0 {
		t.Fatal("expected badge key deleted for empty cart")
	}
}

func TestServiceClearKeepsCartRow(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 10)
	userID := uuid.New()
	repo := &stubCartRepo{record: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: product.ID, Quantity: 2, AddedAt: time.Now()},
		},
	}}
	loader := &stubProductLoader{products: map[uuid.UUID]*models.Product{product.ID: product}}
	svc, _ := newTestCartService(t, repo, loader)

	dto, err := svc.Clear(context.Background(), userID)
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if len(dto.Items) != 0 {
		t.Fatal("expected items cleared")
	}
	if repo.record == nil {
		t.Fatal("clear must not delete the cart row")
	}
	if len(repo.replacedWith) != 0 {
		t.Fatalf("expected empty item set persisted, got %+v", repo.replacedWith)
	}
}

func TestServiceItemCount(t *testing.T) {
	t.Parallel()

	product := activeProduct(50000, 10)
	userID := uuid.New()
	repo := &stubCartRepo{record: &models.Cart{
		ID:     uuid.New(),
		UserID: userID,
		Items: []models.CartItem{
			{ProductID: product.ID, Quantity: 3, AddedAt: time.Now()},
			{ProductID: uuid.New(), Quantity: 1, AddedAt: time.Now()},
		},
	}}
	svc, _ := newTestCartService(t, repo, &stubProductLoader{})

	count, err := svc.ItemCount(context.Background(), userID)
	if err != nil {
		t.Fatalf("item count: %v", err)
	}
	if count != 4 {
		t.Fatalf("expected count 4, got %d", count)
	}
}
