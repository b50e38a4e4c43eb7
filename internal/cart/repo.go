package cart

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/maraneea/storefront-backend/pkg/db/models"
)

// Repository encapsulates cart persistence. One cart row exists per user,
// enforced by a unique index on user_id.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repository to the provided GORM handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx scopes the repository to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByUser returns the user's cart with items preloaded.
func (r *Repository) FindByUser(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var record models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// Create inserts a new cart row for the user.
func (r *Repository) Create(ctx context.Context, record *models.Cart) (*models.Cart, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// ReplaceItems swaps the cart's line items for the provided set and stamps
// updated_at. The aggregate is the source of truth; rows are rewritten whole.
func (r *Repository) ReplaceItems(ctx context.Context, record *models.Cart, items []models.CartItem) error {
	if err := r.db.WithContext(ctx).
		Where("cart_id = ?", record.ID).
		Delete(&models.CartItem{}).Error; err != nil {
		return err
	}

	for i := range items {
		items[i].CartID = record.ID
	}
	if len(items) > 0 {
		if err := r.db.WithContext(ctx).Create(&items).Error; err != nil {
			return err
		}
	}

	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", record.ID).
		Update("updated_at", record.UpdatedAt).Error
}

// DeleteByUser removes the cart row entirely. Checkout uses this after the
// order snapshot is created; items cascade.
func (r *Repository) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Cart{}).Error
}

// toAggregate converts the stored rows into the in-memory aggregate the
// mutation operations work on.
func toAggregate(record *models.Cart) *Cart {
	items := make([]LineItem, 0, len(record.Items))
	for _, row := range record.Items {
		var variant *Variant
		if row.VariantName != nil && row.VariantValue != nil {
			variant = &Variant{Name: *row.VariantName, Value: *row.VariantValue}
		}
		items = append(items, LineItem{
			ProductID: row.ProductID,
			Quantity:  row.Quantity,
			Variant:   variant,
			AddedAt:   row.AddedAt,
		})
	}
	return &Cart{
		UserID:    record.UserID,
		Items:     items,
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
}

// toRows converts aggregate lines back into persistable rows.
func toRows(aggregate *Cart) []models.CartItem {
	rows := make([]models.CartItem, 0, len(aggregate.Items))
	for _, item := range aggregate.Items {
		row := models.CartItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			AddedAt:   item.AddedAt,
		}
		if item.Variant != nil {
			name := item.Variant.Name
			value := item.Variant.Value
			row.VariantName = &name
			row.VariantValue = &value
		}
		rows = append(rows, row)
	}
	return rows
}
