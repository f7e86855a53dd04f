package cart

import (
	"context"
	"errors"

	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// GetOrCreate returns the user's cart with its items, creating an empty one first if needed
	GetOrCreate(ctx context.Context, userID uuid.UUID) (*Cart, error)
	GetByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	AddItem(ctx context.Context, item *CartItem) error
	IncrementQuantity(ctx context.Context, cartID, itemID uuid.UUID, by int) error
	SetQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error
	RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	// ON CONFLICT DO NOTHING keeps two first requests from racing on the unique user_id
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(&Cart{UserID: userID}).Error
	if err != nil {
		return nil, apperrors.Upstream("failed to create cart", err)
	}
	return r.GetByUser(ctx, userID)
}

func (r *repository) GetByUser(ctx context.Context, userID uuid.UUID) (*Cart, error) {
	var cart Cart
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Preload("Items.Experience").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("cart not found")
		}
		return nil, apperrors.Upstream("failed to load cart", err)
	}
	return &cart, nil
}

func (r *repository) AddItem(ctx context.Context, item *CartItem) error {
	if err := r.db.WithContext(ctx).Omit("Experience").Create(item).Error; err != nil {
		return apperrors.Upstream("failed to add cart item", err)
	}
	return nil
}

func (r *repository) IncrementQuantity(ctx context.Context, cartID, itemID uuid.UUID, by int) error {
	return r.updateItem(ctx, cartID, itemID, gorm.Expr("quantity + ?", by))
}

func (r *repository) SetQuantity(ctx context.Context, cartID, itemID uuid.UUID, quantity int) error {
	return r.updateItem(ctx, cartID, itemID, quantity)
}

func (r *repository) updateItem(ctx context.Context, cartID, itemID uuid.UUID, quantity interface{}) error {
	result := r.db.WithContext(ctx).
		Model(&CartItem{}).
		Where("id = ? AND cart_id = ?", itemID, cartID).
		Update("quantity", quantity)
	if result.Error != nil {
		return apperrors.Upstream("failed to update cart item", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("cart item not found")
	}
	return nil
}

func (r *repository) RemoveItem(ctx context.Context, cartID, itemID uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).Delete(&CartItem{})
	if result.Error != nil {
		return apperrors.Upstream("failed to remove cart item", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("cart item not found")
	}
	return nil
}

func (r *repository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&CartItem{}).Error; err != nil {
		return apperrors.Upstream("failed to clear cart", err)
	}
	return nil
}
