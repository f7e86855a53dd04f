package wishlist

import (
	"context"

	"wanderly/internal/shared/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	List(ctx context.Context, userID uuid.UUID) ([]Item, error)
	// Add is a no-op when the pair is already saved
	Add(ctx context.Context, item *Item) error
	Remove(ctx context.Context, userID, experienceID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, userID uuid.UUID) ([]Item, error) {
	var items []Item
	err := r.db.WithContext(ctx).
		Preload("Experience").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error
	if err != nil {
		return nil, apperrors.Upstream("failed to load wishlist", err)
	}
	return items, nil
}

func (r *repository) Add(ctx context.Context, item *Item) error {
	err := r.db.WithContext(ctx).
		Omit("Experience").
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "experience_id"}},
			DoNothing: true,
		}).
		Create(item).Error
	if err != nil {
		return apperrors.Upstream("failed to save to wishlist", err)
	}
	return nil
}

func (r *repository) Remove(ctx context.Context, userID, experienceID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND experience_id = ?", userID, experienceID).
		Delete(&Item{})
	if result.Error != nil {
		return apperrors.Upstream("failed to remove from wishlist", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("experience is not in your wishlist")
	}
	return nil
}
