package reviews

import (
	"context"
	"errors"

	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/utils/response"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, review *Review) error
	Exists(ctx context.Context, userID, experienceID uuid.UUID) (bool, error)
	ListByExperience(ctx context.Context, experienceID uuid.UUID, page, pageSize int) ([]Review, int64, error)
	Stats(ctx context.Context, experienceID uuid.UUID) (Stats, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, review *Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		// the unique (user_id, experience_id) index catches concurrent duplicates
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.Conflict("you have already reviewed this experience")
		}
		return apperrors.Upstream("failed to create review", err)
	}
	return nil
}

func (r *repository) Exists(ctx context.Context, userID, experienceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Review{}).
		Where("user_id = ? AND experience_id = ?", userID, experienceID).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Upstream("failed to check reviews", err)
	}
	return count > 0, nil
}

func (r *repository) ListByExperience(ctx context.Context, experienceID uuid.UUID, page, pageSize int) ([]Review, int64, error) {
	var (
		reviews []Review
		total   int64
	)
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&Review{}).Where("experience_id = ?", experienceID)
	}

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		return base().Count(&total).Error
	})
	g.Go(func() error {
		return base().
			Order("created_at DESC, id DESC").
			Offset(response.Offset(page, pageSize)).
			Limit(pageSize).
			Find(&reviews).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, apperrors.Upstream("failed to list reviews", err)
	}
	return reviews, total, nil
}

func (r *repository) Stats(ctx context.Context, experienceID uuid.UUID) (Stats, error) {
	var stats Stats
	err := r.db.WithContext(ctx).
		Model(&Review{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average").
		Where("experience_id = ?", experienceID).
		Scan(&stats).Error
	if err != nil {
		return Stats{}, apperrors.Upstream("failed to aggregate reviews", err)
	}
	return stats, nil
}
