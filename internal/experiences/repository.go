package experiences

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
	Create(ctx context.Context, experience *Experience) error
	GetByID(ctx context.Context, id uuid.UUID) (*Experience, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Experience, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, filter Filter, page, pageSize int) ([]Experience, int64, error)
	ListByVendor(ctx context.Context, vendorID uuid.UUID, page, pageSize int) ([]Experience, int64, error)
	ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]Experience, int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, experience *Experience) error {
	if err := r.db.WithContext(ctx).Create(experience).Error; err != nil {
		return apperrors.Upstream("failed to create experience", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Experience, error) {
	var experience Experience
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&experience).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("experience not found")
		}
		return nil, apperrors.Upstream("failed to load experience", err)
	}
	return &experience, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Experience, error) {
	result := r.db.WithContext(ctx).Model(&Experience{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Upstream("failed to update experience", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("experience not found")
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&Experience{})
	if result.Error != nil {
		return apperrors.Upstream("failed to delete experience", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFound("experience not found")
	}
	return nil
}

// Search runs the count and the page fetch concurrently over the same filter.
func (r *repository) Search(ctx context.Context, filter Filter, page, pageSize int) ([]Experience, int64, error) {
	return r.paginate(ctx, filter.Scope, page, pageSize)
}

func (r *repository) ListByVendor(ctx context.Context, vendorID uuid.UUID, page, pageSize int) ([]Experience, int64, error) {
	return r.paginate(ctx, func(db *gorm.DB) *gorm.DB {
		return db.Where("vendor_id = ?", vendorID)
	}, page, pageSize)
}

// ListByStatus lists every listing when status is empty.
func (r *repository) ListByStatus(ctx context.Context, status Status, page, pageSize int) ([]Experience, int64, error) {
	return r.paginate(ctx, func(db *gorm.DB) *gorm.DB {
		if status == "" {
			return db
		}
		return db.Where("status = ?", status)
	}, page, pageSize)
}

func (r *repository) paginate(ctx context.Context, scope func(*gorm.DB) *gorm.DB, page, pageSize int) ([]Experience, int64, error) {
	var (
		items []Experience
		total int64
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&Experience{}).Scopes(scope).Count(&total).Error
	})
	g.Go(func() error {
		return r.db.WithContext(gctx).Model(&Experience{}).Scopes(scope, newestFirst).
			Offset(response.Offset(page, pageSize)).
			Limit(pageSize).
			Find(&items).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, apperrors.Upstream("failed to list experiences", err)
	}
	return items, total, nil
}

// newestFirst orders by creation time with the id as a stable tiebreak
func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}
