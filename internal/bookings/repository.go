package bookings

import (
	"context"
	"errors"
	"time"

	"wanderly/internal/experiences"
	"wanderly/internal/shared/apperrors"
	"wanderly/internal/shared/utils/response"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository interface {
	// CreateWithCapacityCheck inserts the booking only if the slot still has
	// room, holding a row lock on the experience for the whole check.
	CreateWithCapacityCheck(ctx context.Context, booking *Booking) error

	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Booking, int64, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Booking, error)

	// Confirm marks a booking paid and confirmed unless it has been cancelled
	// in the meantime, which is reported as Conflict
	Confirm(ctx context.Context, id uuid.UUID, paymentID string) (*Booking, error)

	// ListActiveForDay returns the non-cancelled bookings of an experience in [start, end)
	ListActiveForDay(ctx context.Context, experienceID uuid.UUID, start, end time.Time) ([]Booking, error)

	// HasQualifying reports whether the user holds a confirmed or completed booking
	HasQualifying(ctx context.Context, userID, experienceID uuid.UUID) (bool, error)

	// CompletePast marks up to limit confirmed bookings dated before the cutoff as completed
	CompletePast(ctx context.Context, before time.Time, limit int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateWithCapacityCheck(ctx context.Context, booking *Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the experience so concurrent bookings for it queue up here
		var experience experiences.Experience
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "capacity", "status", "is_active", "time_slots").
			Where("id = ?", booking.ExperienceID).
			First(&experience).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("experience not found")
			}
			return apperrors.Upstream("failed to lock experience", err)
		}

		// 2. Re-check under the lock; moderation may have changed it
		if !experience.IsBookable() {
			return apperrors.Conflict("experience is not open for booking")
		}

		// 3. Sum the seats already taken in this slot (or the whole day)
		start, end := DayBounds(booking.Date)
		used := tx.Model(&Booking{}).
			Where("experience_id = ?", booking.ExperienceID).
			Where("date >= ? AND date < ?", start, end).
			Where("status <> ?", string(StatusCancelled))
		if experience.HasTimeSlots() {
			used = used.Where("time_slot = ?", booking.TimeSlot)
		}

		var taken int64
		if err := used.Select("COALESCE(SUM(slots), 0)").Scan(&taken).Error; err != nil {
			return apperrors.Upstream("failed to count booked seats", err)
		}

		if int(taken)+booking.Slots > experience.Capacity {
			left := max(0, experience.Capacity-int(taken))
			if left == 0 {
				return apperrors.Conflict("this slot is sold out")
			}
			return apperrors.Conflict("only %d seats left, requested %d", left, booking.Slots)
		}

		// 4. Insert
		if err := tx.Create(booking).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflict("booking reference already in use")
			}
			return apperrors.Upstream("failed to create booking", err)
		}
		return nil
	})
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&booking).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("booking not found")
		}
		return nil, apperrors.Upstream("failed to load booking", err)
	}
	return &booking, nil
}

func (r *repository) ListByUser(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]Booking, int64, error) {
	var (
		bookings []Booking
		total    int64
	)

	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&Booking{}).Where("user_id = ?", userID)
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
			Find(&bookings).Error
	})
	if err := g.Wait(); err != nil {
		return nil, 0, apperrors.Upstream("failed to list bookings", err)
	}
	return bookings, total, nil
}

func (r *repository) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) (*Booking, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, apperrors.Upstream("failed to update booking", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFound("booking not found")
	}
	return r.GetByID(ctx, id)
}

func (r *repository) Confirm(ctx context.Context, id uuid.UUID, paymentID string) (*Booking, error) {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ? AND status <> ?", id, string(StatusCancelled)).
		Updates(map[string]interface{}{
			"status":         string(StatusConfirmed),
			"payment_status": string(PaymentPaid),
			"payment_id":     paymentID,
		})
	if result.Error != nil {
		return nil, apperrors.Upstream("failed to confirm booking", result.Error)
	}
	if result.RowsAffected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, apperrors.Conflict("booking is cancelled")
	}
	return r.GetByID(ctx, id)
}

func (r *repository) ListActiveForDay(ctx context.Context, experienceID uuid.UUID, start, end time.Time) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Where("experience_id = ?", experienceID).
		Where("date >= ? AND date < ?", start, end).
		Where("status <> ?", string(StatusCancelled)).
		Find(&bookings).Error
	if err != nil {
		return nil, apperrors.Upstream("failed to load bookings", err)
	}
	return bookings, nil
}

func (r *repository) HasQualifying(ctx context.Context, userID, experienceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("user_id = ? AND experience_id = ?", userID, experienceID).
		Where("status IN ?", []string{string(StatusConfirmed), string(StatusCompleted)}).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Upstream("failed to check bookings", err)
	}
	return count > 0, nil
}

func (r *repository) CompletePast(ctx context.Context, before time.Time, limit int) (int64, error) {
	due := r.db.Model(&Booking{}).
		Select("id").
		Where("status = ? AND date < ?", string(StatusConfirmed), before).
		Order("date ASC").
		Limit(limit)

	result := r.db.WithContext(ctx).
		Model(&Booking{}).
		Where("id IN (?)", due).
		Update("status", string(StatusCompleted))
	if result.Error != nil {
		return 0, apperrors.Upstream("failed to complete past bookings", result.Error)
	}
	return result.RowsAffected, nil
}
