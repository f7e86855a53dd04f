package bookings

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// CountsAgainstCapacity is true for every status except cancelled
func (s Status) CountsAgainstCapacity() bool {
	return s != StatusCancelled
}

// QualifiesForReview reports whether a booking in this state lets its owner review the experience
func (s Status) QualifiesForReview() bool {
	return s == StatusConfirmed || s == StatusCompleted
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

type Booking struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BookingRef   string    `gorm:"uniqueIndex;not null;size:32" json:"booking_ref"`
	UserID       uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	ExperienceID uuid.UUID `gorm:"type:uuid;not null;index:idx_bookings_experience_day,priority:1" json:"experience_id"`

	// Date is local midnight of the booked day
	Date     time.Time `gorm:"not null;index:idx_bookings_experience_day,priority:2" json:"date"`
	TimeSlot string    `gorm:"size:40;not null" json:"time_slot"`
	Slots    int       `gorm:"not null;check:slots > 0" json:"slots"`

	TotalPrice float64 `gorm:"not null" json:"total_price"`
	Currency   string  `gorm:"size:3;not null" json:"currency"`

	Status        Status        `gorm:"type:varchar(20);not null;default:'pending';check:status IN ('pending','confirmed','cancelled','completed')" json:"status"`
	PaymentStatus PaymentStatus `gorm:"type:varchar(20);not null;default:'pending';check:payment_status IN ('pending','paid','failed','refunded')" json:"payment_status"`

	PaymentOrderID string `gorm:"size:64;index" json:"payment_order_id,omitempty"`
	PaymentID      string `gorm:"size:64" json:"payment_id,omitempty"`

	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

func (b *Booking) IsPaid() bool {
	return b.PaymentStatus == PaymentPaid
}

// DateString renders the booked day as YYYY-MM-DD
func (b *Booking) DateString() string {
	return b.Date.In(time.Local).Format(DateLayout)
}
