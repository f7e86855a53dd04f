package experiences

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

const (
	DefaultCapacity = 20
	DefaultCurrency = "INR"

	// PageSize is fixed for every listing endpoint
	PageSize = 12

	// WholeDaySlot labels bookings of listings without named time slots
	WholeDaySlot = "all-day"
)

type Location struct {
	City      string   `json:"city" gorm:"size:120;index"`
	Country   string   `json:"country" gorm:"size:120;index"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type Experience struct {
	ID          uuid.UUID                   `json:"id" gorm:"type:uuid;default:uuid_generate_v4();primaryKey"`
	VendorID    uuid.UUID                   `json:"vendor_id" gorm:"type:uuid;not null;index"`
	Title       string                      `json:"title" gorm:"not null;size:255"`
	Description string                      `json:"description" gorm:"type:text"`
	Category    string                      `json:"category" gorm:"size:120;index"`
	Price       float64                     `json:"price" gorm:"not null;check:price >= 0"`
	Currency    string                      `json:"currency" gorm:"size:3;not null;default:'INR'"`
	Duration    string                      `json:"duration" gorm:"size:100"`
	Images      datatypes.JSONSlice[string] `json:"images" gorm:"type:jsonb"`
	Location    Location                    `json:"location" gorm:"embedded;embeddedPrefix:location_"`
	Capacity    int                         `json:"capacity" gorm:"not null;default:20;check:capacity > 0"`
	TimeSlots   datatypes.JSONSlice[string] `json:"time_slots" gorm:"type:jsonb"`
	Status      Status                      `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	IsActive    bool                        `json:"is_active" gorm:"not null;default:true"`

	// maintained from the reviews table
	AverageRating float64 `json:"average_rating" gorm:"not null;default:0"`
	NumReviews    int     `json:"num_reviews" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime;index"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Experience) TableName() string {
	return "experiences"
}

// HasTimeSlots is false for listings sold as a single whole-day session
func (e *Experience) HasTimeSlots() bool {
	return len(e.TimeSlots) > 0
}

func (e *Experience) HasSlot(label string) bool {
	return slices.Contains(e.TimeSlots, label)
}

func (e *Experience) IsBookable() bool {
	return e.Status == StatusApproved && e.IsActive
}
