package reviews

import (
	"time"

	"github.com/google/uuid"
)

type Review struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_experience,priority:1" json:"user_id"`
	ExperienceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_experience,priority:2;index" json:"experience_id"`
	Rating       int       `gorm:"not null;check:rating BETWEEN 1 AND 5" json:"rating"`
	Comment      string    `gorm:"type:text" json:"comment"`
	CreatedAt    time.Time `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Review) TableName() string {
	return "reviews"
}

// Stats is the aggregate the listing's rating fields are derived from
type Stats struct {
	Count   int64
	Average float64
}
