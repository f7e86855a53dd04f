package wishlist

import (
	"time"

	"wanderly/internal/experiences"

	"github.com/google/uuid"
)

// Item is one saved experience. A user saves an experience at most once.
type Item struct {
	ID           uuid.UUID               `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID       uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_experience,priority:1" json:"user_id"`
	ExperienceID uuid.UUID               `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_experience,priority:2" json:"experience_id"`
	Experience   *experiences.Experience `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"experience,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
}

func (Item) TableName() string {
	return "wishlist_items"
}
