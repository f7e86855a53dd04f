package cart

import (
	"time"

	"wanderly/internal/experiences"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cart is created lazily, one per user
type Cart struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID    uuid.UUID  `gorm:"type:uuid;uniqueIndex;not null" json:"user_id"`
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

type CartItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	CartID       uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	ExperienceID uuid.UUID `gorm:"type:uuid;not null;index" json:"experience_id"`

	Date     time.Time `gorm:"not null" json:"date"`
	TimeSlot string    `gorm:"size:40" json:"time_slot"`
	Quantity int       `gorm:"not null;check:quantity >= 1" json:"quantity"`

	// PriceAtAdd is the listing price when the line was first added
	PriceAtAdd float64 `gorm:"not null" json:"price_at_add"`

	Experience *experiences.Experience `gorm:"foreignKey:ExperienceID;constraint:OnDelete:CASCADE" json:"experience,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

// View is what every cart operation returns
type View struct {
	Items     []CartItem `json:"items"`
	Total     float64    `json:"total"`
	ItemCount int        `json:"item_count"`
}

// Summarize derives the totals from the lines; nothing is stored.
func Summarize(items []CartItem) *View {
	if items == nil {
		items = []CartItem{}
	}
	total := decimal.Zero
	count := 0
	for _, item := range items {
		line := decimal.NewFromFloat(item.PriceAtAdd).Mul(decimal.NewFromInt(int64(item.Quantity)))
		total = total.Add(line)
		count += item.Quantity
	}
	return &View{
		Items:     items,
		Total:     total.Round(2).InexactFloat64(),
		ItemCount: count,
	}
}
