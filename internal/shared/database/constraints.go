package database

import (
	"gorm.io/gorm"
)

// MigrateConstraints adds the indexes gorm tags cannot express
func MigrateConstraints(db *gorm.DB) error {
	statements := []string{
		// Capacity sums only ever look at live bookings of one slot
		`CREATE INDEX IF NOT EXISTS idx_bookings_live_slot
			ON bookings (experience_id, date, time_slot)
			WHERE status <> 'cancelled'`,

		// Keyword search runs ILIKE over these columns
		`CREATE INDEX IF NOT EXISTS idx_experiences_title_trgm
			ON experiences USING gin (title gin_trgm_ops)`,
		`CREATE INDEX IF NOT EXISTS idx_experiences_city_trgm
			ON experiences USING gin (location_city gin_trgm_ops)`,

		// One line per (cart, experience, day) is the merge rule's steady state
		`CREATE INDEX IF NOT EXISTS idx_cart_items_cart_experience
			ON cart_items (cart_id, experience_id, date)`,
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}
