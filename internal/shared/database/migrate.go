package database

import (
	"fmt"

	"wanderly/internal/bookings"
	"wanderly/internal/cart"
	"wanderly/internal/experiences"
	"wanderly/internal/reviews"
	"wanderly/internal/users"
	"wanderly/internal/wishlist"

	"gorm.io/gorm"
)

// Migrate creates the extensions the models rely on, then the tables.
// Order matters for foreign keys: experiences before cart and wishlist rows.
func Migrate(db *gorm.DB) error {
	for _, ext := range []string{"uuid-ossp", "pg_trgm"} {
		if err := db.Exec(fmt.Sprintf(`CREATE EXTENSION IF NOT EXISTS "%s"`, ext)).Error; err != nil {
			return fmt.Errorf("failed to create extension %s: %w", ext, err)
		}
	}

	err := db.AutoMigrate(
		&users.User{},
		&experiences.Experience{},
		&bookings.Booking{},
		&cart.Cart{},
		&cart.CartItem{},
		&wishlist.Item{},
		&reviews.Review{},
	)
	if err != nil {
		return err
	}

	return MigrateConstraints(db)
}
