package main

import (
	"fmt"
	"log"
	"time"

	"wanderly/internal/bookings"
	"wanderly/internal/experiences"
	"wanderly/internal/reviews"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/database"
	"wanderly/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/lithammer/shortuuid/v3"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("Starting Wanderly database seeder...")

	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\nCleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}

	fmt.Println("\nSeeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	fmt.Println("\nSeeding completed. Log in as user@wanderly.dev / password123")
}

// CleanDatabase truncates all tables, children first
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"reviews",
		"wishlist_items",
		"cart_items",
		"carts",
		"bookings",
		"experiences",
		"users",
	}

	return s.db.PostgreSQL.Transaction(func(tx *gorm.DB) error {
		for _, table := range tables {
			fmt.Printf("  Truncating table: %s\n", table)
			if err := tx.Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", table)).Error; err != nil {
				return fmt.Errorf("failed to truncate table %s: %w", table, err)
			}
		}
		return nil
	})
}

// SeedAll seeds all required data
func (s *Seeder) SeedAll() error {
	userIDs, err := s.SeedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	experienceIDs, err := s.SeedExperiences(userIDs["vendor"])
	if err != nil {
		return fmt.Errorf("failed to seed experiences: %w", err)
	}

	if err := s.SeedBookingsAndReviews(userIDs["user"], experienceIDs); err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}
	return nil
}

func (s *Seeder) SeedUsers() (map[string]uuid.UUID, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	seed := []struct {
		key   string
		first string
		last  string
		email string
		role  users.Role
	}{
		{"admin", "Ada", "Admin", "admin@wanderly.dev", users.RoleAdmin},
		{"vendor", "Omar", "Haddad", "vendor@wanderly.dev", users.RoleVendor},
		{"user", "Ana", "Silva", "user@wanderly.dev", users.RoleUser},
	}

	ids := make(map[string]uuid.UUID, len(seed))
	for _, u := range seed {
		user := users.User{
			ID:        uuid.New(),
			FirstName: u.first,
			LastName:  u.last,
			Email:     u.email,
			Password:  string(hashed),
			Role:      u.role,
		}
		if err := s.db.PostgreSQL.Create(&user).Error; err != nil {
			return nil, err
		}
		ids[u.key] = user.ID
		fmt.Printf("  Created %s: %s\n", u.role, u.email)
	}
	return ids, nil
}

func (s *Seeder) SeedExperiences(vendorID uuid.UUID) ([]uuid.UUID, error) {
	type listing struct {
		Title, Category, Currency, Duration, City, Country string
		Price                                              float64
		TimeSlots                                          []string
	}

	listings := []listing{
		{Title: "Desert Safari with BBQ Dinner", Category: "Adventure", Price: 65, Currency: "AED", Duration: "6 hours", City: "Dubai", TimeSlots: []string{"3:00 PM"}},
		{Title: "Burj Khalifa At the Top", Category: "Sightseeing", Price: 42.5, Currency: "AED", Duration: "1.5 hours", City: "Dubai", TimeSlots: []string{"10:00 AM", "2:00 PM", "6:00 PM"}},
		{Title: "Dhow Cruise Dinner at the Marina", Category: "Food & Drink", Price: 38, Currency: "AED", Duration: "2 hours", City: "Dubai", TimeSlots: []string{"8:00 PM"}},
		{Title: "Abu Dhabi Full Day City Tour", Category: "Day Trips", Price: 80, Currency: "AED", Duration: "Full day", City: "Dubai"},
		{Title: "Old Dubai Souk Walking Tour", Category: "Culture", Price: 25, Currency: "AED", Duration: "90 minutes", City: "Dubai", TimeSlots: []string{"9:00 AM", "4:00 PM"}},
		{Title: "Hot Air Balloon at Sunrise", Category: "Adventure", Price: 250, Currency: "AED", Duration: "4 hours", City: "Dubai", TimeSlots: []string{"5:00 AM"}},
		{Title: "Musandam Fjords 2 Day Camp", Category: "Multi-day", Price: 320, Currency: "AED", Duration: "2 days", City: "Dubai"},
		{Title: "Lisbon Tram 28 and Alfama", Category: "Culture", Price: 18, Currency: "EUR", Duration: "3 hours", City: "Lisbon", Country: "Portugal", TimeSlots: []string{"10:00 AM"}},
	}

	ids := make([]uuid.UUID, 0, len(listings))
	for _, l := range listings {
		country := l.Country
		if country == "" {
			country = "United Arab Emirates"
		}
		experience := experiences.Experience{
			ID:          uuid.New(),
			VendorID:    vendorID,
			Title:       l.Title,
			Description: "Seeded listing: " + l.Title,
			Category:    l.Category,
			Price:       l.Price,
			Currency:    l.Currency,
			Duration:    l.Duration,
			Images:      datatypes.JSONSlice[string]{},
			Location:    experiences.Location{City: l.City, Country: country},
			Capacity:    experiences.DefaultCapacity,
			TimeSlots:   datatypes.JSONSlice[string](l.TimeSlots),
			Status:      experiences.StatusApproved,
			IsActive:    true,
		}
		if experience.TimeSlots == nil {
			experience.TimeSlots = datatypes.JSONSlice[string]{}
		}
		if err := s.db.PostgreSQL.Create(&experience).Error; err != nil {
			return nil, err
		}
		ids = append(ids, experience.ID)
		fmt.Printf("  Created experience: %s\n", experience.Title)
	}
	return ids, nil
}

// SeedBookingsAndReviews gives the demo user one completed, reviewed trip and
// nearly sells out the Burj Khalifa morning slot a week from now.
func (s *Seeder) SeedBookingsAndReviews(userID uuid.UUID, experienceIDs []uuid.UUID) error {
	if len(experienceIDs) < 2 {
		return nil
	}
	today, _ := bookings.DayBounds(time.Now())

	past := bookings.Booking{
		ID:            uuid.New(),
		BookingRef:    "WND-" + shortuuid.New()[:10],
		UserID:        userID,
		ExperienceID:  experienceIDs[0],
		Date:          today.AddDate(0, 0, -14),
		TimeSlot:      "3:00 PM",
		Slots:         2,
		TotalPrice:    130,
		Currency:      "AED",
		Status:        bookings.StatusCompleted,
		PaymentStatus: bookings.PaymentPaid,
	}
	upcoming := bookings.Booking{
		ID:            uuid.New(),
		BookingRef:    "WND-" + shortuuid.New()[:10],
		UserID:        userID,
		ExperienceID:  experienceIDs[1],
		Date:          today.AddDate(0, 0, 7),
		TimeSlot:      "10:00 AM",
		Slots:         18,
		TotalPrice:    765,
		Currency:      "AED",
		Status:        bookings.StatusConfirmed,
		PaymentStatus: bookings.PaymentPaid,
	}
	for _, b := range []*bookings.Booking{&past, &upcoming} {
		if err := s.db.PostgreSQL.Create(b).Error; err != nil {
			return err
		}
		fmt.Printf("  Created booking %s (%s)\n", b.BookingRef, b.Status)
	}

	review := reviews.Review{
		ID:           uuid.New(),
		UserID:       userID,
		ExperienceID: past.ExperienceID,
		Rating:       5,
		Comment:      "Dune bashing was a blast and dinner under the stars was lovely.",
	}
	if err := s.db.PostgreSQL.Create(&review).Error; err != nil {
		return err
	}
	return s.db.PostgreSQL.Model(&experiences.Experience{}).
		Where("id = ?", past.ExperienceID).
		Updates(map[string]interface{}{"num_reviews": 1, "average_rating": 5}).Error
}
