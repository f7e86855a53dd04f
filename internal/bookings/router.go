package bookings

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures availability and booking routes. idempotency
// guards booking creation against client retries.
func SetupBookingRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config, idempotency gin.HandlerFunc) {
	// Public availability lookup
	rg.GET("/experiences/:id/availability", controller.GetAvailability) // GET /api/v1/experiences/:id/availability?date=YYYY-MM-DD

	bookings := rg.Group("/bookings")
	bookings.Use(middleware.JWTAuth(cfg))
	{
		bookings.POST("", idempotency, controller.CreateBooking) // POST /api/v1/bookings
		bookings.GET("", controller.GetUserBookings)             // GET /api/v1/bookings?page=1
		bookings.GET("/:id", controller.GetBooking)              // GET /api/v1/bookings/:id
		bookings.POST("/:id/cancel", controller.CancelBooking)   // POST /api/v1/bookings/:id/cancel
	}
}

// Booking flow:
// 1. GET  /experiences/:id/availability?date=  seats left per slot
// 2. POST /bookings                            pending booking + gateway order
// 3. client completes checkout with the gateway
// 4. POST /payments/verify                     signature check, booking confirmed
// 5. POST /bookings/:id/cancel                 seats released, refund recorded if paid
