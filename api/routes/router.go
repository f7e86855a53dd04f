// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	_ "wanderly/docs"
	"wanderly/internal/auth"
	"wanderly/internal/bookings"
	"wanderly/internal/cart"
	"wanderly/internal/experiences"
	"wanderly/internal/notifications"
	"wanderly/internal/payments"
	"wanderly/internal/payments/gateway"
	"wanderly/internal/reviews"
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/database"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/users"
	"wanderly/internal/wishlist"
	"wanderly/pkg/cache"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher

	// shared across modules, built once in SetupRoutes
	userRepo    users.Repository
	catalog     experiences.Service
	bookingRepo bookings.Repository
	bookings    bookings.Service
	idempotency gin.HandlerFunc
}

// NewRouter creates a new router instance. publisher receives booking
// lifecycle events; nil disables them.
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	if publisher == nil {
		publisher = notifications.NopPublisher{}
	}
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.idempotency = middleware.Idempotency(r.db.Redis, r.config.Redis.IdempotencyTTL)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// order matters: later modules depend on the catalog and booking services
		r.setupAuthRoutes(api)
		r.setupExperienceRoutes(api)
		r.setupBookingRoutes(api)
		r.setupPaymentRoutes(api)
		r.setupCartRoutes(api)
		r.setupWishlistRoutes(api)
		r.setupReviewRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "wanderly-api",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "wanderly-api",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"kafka":       r.config.Kafka.Enabled,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	r.userRepo = users.NewRepository(r.db.PostgreSQL)
	service := auth.NewService(r.userRepo, r.config)

	auth.SetupAuthRoutes(rg, auth.NewController(service), r.config)
}

func (r *Router) setupExperienceRoutes(rg *gin.RouterGroup) {
	repo := experiences.NewRepository(r.db.PostgreSQL)
	r.catalog = experiences.NewService(repo, cache.NewService(r.db.Redis))

	experiences.SetupExperienceRoutes(rg, experiences.NewController(r.catalog), r.config)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup) {
	r.bookingRepo = bookings.NewRepository(r.db.PostgreSQL)
	r.bookings = bookings.NewService(
		r.bookingRepo,
		r.catalog,
		gateway.New(r.config.Payment),
		r.publisher,
		r.config.Payment,
	)

	bookings.SetupBookingRoutes(rg, bookings.NewController(r.bookings), r.config, r.idempotency)
}

func (r *Router) setupPaymentRoutes(rg *gin.RouterGroup) {
	service := payments.NewService(r.bookingRepo, r.catalog, r.publisher, r.config.Payment)

	payments.SetupPaymentRoutes(rg, payments.NewController(service), r.config, r.idempotency)
}

func (r *Router) setupCartRoutes(rg *gin.RouterGroup) {
	service := cart.NewService(cart.NewRepository(r.db.PostgreSQL), r.catalog)

	cart.SetupCartRoutes(rg, cart.NewController(service), r.config)
}

func (r *Router) setupWishlistRoutes(rg *gin.RouterGroup) {
	service := wishlist.NewService(wishlist.NewRepository(r.db.PostgreSQL), r.catalog)

	wishlist.SetupWishlistRoutes(rg, wishlist.NewController(service), r.config)
}

func (r *Router) setupReviewRoutes(rg *gin.RouterGroup) {
	service := reviews.NewService(reviews.NewRepository(r.db.PostgreSQL), r.catalog, r.bookings)

	reviews.SetupReviewRoutes(rg, reviews.NewController(service), r.config)
}
