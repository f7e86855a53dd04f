package reviews

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupReviewRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	rg.GET("/experiences/:id/reviews", controller.ListReviews)                            // GET /api/v1/experiences/:id/reviews?page=1
	rg.POST("/experiences/:id/reviews", middleware.JWTAuth(cfg), controller.CreateReview) // POST /api/v1/experiences/:id/reviews
}
