package wishlist

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupWishlistRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	wishlist := rg.Group("/wishlist")
	wishlist.Use(middleware.JWTAuth(cfg))
	{
		wishlist.GET("", controller.GetWishlist)
		wishlist.POST("/:experienceId", controller.AddToWishlist)
		wishlist.DELETE("/:experienceId", controller.RemoveFromWishlist)
	}
}
