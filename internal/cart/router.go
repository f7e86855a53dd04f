package cart

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCartRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config) {
	cart := rg.Group("/cart")
	cart.Use(middleware.JWTAuth(cfg))
	{
		cart.GET("", controller.GetCart)                     // GET /api/v1/cart
		cart.DELETE("", controller.ClearCart)                // DELETE /api/v1/cart
		cart.POST("/items", controller.AddItem)              // POST /api/v1/cart/items
		cart.PATCH("/items/:itemId", controller.UpdateItem)  // PATCH /api/v1/cart/items/:itemId
		cart.DELETE("/items/:itemId", controller.RemoveItem) // DELETE /api/v1/cart/items/:itemId
	}
}
