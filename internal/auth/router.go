package auth

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAuthRoutes registers the account endpoints under /auth
func SetupAuthRoutes(rg *gin.RouterGroup, controller *Controller, cfg *config.Config) {
	group := rg.Group("/auth")

	group.POST("/register", controller.Register)
	group.POST("/login", controller.Login)
	group.POST("/refresh", controller.RefreshToken)

	group.GET("/me", middleware.JWTAuth(cfg), controller.GetMe)
	group.PUT("/change-password", middleware.JWTAuth(cfg), controller.ChangePassword)
}
