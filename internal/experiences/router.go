package experiences

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"
	"wanderly/internal/users"

	"github.com/gin-gonic/gin"
)

func SetupExperienceRoutes(router *gin.RouterGroup, controller Controller, cfg *config.Config) {
	// Public browsing
	public := router.Group("/experiences")
	{
		public.GET("", controller.Search)        // GET /api/v1/experiences - Search approved listings
		public.GET("/:id", controller.GetPublic) // GET /api/v1/experiences/:id - Listing details
	}

	// Vendors manage their own listings; admins may act on any of them
	vendor := router.Group("/vendor/experiences")
	vendor.Use(middleware.JWTAuth(cfg), middleware.RequireRoles(users.RoleVendor, users.RoleAdmin))
	{
		vendor.POST("", controller.CreateOwn)
		vendor.GET("", controller.ListOwn)
		vendor.PUT("/:id", controller.UpdateOwn)
		vendor.DELETE("/:id", controller.DeleteOwn)
	}

	// Moderation
	admin := router.Group("/admin/experiences")
	admin.Use(middleware.JWTAuth(cfg), middleware.RequireAdmin())
	{
		admin.GET("", controller.AdminList)
		admin.PATCH("/:id/status", controller.AdminUpdateStatus)
		admin.PATCH("/:id/active", controller.AdminUpdateActive)
	}
}
