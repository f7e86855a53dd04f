package payments

import (
	"wanderly/internal/shared/config"
	"wanderly/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupPaymentRoutes(rg *gin.RouterGroup, controller Controller, cfg *config.Config, idempotency gin.HandlerFunc) {
	payments := rg.Group("/payments")
	payments.Use(middleware.JWTAuth(cfg))
	{
		payments.POST("/verify", idempotency, controller.VerifyPayment) // POST /api/v1/payments/verify
	}
}
