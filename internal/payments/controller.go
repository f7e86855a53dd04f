package payments

import (
	"net/http"

	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	VerifyPayment(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// VerifyPayment godoc
// @Summary Confirm a booking with the gateway checkout signature
// @Tags payments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "replay protection"
// @Param body body VerifyPaymentRequest true "gateway callback fields"
// @Success 200 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 403 {object} response.StandardApiResponse
// @Router /payments/verify [post]
func (ctrl *controller) VerifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := ctrl.service.Verify(c.Request.Context(), actor, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Payment verified, booking confirmed", booking, nil)
}
