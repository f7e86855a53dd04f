package bookings

import (
	"net/http"

	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/params"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetAvailability(c *gin.Context)
	CreateBooking(c *gin.Context)
	GetBooking(c *gin.Context)
	GetUserBookings(c *gin.Context)
	CancelBooking(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetAvailability godoc
// @Summary Seats left per time slot on a day
// @Tags bookings
// @Produce json
// @Param id path string true "experience id"
// @Param date query string true "YYYY-MM-DD"
// @Success 200 {object} response.StandardApiResponse
// @Failure 400 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /experiences/{id}/availability [get]
func (ctrl *controller) GetAvailability(c *gin.Context) {
	experienceID, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	availability, err := ctrl.service.Availability(c.Request.Context(), experienceID, c.Query("date"))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Availability retrieved successfully", availability, nil)
}

// CreateBooking godoc
// @Summary Book seats and open a payment order
// @Tags bookings
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "replay protection"
// @Param body body CreateBookingRequest true "booking"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings [post]
func (ctrl *controller) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	result, err := ctrl.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Booking created, awaiting payment", result, nil)
}

func (ctrl *controller) GetBooking(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := ctrl.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking retrieved successfully", booking, nil)
}

func (ctrl *controller) GetUserBookings(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	page, err := ctrl.service.ListMine(c.Request.Context(), userID, params.Page(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Bookings retrieved successfully", page, nil)
}

// CancelBooking godoc
// @Summary Cancel a booking
// @Tags bookings
// @Security BearerAuth
// @Produce json
// @Param id path string true "booking id"
// @Success 200 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /bookings/{id}/cancel [post]
func (ctrl *controller) CancelBooking(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	booking, err := ctrl.service.Cancel(c.Request.Context(), actor, id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Booking cancelled successfully", booking, nil)
}
