package reviews

import (
	"net/http"

	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/params"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	CreateReview(c *gin.Context)
	ListReviews(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// CreateReview godoc
// @Summary Review an experience you have booked
// @Tags reviews
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "experience id"
// @Param body body CreateReviewRequest true "review"
// @Success 201 {object} response.StandardApiResponse
// @Failure 409 {object} response.StandardApiResponse
// @Router /experiences/{id}/reviews [post]
func (ctrl *controller) CreateReview(c *gin.Context) {
	experienceID, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	var req CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	review, err := ctrl.service.Create(c.Request.Context(), userID, experienceID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Review created successfully", review, nil)
}

func (ctrl *controller) ListReviews(c *gin.Context) {
	experienceID, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	page, err := ctrl.service.List(c.Request.Context(), experienceID, params.Page(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Reviews retrieved successfully", page, nil)
}
