package wishlist

import (
	"net/http"

	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/params"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	GetWishlist(c *gin.Context)
	AddToWishlist(c *gin.Context)
	RemoveFromWishlist(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func (ctrl *controller) GetWishlist(c *gin.Context) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	items, err := ctrl.service.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Wishlist retrieved successfully", items, nil)
}

// AddToWishlist godoc
// @Summary Save an experience
// @Tags wishlist
// @Security BearerAuth
// @Produce json
// @Param experienceId path string true "experience id"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /wishlist/{experienceId} [post]
func (ctrl *controller) AddToWishlist(c *gin.Context) {
	experienceID, ok := params.UUID(c, "experienceId")
	if !ok {
		return
	}

	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	items, err := ctrl.service.Add(c.Request.Context(), userID, experienceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Saved to wishlist", items, nil)
}

func (ctrl *controller) RemoveFromWishlist(c *gin.Context) {
	experienceID, ok := params.UUID(c, "experienceId")
	if !ok {
		return
	}

	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	items, err := ctrl.service.Remove(c.Request.Context(), userID, experienceID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Removed from wishlist", items, nil)
}
