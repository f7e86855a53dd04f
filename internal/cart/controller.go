package cart

import (
	"net/http"

	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/params"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller interface {
	GetCart(c *gin.Context)
	AddItem(c *gin.Context)
	UpdateItem(c *gin.Context)
	RemoveItem(c *gin.Context)
	ClearCart(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	userID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
	}
	return userID, ok
}

// GetCart godoc
// @Summary Current cart with totals
// @Tags cart
// @Security BearerAuth
// @Produce json
// @Success 200 {object} response.StandardApiResponse
// @Router /cart [get]
func (ctrl *controller) GetCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ctrl.service.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cart retrieved successfully", view, nil)
}

// AddItem godoc
// @Summary Add an experience to the cart
// @Tags cart
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body AddItemRequest true "item"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /cart/items [post]
func (ctrl *controller) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ctrl.service.AddItem(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Item added to cart", view, nil)
}

func (ctrl *controller) UpdateItem(c *gin.Context) {
	itemID, ok := params.UUID(c, "itemId")
	if !ok {
		return
	}

	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ctrl.service.UpdateItemQuantity(c.Request.Context(), userID, itemID, req.Quantity)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cart item updated", view, nil)
}

func (ctrl *controller) RemoveItem(c *gin.Context) {
	itemID, ok := params.UUID(c, "itemId")
	if !ok {
		return
	}

	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ctrl.service.RemoveItem(c.Request.Context(), userID, itemID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cart item removed", view, nil)
}

func (ctrl *controller) ClearCart(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	view, err := ctrl.service.Clear(c.Request.Context(), userID)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Cart cleared", view, nil)
}
