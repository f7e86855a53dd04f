package experiences

import (
	"net/http"

	"wanderly/internal/shared/middleware"
	"wanderly/internal/shared/utils/params"
	"wanderly/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller interface {
	Search(c *gin.Context)
	GetPublic(c *gin.Context)

	CreateOwn(c *gin.Context)
	ListOwn(c *gin.Context)
	UpdateOwn(c *gin.Context)
	DeleteOwn(c *gin.Context)

	AdminList(c *gin.Context)
	AdminUpdateStatus(c *gin.Context)
	AdminUpdateActive(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// Search godoc
// @Summary Search approved experiences
// @Description Groups are AND-ed; values inside a group are OR-ed. Twelve results per page.
// @Tags experiences
// @Produce json
// @Param keyword query string false "matches title, description, city or country"
// @Param category query []string false "category terms" collectionFormat(multi)
// @Param min_price query number false "inclusive lower bound"
// @Param max_price query number false "inclusive upper bound"
// @Param duration query []string false "duration bucket ids or labels" collectionFormat(multi)
// @Param page query int false "page number"
// @Success 200 {object} response.StandardApiResponse
// @Router /experiences [get]
func (ctrl *controller) Search(c *gin.Context) {
	q := ParseSearchQuery(c.Request.URL.Query())

	page, err := ctrl.service.Search(c.Request.Context(), q)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experiences retrieved successfully", page, nil)
}

// GetPublic godoc
// @Summary Experience details
// @Tags experiences
// @Produce json
// @Param id path string true "experience id"
// @Success 200 {object} response.StandardApiResponse
// @Failure 404 {object} response.StandardApiResponse
// @Router /experiences/{id} [get]
func (ctrl *controller) GetPublic(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	experience, err := ctrl.service.GetPublic(c.Request.Context(), id)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experience retrieved successfully", experience, nil)
}

// CreateOwn godoc
// @Summary Create a listing (starts pending moderation)
// @Tags vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body CreateExperienceRequest true "listing"
// @Success 201 {object} response.StandardApiResponse
// @Router /vendor/experiences [post]
func (ctrl *controller) CreateOwn(c *gin.Context) {
	var req CreateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	vendorID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	experience, err := ctrl.service.Create(c.Request.Context(), vendorID, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusCreated, "Experience submitted for review", experience, nil)
}

func (ctrl *controller) ListOwn(c *gin.Context) {
	vendorID, _, ok := middleware.CurrentUser(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	page, err := ctrl.service.ListByVendor(c.Request.Context(), vendorID, params.Page(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experiences retrieved successfully", page, nil)
}

// UpdateOwn godoc
// @Summary Update a listing; vendor edits return it to moderation
// @Tags vendor
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "experience id"
// @Param body body UpdateExperienceRequest true "fields to change"
// @Success 200 {object} response.StandardApiResponse
// @Failure 403 {object} response.StandardApiResponse
// @Router /vendor/experiences/{id} [put]
func (ctrl *controller) UpdateOwn(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	var req UpdateExperienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	experience, err := ctrl.service.Update(c.Request.Context(), actor, id, req)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experience updated successfully", experience, nil)
}

func (ctrl *controller) DeleteOwn(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	actor, ok := middleware.CurrentActor(c)
	if !ok {
		response.RespondJSON(c, "error", http.StatusUnauthorized, "User not authenticated", nil, nil)
		return
	}

	if err := ctrl.service.Delete(c.Request.Context(), actor, id); err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experience deleted successfully", nil, nil)
}

// AdminList godoc
// @Summary List experiences for moderation
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Param status query string false "pending, approved or rejected"
// @Param page query int false "page number"
// @Success 200 {object} response.StandardApiResponse
// @Router /admin/experiences [get]
func (ctrl *controller) AdminList(c *gin.Context) {
	page, err := ctrl.service.AdminList(c.Request.Context(), Status(c.Query("status")), params.Page(c))
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experiences retrieved successfully", page, nil)
}

func (ctrl *controller) AdminUpdateStatus(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	actor, _ := middleware.CurrentActor(c)
	experience, err := ctrl.service.SetStatus(c.Request.Context(), actor, id, req.Status)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experience status updated", experience, nil)
}

func (ctrl *controller) AdminUpdateActive(c *gin.Context) {
	id, ok := params.UUID(c, "id")
	if !ok {
		return
	}

	var req UpdateActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(c, "error", http.StatusBadRequest, "Invalid request body", nil, err.Error())
		return
	}

	experience, err := ctrl.service.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		response.RespondError(c, err)
		return
	}

	response.RespondJSON(c, "success", http.StatusOK, "Experience visibility updated", experience, nil)
}
