package delivery

import (
	"net/http"
	"strconv"

	"github.com/Gargooie/Order-Management-API/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	useCase usecase.CategoryUseCase
	log     *logrus.Logger
}

func NewCategoryHandler(uc usecase.CategoryUseCase, logger *logrus.Logger) *CategoryHandler {
	return &CategoryHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *CategoryHandler) RegisterRoutes(router gin.IRouter) {
	categories := router.Group("/categories")
	{
		categories.POST("", h.CreateCategory)
		categories.GET("", h.ListCategories)
		categories.GET("/:id", h.GetCategoryByID)
		categories.GET("/:id/root", h.GetRootAncestor)
		categories.PATCH("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var requestBody struct {
		Name     string `json:"name"`
		ParentID *int   `json:"parent_id"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for create category: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.useCase.CreateCategory(requestBody.Name, requestBody.ParentID)
	if err != nil {
		h.log.Warnf("Failed to create category '%s': %v", requestBody.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create category: "+err.Error())
		return
	}

	h.log.Infof("Category %d created at path %s", category.ID, category.Path)
	SuccessResponse(c, http.StatusCreated, "Category created successfully", category)
}

func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories, err := h.useCase.ListCategories()
	if err != nil {
		h.log.Errorf("Failed to list categories: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve categories")
		return
	}
	SuccessResponse(c, http.StatusOK, "Categories retrieved successfully", categories)
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "category")
	if !ok {
		return
	}

	category, err := h.useCase.GetCategoryByID(id)
	if err != nil {
		h.log.Warnf("Failed to get category %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve category: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Category retrieved successfully", category)
}

func (h *CategoryHandler) GetRootAncestor(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "category")
	if !ok {
		return
	}

	root, err := h.useCase.ResolveRootAncestor(id)
	if err != nil {
		h.log.Warnf("Failed to resolve root ancestor of category %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to resolve root category: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Root category resolved successfully", root)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "category")
	if !ok {
		return
	}

	var requestBody struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for update category %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	category, err := h.useCase.UpdateCategory(id, requestBody.Name)
	if err != nil {
		h.log.Warnf("Failed to update category %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update category: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Category updated successfully", category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "category")
	if !ok {
		return
	}

	if err := h.useCase.DeleteCategory(id); err != nil {
		h.log.Warnf("Failed to delete category %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete category: "+err.Error())
		return
	}

	h.log.Infof("Category %d and its subtree deleted", id)
	SuccessResponse(c, http.StatusOK, "Category deleted successfully", nil)
}

// pathID parses a positive integer path parameter, replying 400 on failure.
func pathID(c *gin.Context, log *logrus.Logger, param, entity string) (int, bool) {
	idStr := c.Param(param)
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		log.Warnf("Invalid %s ID parameter: %s", entity, idStr)
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return 0, false
	}
	return id, true
}
