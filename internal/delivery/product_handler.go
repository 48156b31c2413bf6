package delivery

import (
	"net/http"
	"strconv"

	"github.com/Gargooie/Order-Management-API/internal/domain"
	"github.com/Gargooie/Order-Management-API/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	useCase usecase.ProductUseCase
	log     *logrus.Logger
}

func NewProductHandler(uc usecase.ProductUseCase, logger *logrus.Logger) *ProductHandler {
	return &ProductHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *ProductHandler) RegisterRoutes(router gin.IRouter) {
	products := router.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProductByID)
		products.PATCH("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}
}

type productDetails struct {
	*domain.Product
	CategoryName string `json:"category_name,omitempty"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var requestBody struct {
		Name       string  `json:"name"`
		Price      float64 `json:"price"`
		Quantity   int     `json:"quantity"`
		CategoryID *int    `json:"category_id"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for create product: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product := domain.Product{
		Name:       requestBody.Name,
		Price:      requestBody.Price,
		Quantity:   requestBody.Quantity,
		CategoryID: requestBody.CategoryID,
	}
	createdProduct, err := h.useCase.CreateProduct(&product)
	if err != nil {
		h.log.Warnf("Failed to create product '%s': %v", requestBody.Name, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create product: "+err.Error())
		return
	}

	h.log.Infof("Product %d created successfully", createdProduct.ID)
	SuccessResponse(c, http.StatusCreated, "Product created successfully", createdProduct)
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	limit, offset := pagination(c, h.log)

	if categoryIDStr := c.Query("category_id"); categoryIDStr != "" {
		categoryID, err := strconv.Atoi(categoryIDStr)
		if err != nil || categoryID <= 0 {
			h.log.Warnf("Invalid category_id query parameter: %s", categoryIDStr)
			ErrorResponse(c, http.StatusBadRequest, "Invalid category_id format")
			return
		}
		products, err := h.useCase.ListProductsByCategory(categoryID, limit, offset)
		if err != nil {
			h.log.Warnf("Failed to list products for category %d: %v", categoryID, err)
			ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve products: "+err.Error())
			return
		}
		SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
		return
	}

	products, err := h.useCase.ListProducts(limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list products: %v", err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve products")
		return
	}
	SuccessResponse(c, http.StatusOK, "Products retrieved successfully", products)
}

func (h *ProductHandler) GetProductByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "product")
	if !ok {
		return
	}

	product, categoryName, err := h.useCase.GetProductDetails(id)
	if err != nil {
		h.log.Warnf("Failed to get product %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve product: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product retrieved successfully", productDetails{
		Product:      product,
		CategoryName: categoryName,
	})
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "product")
	if !ok {
		return
	}

	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		h.log.Warnf("Failed to bind JSON for update product %d: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	product, err := h.useCase.UpdateProduct(id, updates)
	if err != nil {
		h.log.Warnf("Failed to update product %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update product: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product updated successfully", product)
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "product")
	if !ok {
		return
	}

	if err := h.useCase.DeleteProduct(id); err != nil {
		h.log.Warnf("Failed to delete product %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete product: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Product deleted successfully", nil)
}

// pagination reads limit/offset query parameters with the defaults and cap
// the list endpoints share.
func pagination(c *gin.Context, log *logrus.Logger) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 0 {
		log.Warnf("Invalid limit parameter '%s', using default 10", c.Query("limit"))
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		log.Warnf("Invalid offset parameter '%s', using default 0", c.Query("offset"))
		offset = 0
	}
	return limit, offset
}
