package delivery

import (
	"net/http"
	"strconv"

	"github.com/Gargooie/Order-Management-API/internal/domain"
	"github.com/Gargooie/Order-Management-API/internal/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type OrderHandler struct {
	useCase usecase.OrderUseCase
	log     *logrus.Logger
}

func NewOrderHandler(uc usecase.OrderUseCase, logger *logrus.Logger) *OrderHandler {
	return &OrderHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *OrderHandler) RegisterRoutes(router gin.IRouter) {
	orders := router.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrderByID)
		orders.PATCH("/:id/status", h.UpdateOrderStatus)
		orders.DELETE("/:id", h.DeleteOrder)

		orders.POST("/:id/items", h.AddItem)
		orders.PATCH("/:id/items/:productId", h.UpdateItemQuantity)
		orders.DELETE("/:id/items/:productId", h.RemoveItem)
	}
}

// orderView mirrors Order but annotates each line with its extended total.
type orderView struct {
	*domain.Order
	Items []orderItemView `json:"items"`
}

type orderItemView struct {
	domain.OrderItem
	Total float64 `json:"total"`
}

func newOrderView(order *domain.Order) orderView {
	items := make([]orderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemView{
			OrderItem: item,
			Total:     float64(item.Quantity) * item.Price,
		})
	}
	return orderView{Order: order, Items: items}
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var requestBody struct {
		ClientID int `json:"client_id"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for create order: %v", err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	order, err := h.useCase.CreateOrder(requestBody.ClientID)
	if err != nil {
		h.log.Warnf("Failed to create order for client %d: %v", requestBody.ClientID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to create order: "+err.Error())
		return
	}

	h.log.Infof("Order %d created for client %d", order.ID, order.ClientID)
	SuccessResponse(c, http.StatusCreated, "Order created successfully", newOrderView(order))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	clientIDStr := c.Query("client_id")
	clientID, err := strconv.Atoi(clientIDStr)
	if err != nil || clientID <= 0 {
		h.log.Warnf("Invalid client_id query parameter: %s", clientIDStr)
		ErrorResponse(c, http.StatusBadRequest, "Query parameter client_id is required and must be positive")
		return
	}
	limit, offset := pagination(c, h.log)

	orders, err := h.useCase.ListOrdersByClientID(clientID, limit, offset)
	if err != nil {
		h.log.Errorf("Failed to list orders for client %d: %v", clientID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve orders")
		return
	}
	SuccessResponse(c, http.StatusOK, "Orders retrieved successfully", orders)
}

func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "order")
	if !ok {
		return
	}

	order, err := h.useCase.GetOrderByID(id)
	if err != nil {
		h.log.Warnf("Failed to get order %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to retrieve order: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Order retrieved successfully", newOrderView(order))
}

func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "order")
	if !ok {
		return
	}

	var requestBody struct {
		Status *domain.OrderStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for update order %d status: %v", id, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if requestBody.Status == nil {
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: 'status' field is required")
		return
	}

	order, err := h.useCase.UpdateOrderStatus(id, *requestBody.Status)
	if err != nil {
		h.log.Warnf("Failed to update status of order %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update order status: "+err.Error())
		return
	}

	h.log.Infof("Order %d status updated to %s", order.ID, order.Status)
	SuccessResponse(c, http.StatusOK, "Order status updated successfully", newOrderView(order))
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c, h.log, "id", "order")
	if !ok {
		return
	}

	if err := h.useCase.DeleteOrder(c.Request.Context(), id); err != nil {
		h.log.Warnf("Failed to delete order %d: %v", id, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to delete order: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Order deleted successfully", nil)
}

func (h *OrderHandler) AddItem(c *gin.Context) {
	orderID, ok := pathID(c, h.log, "id", "order")
	if !ok {
		return
	}

	var requestBody struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for add item to order %d: %v", orderID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	item, order, err := h.useCase.AddItem(c.Request.Context(), orderID, requestBody.ProductID, requestBody.Quantity)
	if err != nil {
		h.log.Warnf("Failed to add product %d to order %d: %v", requestBody.ProductID, orderID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to add item: "+err.Error())
		return
	}

	h.log.Infof("Product %d added to order %d, total is now %.2f", item.ProductID, orderID, order.TotalAmount)
	SuccessResponse(c, http.StatusCreated, "Item added successfully", newOrderView(order))
}

func (h *OrderHandler) UpdateItemQuantity(c *gin.Context) {
	orderID, ok := pathID(c, h.log, "id", "order")
	if !ok {
		return
	}
	productID, ok := pathID(c, h.log, "productId", "product")
	if !ok {
		return
	}

	var requestBody struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&requestBody); err != nil {
		h.log.Warnf("Failed to bind JSON for update item in order %d: %v", orderID, err)
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	_, order, err := h.useCase.UpdateItemQuantity(c.Request.Context(), orderID, productID, requestBody.Quantity)
	if err != nil {
		h.log.Warnf("Failed to update product %d in order %d: %v", productID, orderID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to update item: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Item updated successfully", newOrderView(order))
}

func (h *OrderHandler) RemoveItem(c *gin.Context) {
	orderID, ok := pathID(c, h.log, "id", "order")
	if !ok {
		return
	}
	productID, ok := pathID(c, h.log, "productId", "product")
	if !ok {
		return
	}

	order, err := h.useCase.RemoveItem(c.Request.Context(), orderID, productID)
	if err != nil {
		h.log.Warnf("Failed to remove product %d from order %d: %v", productID, orderID, err)
		ErrorResponse(c, mapErrorToStatus(err), "Failed to remove item: "+err.Error())
		return
	}
	SuccessResponse(c, http.StatusOK, "Item removed successfully", newOrderView(order))
}
