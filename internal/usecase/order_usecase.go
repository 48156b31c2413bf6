package usecase

import (
	"context"
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type OrderUseCase interface {
	CreateOrder(clientID int) (*domain.Order, error)
	GetOrderByID(id int) (*domain.Order, error)
	UpdateOrderStatus(id int, status domain.OrderStatus) (*domain.Order, error)
	DeleteOrder(ctx context.Context, id int) error
	ListOrdersByClientID(clientID, limit, offset int) ([]domain.Order, error)

	// Line-item mutations are the single entry point that fans out to stock
	// adjustment and order total recomputation. Each returns the mutated item
	// (where applicable) and the fresh order with its recomputed total.
	AddItem(ctx context.Context, orderID, productID, quantity int) (*domain.OrderItem, *domain.Order, error)
	UpdateItemQuantity(ctx context.Context, orderID, productID, quantity int) (*domain.OrderItem, *domain.Order, error)
	RemoveItem(ctx context.Context, orderID, productID int) (*domain.Order, error)
}

type orderUseCase struct {
	orderRepo   domain.OrderRepository
	itemRepo    domain.OrderItemRepository
	clientRepo  domain.ClientRepository
	reportCache domain.ReportCache
	log         *logrus.Logger
}

func NewOrderUseCase(
	orderRepo domain.OrderRepository,
	itemRepo domain.OrderItemRepository,
	clientRepo domain.ClientRepository,
	reportCache domain.ReportCache,
	logger *logrus.Logger,
) OrderUseCase {
	return &orderUseCase{
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		clientRepo:  clientRepo,
		reportCache: reportCache,
		log:         logger,
	}
}

func (uc *orderUseCase) CreateOrder(clientID int) (*domain.Order, error) {
	if clientID <= 0 {
		uc.log.Warnf("Use Case: Attempted to create order with invalid client ID: %d", clientID)
		return nil, &domain.ValidationError{Reason: "invalid client ID"}
	}
	if _, err := uc.clientRepo.GetClientByID(clientID); err != nil {
		uc.log.Warnf("Use Case: Client ID %d not found during order creation: %v", clientID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Attempting to create order for client %d", clientID)
	order := &domain.Order{ClientID: clientID, Status: domain.StatusPending}
	createdOrder, err := uc.orderRepo.CreateOrder(order)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create order for client %d: %v", clientID, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Order created successfully with ID %d for client %d", createdOrder.ID, clientID)
	return createdOrder, nil
}

func (uc *orderUseCase) GetOrderByID(id int) (*domain.Order, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Reason: "invalid order ID"}
	}
	return uc.orderRepo.GetOrderByID(id)
}

func (uc *orderUseCase) UpdateOrderStatus(id int, status domain.OrderStatus) (*domain.Order, error) {
	if id <= 0 {
		return nil, &domain.ValidationError{Reason: "invalid order ID for status update"}
	}
	if !domain.IsValidStatus(status) {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("invalid target order status: %s", status)}
	}

	currentOrder, err := uc.orderRepo.GetOrderByID(id)
	if err != nil {
		uc.log.Warnf("Use Case: Could not get current order %d for status update check: %v", id, err)
		return nil, err
	}

	if currentOrder.Status == domain.StatusDelivered && status == domain.StatusCancelled {
		uc.log.Warnf("Use Case: Attempt to cancel an already delivered order %d", id)
		return nil, &domain.ValidationError{Reason: "cannot cancel a delivered order"}
	}
	if currentOrder.Status == domain.StatusCancelled && status != domain.StatusCancelled {
		uc.log.Warnf("Use Case: Attempt to change status of a cancelled order %d", id)
		return nil, &domain.ValidationError{Reason: "cannot change status of a cancelled order"}
	}

	uc.log.Infof("Use Case: Attempting to update status for order ID %d from '%s' to '%s'", id, currentOrder.Status, status)
	updatedOrder, err := uc.orderRepo.UpdateOrderStatus(id, status)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update status for order ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Order status updated successfully for ID %d to %s", updatedOrder.ID, updatedOrder.Status)
	return updatedOrder, nil
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, id int) error {
	if id <= 0 {
		return &domain.ValidationError{Reason: "invalid order ID for delete"}
	}

	uc.log.Infof("Use Case: Attempting to delete order ID %d", id)
	if err := uc.orderRepo.DeleteOrder(id); err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete order ID %d: %v", id, err)
		return err
	}

	uc.invalidateReports(ctx)
	return nil
}

func (uc *orderUseCase) ListOrdersByClientID(clientID, limit, offset int) ([]domain.Order, error) {
	if clientID <= 0 {
		return nil, &domain.ValidationError{Reason: "invalid client ID"}
	}
	orders, err := uc.orderRepo.ListOrdersByClientID(clientID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list orders for client %d: %v", clientID, err)
		return nil, fmt.Errorf("could not retrieve orders for client %d: %w", clientID, err)
	}
	return orders, nil
}

func (uc *orderUseCase) AddItem(ctx context.Context, orderID, productID, quantity int) (*domain.OrderItem, *domain.Order, error) {
	if err := validateItemArgs(orderID, productID); err != nil {
		return nil, nil, err
	}
	if quantity <= 0 {
		return nil, nil, &domain.ValidationError{Reason: "item quantity must be positive"}
	}

	uc.log.Infof("Use Case: Adding product %d to order %d (quantity %d)", productID, orderID, quantity)
	item, err := uc.itemRepo.AddItem(orderID, productID, quantity)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to add product %d to order %d: %v", productID, orderID, err)
		return nil, nil, err
	}

	uc.invalidateReports(ctx)
	order, err := uc.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	uc.log.Infof("Use Case: Order %d total is now %.2f", orderID, order.TotalAmount)
	return item, order, nil
}

func (uc *orderUseCase) UpdateItemQuantity(ctx context.Context, orderID, productID, quantity int) (*domain.OrderItem, *domain.Order, error) {
	if err := validateItemArgs(orderID, productID); err != nil {
		return nil, nil, err
	}
	if quantity <= 0 {
		return nil, nil, &domain.ValidationError{Reason: "item quantity must be positive"}
	}

	uc.log.Infof("Use Case: Setting quantity of product %d in order %d to %d", productID, orderID, quantity)
	item, err := uc.itemRepo.UpdateItemQuantity(orderID, productID, quantity)
	if err != nil {
		uc.log.Warnf("Use Case: Failed to update product %d in order %d: %v", productID, orderID, err)
		return nil, nil, err
	}

	uc.invalidateReports(ctx)
	order, err := uc.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, nil, err
	}
	return item, order, nil
}

func (uc *orderUseCase) RemoveItem(ctx context.Context, orderID, productID int) (*domain.Order, error) {
	if err := validateItemArgs(orderID, productID); err != nil {
		return nil, err
	}

	uc.log.Infof("Use Case: Removing product %d from order %d", productID, orderID)
	if err := uc.itemRepo.RemoveItem(orderID, productID); err != nil {
		uc.log.Warnf("Use Case: Failed to remove product %d from order %d: %v", productID, orderID, err)
		return nil, err
	}

	uc.invalidateReports(ctx)
	return uc.orderRepo.GetOrderByID(orderID)
}

func (uc *orderUseCase) invalidateReports(ctx context.Context) {
	if uc.reportCache != nil {
		uc.reportCache.InvalidateAll(ctx)
	}
}

func validateItemArgs(orderID, productID int) error {
	if orderID <= 0 {
		return &domain.ValidationError{Reason: "invalid order ID"}
	}
	if productID <= 0 {
		return &domain.ValidationError{Reason: "invalid product ID"}
	}
	return nil
}
