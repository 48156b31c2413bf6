package domain

import "time"

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusShipped   OrderStatus = "shipped"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

func IsValidStatus(status OrderStatus) bool {
	switch status {
	case StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	default:
		return false
	}
}

// Order owns its items. TotalAmount is derived: it always equals
// OrderTotal(Items) and is never set directly by callers.
type Order struct {
	ID          int         `json:"id"`
	ClientID    int         `json:"client_id"`
	OrderDate   time.Time   `json:"order_date"`
	Status      OrderStatus `json:"status"`
	TotalAmount float64     `json:"total_amount"`
	Items       []OrderItem `json:"items"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderItem is one order line. Price is a snapshot taken when the line was
// created and does not follow later catalog price changes. At most one line
// exists per (order, product) pair.
type OrderItem struct {
	ID        int       `json:"id"`
	OrderID   int       `json:"order_id"`
	ProductID int       `json:"product_id"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderTotal computes the full re-aggregated total of an item set.
func OrderTotal(items []OrderItem) float64 {
	var total float64
	for _, item := range items {
		total += float64(item.Quantity) * item.Price
	}
	return total
}

type OrderRepository interface {
	CreateOrder(order *Order) (*Order, error)
	GetOrderByID(id int) (*Order, error)
	UpdateOrderStatus(id int, status OrderStatus) (*Order, error)
	DeleteOrder(id int) error
	ListOrdersByClientID(clientID, limit, offset int) ([]Order, error)
}

// OrderItemRepository mutations are atomic: the stock adjustment and the
// order total recomputation happen in the same transaction as the item
// change, or not at all.
type OrderItemRepository interface {
	AddItem(orderID, productID, quantity int) (*OrderItem, error)
	UpdateItemQuantity(orderID, productID, quantity int) (*OrderItem, error)
	RemoveItem(orderID, productID int) error
}
