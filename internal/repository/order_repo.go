package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresOrderRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logrus.Logger) domain.OrderRepository {
	return &postgresOrderRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderRepository) CreateOrder(order *domain.Order) (*domain.Order, error) {
	query := `
        INSERT INTO orders (client_id, status)
        VALUES ($1, $2)
        RETURNING id, order_date, status, total_amount, created_at, updated_at`
	err := r.db.QueryRow(query, order.ClientID, order.Status).Scan(
		&order.ID,
		&order.OrderDate,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.log.Warnf("Attempted to create order for non-existent client ID: %d", order.ClientID)
			return nil, &domain.NotFoundError{Entity: "client", ID: order.ClientID}
		}
		r.log.Errorf("Failed to insert order for client %d: %v", order.ClientID, err)
		return nil, fmt.Errorf("could not create order: %w", err)
	}
	order.Items = []domain.OrderItem{}
	r.log.Infof("Order created with ID: %d for client: %d", order.ID, order.ClientID)
	return order, nil
}

func (r *postgresOrderRepository) GetOrderByID(id int) (*domain.Order, error) {
	order := &domain.Order{}
	query := `
        SELECT id, client_id, order_date, status, total_amount, created_at, updated_at
        FROM orders
        WHERE id = $1`
	err := r.db.QueryRow(query, id).Scan(
		&order.ID,
		&order.ClientID,
		&order.OrderDate,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", id)
			return nil, &domain.NotFoundError{Entity: "order", ID: id}
		}
		r.log.Errorf("Failed to get order by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not retrieve order: %w", err)
	}

	items, err := r.getOrderItems(id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	r.log.Infof("Order %d retrieved successfully with %d items", order.ID, len(order.Items))
	return order, nil
}

func (r *postgresOrderRepository) getOrderItems(orderID int) ([]domain.OrderItem, error) {
	query := `
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = $1
        ORDER BY id ASC`
	rows, err := r.db.Query(query, orderID)
	if err != nil {
		r.log.Errorf("Failed to query order items for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan order item row for order ID %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order items: %w", err)
	}
	return items, nil
}

func (r *postgresOrderRepository) UpdateOrderStatus(id int, status domain.OrderStatus) (*domain.Order, error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for status update: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("UpdateOrderStatus: Failed to rollback transaction: %v (original error: %v)", rbErr, err)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit status update transaction: %w", cErr)
				r.log.Errorf("UpdateOrderStatus: %v", err)
			}
		}
	}()

	var previous domain.OrderStatus
	err = tx.QueryRow(`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&previous)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for status update", id)
			err = &domain.NotFoundError{Entity: "order", ID: id}
			return nil, err
		}
		r.log.Errorf("Failed to lock order %d for status update: %v", id, err)
		return nil, fmt.Errorf("could not lock order for status update: %w", err)
	}

	// Cancelling an order returns its reserved stock; the lines stay on the
	// order for history, so a later delete must not restore them again.
	if status == domain.StatusCancelled && previous != domain.StatusCancelled {
		if err = r.restoreItemStock(tx, id); err != nil {
			return nil, err
		}
	}

	updatedOrder := &domain.Order{}
	err = tx.QueryRow(`
        UPDATE orders SET status = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING id, client_id, order_date, status, total_amount, created_at, updated_at`,
		status, id).Scan(
		&updatedOrder.ID,
		&updatedOrder.ClientID,
		&updatedOrder.OrderDate,
		&updatedOrder.Status,
		&updatedOrder.TotalAmount,
		&updatedOrder.CreatedAt,
		&updatedOrder.UpdatedAt,
	)
	if err != nil {
		r.log.Errorf("Failed to update status for order ID %d: %v", id, err)
		return nil, fmt.Errorf("could not update order status: %w", err)
	}

	items, err := r.getOrderItemsTx(tx, id)
	if err != nil {
		return nil, err
	}
	updatedOrder.Items = items

	r.log.Infof("Order %d status updated from '%s' to '%s'", id, previous, status)
	return updatedOrder, nil
}

func (r *postgresOrderRepository) DeleteOrder(id int) error {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for order delete: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("DeleteOrder: Failed to rollback transaction: %v (original error: %v)", rbErr, err)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit order delete transaction: %w", cErr)
				r.log.Errorf("DeleteOrder: %v", err)
			}
		}
	}()

	var status domain.OrderStatus
	err = tx.QueryRow(`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found for deletion", id)
			err = &domain.NotFoundError{Entity: "order", ID: id}
			return err
		}
		r.log.Errorf("Failed to lock order %d for deletion: %v", id, err)
		return fmt.Errorf("could not lock order for deletion: %w", err)
	}

	// Stock for cancelled orders was already restored at cancellation time.
	if status != domain.StatusCancelled {
		if err = r.restoreItemStock(tx, id); err != nil {
			return err
		}
	}

	_, err = tx.Exec(`DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		r.log.Errorf("Failed to delete order ID %d: %v", id, err)
		return fmt.Errorf("could not delete order: %w", err)
	}

	r.log.Infof("Order deleted successfully with ID: %d", id)
	return nil
}

// restoreItemStock returns every line's quantity to its product within tx.
func (r *postgresOrderRepository) restoreItemStock(tx *sql.Tx, orderID int) error {
	_, err := tx.Exec(`
        UPDATE products p
        SET quantity = p.quantity + oi.quantity, updated_at = NOW()
        FROM order_items oi
        WHERE oi.order_id = $1 AND oi.product_id = p.id`, orderID)
	if err != nil {
		r.log.Errorf("Failed to restore stock for order %d: %v", orderID, err)
		return fmt.Errorf("could not restore stock for order items: %w", err)
	}
	return nil
}

func (r *postgresOrderRepository) getOrderItemsTx(tx *sql.Tx, orderID int) ([]domain.OrderItem, error) {
	query := `
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = $1
        ORDER BY id ASC`
	rows, err := tx.Query(query, orderID)
	if err != nil {
		r.log.Errorf("Failed to query order items within tx for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("could not retrieve order items within tx: %w", err)
	}
	defer rows.Close()

	items := []domain.OrderItem{}
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan order item row within tx for order ID %d: %v", orderID, err)
			return nil, fmt.Errorf("error scanning order item within tx: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during order items iteration within tx for order ID %d: %v", orderID, err)
		return nil, fmt.Errorf("error iterating order items within tx: %w", err)
	}
	return items, nil
}

func (r *postgresOrderRepository) ListOrdersByClientID(clientID, limit, offset int) ([]domain.Order, error) {
	limit, offset = clampPage(limit, offset)

	ordersQuery := `
        SELECT id, client_id, order_date, status, total_amount, created_at, updated_at
        FROM orders
        WHERE client_id = $1
        ORDER BY order_date DESC
        LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ordersQuery, clientID, limit, offset)
	if err != nil {
		r.log.Errorf("Failed to list orders for client ID %d: %v", clientID, err)
		return nil, fmt.Errorf("could not retrieve orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	orderIDs := []int{}
	for rows.Next() {
		var order domain.Order
		if err := rows.Scan(
			&order.ID,
			&order.ClientID,
			&order.OrderDate,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan order row for client ID %d: %v", clientID, err)
			return nil, fmt.Errorf("error scanning order data: %w", err)
		}
		orders = append(orders, order)
		orderIDs = append(orderIDs, order.ID)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during orders iteration for client ID %d: %v", clientID, err)
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	if len(orders) == 0 {
		return []domain.Order{}, nil
	}

	itemsQuery := `
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = ANY($1::int[])
        ORDER BY order_id, id`
	itemRows, err := r.db.Query(itemsQuery, pq.Array(orderIDs))
	if err != nil {
		r.log.Errorf("Failed to query items for multiple orders (%v): %v", orderIDs, err)
		return nil, fmt.Errorf("could not retrieve order items for list: %w", err)
	}
	defer itemRows.Close()

	itemsMap := make(map[int][]domain.OrderItem)
	for itemRows.Next() {
		var item domain.OrderItem
		if err := itemRows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan order item row during multi-order fetch: %v", err)
			return nil, fmt.Errorf("error scanning order item data for list: %w", err)
		}
		itemsMap[item.OrderID] = append(itemsMap[item.OrderID], item)
	}
	if err = itemRows.Err(); err != nil {
		r.log.Errorf("Error during multi-order items iteration: %v", err)
		return nil, fmt.Errorf("error iterating order items for list: %w", err)
	}

	for i := range orders {
		if items, ok := itemsMap[orders[i].ID]; ok {
			orders[i].Items = items
		} else {
			orders[i].Items = []domain.OrderItem{}
		}
	}

	r.log.Infof("Retrieved %d orders for client ID %d", len(orders), clientID)
	return orders, nil
}
