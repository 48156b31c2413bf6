package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

// postgresOrderItemRepository is the single entry point for line-item
// mutations. Every mutation runs in one transaction that locks the owning
// order row (serializing concurrent mutations on the same order), locks the
// product row (making the stock check-and-decrement atomic), applies the
// item change, and recomputes the order total as a full re-aggregation.
type postgresOrderItemRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresOrderItemRepository(db *sql.DB, logger *logrus.Logger) domain.OrderItemRepository {
	return &postgresOrderItemRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresOrderItemRepository) AddItem(orderID, productID, quantity int) (item *domain.OrderItem, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for add item: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer r.finishTx(tx, &err)

	if err = r.lockOrder(tx, orderID); err != nil {
		return nil, err
	}

	stock, price, err := r.lockProduct(tx, productID)
	if err != nil {
		return nil, err
	}

	existing := &domain.OrderItem{}
	found := true
	err = tx.QueryRow(`
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = $1 AND product_id = $2`, orderID, productID).
		Scan(&existing.ID, &existing.OrderID, &existing.ProductID, &existing.Quantity, &existing.Price, &existing.CreatedAt)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			r.log.Errorf("Failed to look up existing item (order %d, product %d): %v", orderID, productID, err)
			return nil, fmt.Errorf("could not look up existing order item: %w", err)
		}
		found = false
		err = nil
	}

	newStock, err := domain.ApplyStockDelta(productID, stock, -quantity, quantity)
	if err != nil {
		r.log.Warnf("Insufficient stock adding product %d to order %d: %v", productID, orderID, err)
		return nil, err
	}

	if found {
		// Same (order, product) pair: grow the existing line, keep its price
		// snapshot.
		existing.Quantity += quantity
		_, err = tx.Exec(`UPDATE order_items SET quantity = $1 WHERE id = $2`, existing.Quantity, existing.ID)
		if err != nil {
			r.log.Errorf("Failed to grow order item %d: %v", existing.ID, err)
			return nil, fmt.Errorf("could not update order item quantity: %w", err)
		}
		item = existing
		r.log.Infof("Quantity of product %d in order %d increased by %d (now %d)", productID, orderID, quantity, existing.Quantity)
	} else {
		item = &domain.OrderItem{
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     price,
		}
		err = tx.QueryRow(`
            INSERT INTO order_items (order_id, product_id, quantity, price)
            VALUES ($1, $2, $3, $4)
            RETURNING id, created_at`,
			orderID, productID, quantity, price).
			Scan(&item.ID, &item.CreatedAt)
		if err != nil {
			r.log.Errorf("Failed to insert order item (order %d, product %d): %v", orderID, productID, err)
			return nil, fmt.Errorf("could not create order item: %w", err)
		}
		r.log.Infof("Product %d added to order %d with quantity %d at price %.2f", productID, orderID, quantity, price)
	}

	if err = r.updateProductStock(tx, productID, newStock); err != nil {
		return nil, err
	}
	if err = r.recomputeOrderTotal(tx, orderID); err != nil {
		return nil, err
	}
	return item, nil
}

func (r *postgresOrderItemRepository) UpdateItemQuantity(orderID, productID, quantity int) (item *domain.OrderItem, err error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for update item: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer r.finishTx(tx, &err)

	if err = r.lockOrder(tx, orderID); err != nil {
		return nil, err
	}

	stock, _, err := r.lockProduct(tx, productID)
	if err != nil {
		return nil, err
	}

	item = &domain.OrderItem{}
	err = tx.QueryRow(`
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = $1 AND product_id = $2`, orderID, productID).
		Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("No line for product %d in order %d to update", productID, orderID)
			err = &domain.NotFoundError{Entity: "order item", ID: productID}
			return nil, err
		}
		r.log.Errorf("Failed to look up item (order %d, product %d): %v", orderID, productID, err)
		return nil, fmt.Errorf("could not look up order item: %w", err)
	}

	// Stock moves by the difference between the old and the new quantity.
	newStock, err := domain.ApplyStockDelta(productID, stock, item.Quantity-quantity, quantity-item.Quantity)
	if err != nil {
		r.log.Warnf("Insufficient stock updating product %d in order %d: %v", productID, orderID, err)
		return nil, err
	}

	item.Quantity = quantity
	_, err = tx.Exec(`UPDATE order_items SET quantity = $1 WHERE id = $2`, quantity, item.ID)
	if err != nil {
		r.log.Errorf("Failed to update order item %d: %v", item.ID, err)
		return nil, fmt.Errorf("could not update order item quantity: %w", err)
	}

	if err = r.updateProductStock(tx, productID, newStock); err != nil {
		return nil, err
	}
	if err = r.recomputeOrderTotal(tx, orderID); err != nil {
		return nil, err
	}

	r.log.Infof("Quantity of product %d in order %d set to %d", productID, orderID, quantity)
	return item, nil
}

func (r *postgresOrderItemRepository) RemoveItem(orderID, productID int) (err error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for remove item: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer r.finishTx(tx, &err)

	if err = r.lockOrder(tx, orderID); err != nil {
		return err
	}

	stock, _, err := r.lockProduct(tx, productID)
	if err != nil {
		return err
	}

	var itemID, quantity int
	err = tx.QueryRow(`
        SELECT id, quantity FROM order_items
        WHERE order_id = $1 AND product_id = $2`, orderID, productID).
		Scan(&itemID, &quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("No line for product %d in order %d to remove", productID, orderID)
			err = &domain.NotFoundError{Entity: "order item", ID: productID}
			return err
		}
		r.log.Errorf("Failed to look up item (order %d, product %d): %v", orderID, productID, err)
		return fmt.Errorf("could not look up order item: %w", err)
	}

	_, err = tx.Exec(`DELETE FROM order_items WHERE id = $1`, itemID)
	if err != nil {
		r.log.Errorf("Failed to delete order item %d: %v", itemID, err)
		return fmt.Errorf("could not delete order item: %w", err)
	}

	if err = r.updateProductStock(tx, productID, stock+quantity); err != nil {
		return err
	}
	if err = r.recomputeOrderTotal(tx, orderID); err != nil {
		return err
	}

	r.log.Infof("Product %d removed from order %d, %d units returned to stock", productID, orderID, quantity)
	return nil
}

// lockOrder takes a row lock on the owning order so that concurrent item
// mutations on the same order serialize against the total recomputation.
func (r *postgresOrderItemRepository) lockOrder(tx *sql.Tx, orderID int) error {
	var status string
	err := tx.QueryRow(`SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Order with ID %d not found", orderID)
			return &domain.NotFoundError{Entity: "order", ID: orderID}
		}
		r.log.Errorf("Failed to lock order %d: %v", orderID, err)
		return fmt.Errorf("could not lock order: %w", err)
	}
	return nil
}

// lockProduct takes a row lock on the product so the non-negativity
// check-and-decrement is a single atomic step.
func (r *postgresOrderItemRepository) lockProduct(tx *sql.Tx, productID int) (stock int, price float64, err error) {
	err = tx.QueryRow(`SELECT quantity, price FROM products WHERE id = $1 FOR UPDATE`, productID).
		Scan(&stock, &price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", productID)
			return 0, 0, &domain.NotFoundError{Entity: "product", ID: productID}
		}
		r.log.Errorf("Failed to lock product %d: %v", productID, err)
		return 0, 0, fmt.Errorf("could not lock product: %w", err)
	}
	return stock, price, nil
}

func (r *postgresOrderItemRepository) updateProductStock(tx *sql.Tx, productID, stock int) error {
	_, err := tx.Exec(`UPDATE products SET quantity = $1, updated_at = NOW() WHERE id = $2`, stock, productID)
	if err != nil {
		r.log.Errorf("Failed to update stock for product %d: %v", productID, err)
		return fmt.Errorf("could not update product stock: %w", err)
	}
	return nil
}

// recomputeOrderTotal re-aggregates the order total from its current lines
// within the mutating transaction. A full sum is used instead of an
// incremental delta.
func (r *postgresOrderItemRepository) recomputeOrderTotal(tx *sql.Tx, orderID int) error {
	rows, err := tx.Query(`
        SELECT id, order_id, product_id, quantity, price, created_at
        FROM order_items
        WHERE order_id = $1`, orderID)
	if err != nil {
		r.log.Errorf("Failed to load items for total recompute of order %d: %v", orderID, err)
		return fmt.Errorf("could not load items for total recompute: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Quantity, &item.Price, &item.CreatedAt); err != nil {
			r.log.Errorf("Failed to scan item during total recompute of order %d: %v", orderID, err)
			return fmt.Errorf("error scanning item for total recompute: %w", err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error iterating items during total recompute of order %d: %v", orderID, err)
		return fmt.Errorf("error iterating items for total recompute: %w", err)
	}

	total := domain.OrderTotal(items)
	result, err := tx.Exec(`UPDATE orders SET total_amount = $1, updated_at = NOW() WHERE id = $2`, total, orderID)
	if err != nil {
		r.log.Errorf("Failed to write recomputed total for order %d: %v", orderID, err)
		return fmt.Errorf("could not write recomputed order total: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to confirm total recompute for order %d: %v", orderID, err)
		return fmt.Errorf("could not confirm order total recompute: %w", err)
	}
	if affected == 0 {
		// The order row vanished while its items were being mutated; the
		// foreign key should make this unreachable.
		r.log.Errorf("Order %d missing during total recompute", orderID)
		return &domain.IntegrityViolationError{
			Reason: fmt.Sprintf("order %d missing during total recompute", orderID),
		}
	}

	r.log.Debugf("Order %d total recomputed to %.2f over %d items", orderID, total, len(items))
	return nil
}

func (r *postgresOrderItemRepository) finishTx(tx *sql.Tx, errp *error) {
	if p := recover(); p != nil {
		_ = tx.Rollback()
		panic(p)
	}
	if *errp != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			r.log.Errorf("Failed to rollback transaction: %v (original error: %v)", rbErr, *errp)
		}
		return
	}
	if cErr := tx.Commit(); cErr != nil {
		*errp = fmt.Errorf("failed to commit transaction: %w", cErr)
		r.log.Errorf("Transaction commit failed: %v", *errp)
	}
}
