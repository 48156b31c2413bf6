package domain

import "time"

// Product is a catalog entry. Quantity is the live stock counter and is
// mutated only through order line-item operations.
type Product struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	Quantity   int       `json:"quantity"`
	Price      float64   `json:"price"`
	CategoryID *int      `json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ApplyStockDelta returns the stock level after applying delta, rejecting
// any result below zero. productID and requested are only used to build the
// error.
func ApplyStockDelta(productID, stock, delta, requested int) (int, error) {
	next := stock + delta
	if next < 0 {
		return stock, &InsufficientStockError{
			ProductID: productID,
			Requested: requested,
			Available: stock,
		}
	}
	return next, nil
}

type ProductRepository interface {
	CreateProduct(product *Product) (*Product, error)
	GetProductByID(id int) (*Product, error)
	UpdateProduct(id int, updates map[string]interface{}) (*Product, error)
	DeleteProduct(id int) error
	ListProducts(limit, offset int) ([]Product, error)
	ListProductsByCategory(categoryID, limit, offset int) ([]Product, error)
}
