package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresProductRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresProductRepository(db *sql.DB, logger *logrus.Logger) domain.ProductRepository {
	return &postgresProductRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresProductRepository) CreateProduct(product *domain.Product) (*domain.Product, error) {
	query := `
        INSERT INTO products (name, quantity, price, category_id)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`
	err := r.db.QueryRow(query, product.Name, product.Quantity, product.Price, product.CategoryID).
		Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			catID := 0
			if product.CategoryID != nil {
				catID = *product.CategoryID
			}
			r.log.Warnf("Attempted to create product with non-existent category ID: %d", catID)
			return nil, &domain.NotFoundError{Entity: "category", ID: catID}
		}
		r.log.Errorf("Failed to create product '%s': %v", product.Name, err)
		return nil, fmt.Errorf("could not create product: %w", err)
	}
	r.log.Infof("Product created successfully with ID: %d, Name: %s", product.ID, product.Name)
	return product, nil
}

func (r *postgresProductRepository) GetProductByID(id int) (*domain.Product, error) {
	query := `
        SELECT id, name, quantity, price, category_id, created_at, updated_at
        FROM products
        WHERE id = $1`
	product := &domain.Product{}
	var categoryID sql.NullInt64
	err := r.db.QueryRow(query, id).Scan(
		&product.ID,
		&product.Name,
		&product.Quantity,
		&product.Price,
		&categoryID,
		&product.CreatedAt,
		&product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Product with ID %d not found", id)
			return nil, &domain.NotFoundError{Entity: "product", ID: id}
		}
		r.log.Errorf("Failed to get product by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get product by id: %w", err)
	}
	if categoryID.Valid {
		cid := int(categoryID.Int64)
		product.CategoryID = &cid
	}
	return product, nil
}

func (r *postgresProductRepository) UpdateProduct(id int, updates map[string]interface{}) (*domain.Product, error) {
	if len(updates) == 0 {
		return r.GetProductByID(id)
	}

	setClauses := []string{}
	args := []interface{}{}
	argCounter := 1

	for key, value := range updates {
		switch key {
		case "name", "price", "quantity":
			setClauses = append(setClauses, fmt.Sprintf("%s = $%d", key, argCounter))
			args = append(args, value)
		case "category_id":
			catID, ok := value.(int)
			if !ok {
				r.log.Errorf("Invalid type received for category_id for product ID %d: %T", id, value)
				return nil, fmt.Errorf("internal error: invalid type for category_id in repository")
			}
			var argValue interface{}
			if catID != 0 {
				argValue = catID
			}
			setClauses = append(setClauses, fmt.Sprintf("category_id = $%d", argCounter))
			args = append(args, argValue)
		default:
			r.log.Warnf("Skipping unknown field '%s' provided for product update ID %d", key, id)
			continue
		}
		argCounter++
	}

	if len(setClauses) == 0 {
		return r.GetProductByID(id)
	}

	setClauses = append(setClauses, "updated_at = NOW()")
	query := "UPDATE products SET " + strings.Join(setClauses, ", ") + fmt.Sprintf(" WHERE id = $%d", argCounter)
	args = append(args, id)

	result, err := r.db.Exec(query, args...)
	if err != nil {
		if isForeignKeyViolation(err) {
			catID, _ := updates["category_id"].(int)
			r.log.Warnf("Attempted to update product ID %d with non-existent category ID: %d", id, catID)
			return nil, &domain.NotFoundError{Entity: "category", ID: catID}
		}
		r.log.Errorf("Failed to execute partial update for product ID %d: %v", id, err)
		return nil, fmt.Errorf("could not partially update product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after partial update for ID %d: %v", id, err)
		return nil, fmt.Errorf("could not confirm product update: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Product with ID %d not found for update", id)
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}

	r.log.Infof("Partial update successful for product ID %d", id)
	return r.GetProductByID(id)
}

func (r *postgresProductRepository) DeleteProduct(id int) error {
	result, err := r.db.Exec(`DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			// Historical order items keep referencing the product; deletion is
			// rejected to preserve report history.
			r.log.Warnf("Rejected deletion of product %d: order items reference it", id)
			return &domain.ValidationError{
				Reason: fmt.Sprintf("product %d cannot be deleted: order items reference it", id),
			}
		}
		r.log.Errorf("Failed to delete product ID %d: %v", id, err)
		return fmt.Errorf("could not delete product: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting product ID %d: %v", id, err)
		return fmt.Errorf("could not confirm product deletion: %w", err)
	}
	if rowsAffected == 0 {
		r.log.Warnf("Attempted to delete non-existent product ID %d", id)
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	r.log.Infof("Product deleted successfully with ID: %d", id)
	return nil
}

func (r *postgresProductRepository) ListProducts(limit, offset int) ([]domain.Product, error) {
	limit, offset = clampPage(limit, offset)

	query := `
        SELECT id, name, quantity, price, category_id, created_at, updated_at
        FROM products
        ORDER BY id ASC
        LIMIT $1 OFFSET $2`
	rows, err := r.db.Query(query, limit, offset)
	if err != nil {
		r.log.Errorf("Failed to list products with limit %d, offset %d: %v", limit, offset, err)
		return nil, fmt.Errorf("could not list products: %w", err)
	}
	defer rows.Close()

	return r.scanProducts(rows)
}

func (r *postgresProductRepository) ListProductsByCategory(categoryID, limit, offset int) ([]domain.Product, error) {
	limit, offset = clampPage(limit, offset)

	query := `
        SELECT id, name, quantity, price, category_id, created_at, updated_at
        FROM products
        WHERE category_id = $1
        ORDER BY id ASC
        LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(query, categoryID, limit, offset)
	if err != nil {
		r.log.Errorf("Failed to list products for category %d: %v", categoryID, err)
		return nil, fmt.Errorf("could not list products by category: %w", err)
	}
	defer rows.Close()

	return r.scanProducts(rows)
}

func (r *postgresProductRepository) scanProducts(rows *sql.Rows) ([]domain.Product, error) {
	products := []domain.Product{}
	for rows.Next() {
		var product domain.Product
		var categoryID sql.NullInt64
		if err := rows.Scan(
			&product.ID,
			&product.Name,
			&product.Quantity,
			&product.Price,
			&categoryID,
			&product.CreatedAt,
			&product.UpdatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan product row: %v", err)
			return nil, fmt.Errorf("error scanning product data: %w", err)
		}
		if categoryID.Valid {
			cid := int(categoryID.Int64)
			product.CategoryID = &cid
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		r.log.Errorf("Error during products list iteration: %v", err)
		return nil, fmt.Errorf("error iterating products: %w", err)
	}
	return products, nil
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
