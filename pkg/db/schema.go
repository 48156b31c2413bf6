package db

import (
	"database/sql"
	"fmt"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id         SERIAL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		parent_id  INTEGER REFERENCES categories(id) ON DELETE CASCADE,
		level      INTEGER NOT NULL DEFAULT 0,
		path       VARCHAR(1000),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id          SERIAL PRIMARY KEY,
		name        VARCHAR(255) NOT NULL,
		quantity    INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		price       NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		category_id INTEGER REFERENCES categories(id) ON DELETE SET NULL,
		created_at  TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at  TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id         SERIAL PRIMARY KEY,
		name       VARCHAR(255) NOT NULL,
		address    VARCHAR(500),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id           SERIAL PRIMARY KEY,
		client_id    INTEGER NOT NULL REFERENCES clients(id),
		order_date   TIMESTAMP NOT NULL DEFAULT NOW(),
		status       VARCHAR(50) NOT NULL DEFAULT 'pending',
		total_amount NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (total_amount >= 0),
		created_at   TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMP NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id         SERIAL PRIMARY KEY,
		order_id   INTEGER NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		product_id INTEGER NOT NULL REFERENCES products(id),
		quantity   INTEGER NOT NULL CHECK (quantity > 0),
		price      NUMERIC(10,2) NOT NULL CHECK (price >= 0),
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		CONSTRAINT unique_order_product UNIQUE (order_id, product_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_categories_path ON categories (path)`,
	`CREATE INDEX IF NOT EXISTS idx_products_category ON products (category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_date ON orders (order_date)`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items (order_id)`,
}

// EnsureSchema creates the five relations and their indexes if they do not
// exist yet.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to apply schema statement: %w", err)
		}
	}
	return nil
}
