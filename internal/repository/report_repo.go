package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type postgresReportRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresReportRepository(db *sql.DB, logger *logrus.Logger) domain.ReportRepository {
	return &postgresReportRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresReportRepository) ProductSalesBetween(from, to time.Time) ([]domain.SalesRow, error) {
	query := `
        SELECT p.id, p.name, c.path, SUM(oi.quantity) AS total_quantity
        FROM order_items oi
        JOIN orders o ON o.id = oi.order_id
        JOIN products p ON p.id = oi.product_id
        LEFT JOIN categories c ON c.id = p.category_id
        WHERE o.order_date >= $1 AND o.order_date < $2
        GROUP BY p.id, p.name, c.path`
	rows, err := r.db.Query(query, from, to)
	if err != nil {
		r.log.Errorf("Failed to aggregate product sales for [%s, %s): %v", from, to, err)
		return nil, fmt.Errorf("could not aggregate product sales: %w", err)
	}
	defer rows.Close()

	sales := []domain.SalesRow{}
	for rows.Next() {
		var row domain.SalesRow
		var path sql.NullString
		if err := rows.Scan(&row.ProductID, &row.ProductName, &path, &row.TotalQuantity); err != nil {
			r.log.Errorf("Failed to scan sales row: %v", err)
			return nil, fmt.Errorf("error scanning sales data: %w", err)
		}
		if path.Valid {
			p := path.String
			row.CategoryPath = &p
		}
		sales = append(sales, row)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during sales rows iteration: %v", err)
		return nil, fmt.Errorf("error iterating sales data: %w", err)
	}

	r.log.Infof("Aggregated sales for %d products in [%s, %s)", len(sales), from.Format(time.RFC3339), to.Format(time.RFC3339))
	return sales, nil
}
