package domain

import (
	"context"
	"time"
)

// UncategorizedName is reported for products with no category.
const UncategorizedName = "Uncategorized"

// SalesRow is a raw per-product aggregation row for a report window.
// CategoryPath is nil for uncategorized products.
type SalesRow struct {
	ProductID     int
	ProductName   string
	CategoryPath  *string
	TotalQuantity int
}

// ProductSales is one entry of the top-N sales report.
type ProductSales struct {
	ProductID        int    `json:"product_id"`
	ProductName      string `json:"product_name"`
	RootCategoryName string `json:"root_category_name"`
	TotalQuantity    int    `json:"total_quantity"`
}

type ReportRepository interface {
	// ProductSalesBetween sums sold quantities per product over orders whose
	// order_date falls in [from, to).
	ProductSalesBetween(from, to time.Time) ([]SalesRow, error)
}

// ReportCache holds the derived top-N view. Implementations must treat it as
// a cache recomputed on write: InvalidateAll is called after every line-item
// mutation.
type ReportCache interface {
	Get(ctx context.Context, n int, from, to time.Time) ([]ProductSales, bool)
	Set(ctx context.Context, n int, from, to time.Time, rows []ProductSales)
	InvalidateAll(ctx context.Context)
}
