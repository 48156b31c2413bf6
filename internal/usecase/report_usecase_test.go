package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

type reportFixture struct {
	uc         ReportUseCase
	repo       *fakeReportRepo
	categories *fakeCategoryRepo
	cache      *fakeReportCache
}

func newReportFixture(rows []domain.SalesRow) *reportFixture {
	repo := &fakeReportRepo{rows: rows}
	categories := newFakeCategoryRepo()
	cache := newFakeReportCache()
	return &reportFixture{
		uc:         NewReportUseCase(repo, categories, cache, testLogger()),
		repo:       repo,
		categories: categories,
		cache:      cache,
	}
}

func (f *reportFixture) seedRoot(t *testing.T, name string) *domain.Category {
	t.Helper()
	root, err := f.categories.CreateCategory(&domain.Category{Name: name})
	require.NoError(t, err)
	return root
}

func reportWindow() (time.Time, time.Time) {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return from, from.AddDate(0, 1, 0)
}

func TestTopProductsRanksByQuantity(t *testing.T) {
	f := newReportFixture(nil)
	electronics := f.seedRoot(t, "Electronics")
	fridges, err := f.categories.CreateCategory(&domain.Category{Name: "Fridges", ParentID: &electronics.ID})
	require.NoError(t, err)

	f.repo.rows = []domain.SalesRow{
		{ProductID: 1, ProductName: "Fridge X", CategoryPath: strPtr(fridges.Path), TotalQuantity: 7},
		{ProductID: 2, ProductName: "Lamp", CategoryPath: nil, TotalQuantity: 12},
		{ProductID: 3, ProductName: "TV", CategoryPath: strPtr(electronics.Path), TotalQuantity: 3},
	}

	from, to := reportWindow()
	report, err := f.uc.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)
	require.Len(t, report, 3)

	assert.Equal(t, "Lamp", report[0].ProductName)
	assert.Equal(t, 12, report[0].TotalQuantity)
	assert.Equal(t, domain.UncategorizedName, report[0].RootCategoryName)

	// Non-root categories resolve to their root ancestor's name.
	assert.Equal(t, "Fridge X", report[1].ProductName)
	assert.Equal(t, "Electronics", report[1].RootCategoryName)

	assert.Equal(t, "TV", report[2].ProductName)
	assert.Equal(t, "Electronics", report[2].RootCategoryName)
}

func TestTopProductsTieBreaksOnProductID(t *testing.T) {
	f := newReportFixture([]domain.SalesRow{
		{ProductID: 9, ProductName: "B", TotalQuantity: 5},
		{ProductID: 2, ProductName: "A", TotalQuantity: 5},
		{ProductID: 4, ProductName: "C", TotalQuantity: 5},
	})

	from, to := reportWindow()
	report, err := f.uc.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)
	require.Len(t, report, 3)
	assert.Equal(t, []int{2, 4, 9}, []int{report[0].ProductID, report[1].ProductID, report[2].ProductID})
}

func TestTopProductsTruncatesToN(t *testing.T) {
	rows := make([]domain.SalesRow, 0, 8)
	for i := 1; i <= 8; i++ {
		rows = append(rows, domain.SalesRow{ProductID: i, ProductName: "P", TotalQuantity: i})
	}
	f := newReportFixture(rows)

	from, to := reportWindow()
	report, err := f.uc.TopProducts(context.Background(), from, to, 3)
	require.NoError(t, err)
	require.Len(t, report, 3)
	assert.Equal(t, 8, report[0].TotalQuantity)
	assert.Equal(t, 6, report[2].TotalQuantity)
}

func TestTopProductsDefaultN(t *testing.T) {
	rows := make([]domain.SalesRow, 0, 10)
	for i := 1; i <= 10; i++ {
		rows = append(rows, domain.SalesRow{ProductID: i, ProductName: "P", TotalQuantity: i})
	}
	f := newReportFixture(rows)

	from, to := reportWindow()
	report, err := f.uc.TopProducts(context.Background(), from, to, 0)
	require.NoError(t, err)
	assert.Len(t, report, DefaultTopN)
}

func TestTopProductsDefaultWindowIsRollingMonth(t *testing.T) {
	f := newReportFixture(nil)

	before := time.Now()
	_, err := f.uc.TopProducts(context.Background(), time.Time{}, time.Time{}, 5)
	require.NoError(t, err)
	after := time.Now()

	assert.False(t, f.repo.lastTo.Before(before))
	assert.False(t, f.repo.lastTo.After(after))
	assert.Equal(t, f.repo.lastTo.AddDate(0, -1, 0), f.repo.lastFrom)
}

func TestTopProductsRejectsInvertedWindow(t *testing.T) {
	f := newReportFixture(nil)

	from, to := reportWindow()
	_, err := f.uc.TopProducts(context.Background(), to, from, 5)
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))

	_, err = f.uc.TopProducts(context.Background(), from, from, 5)
	require.True(t, errors.As(err, &validation))
}

func TestTopProductsEmptySales(t *testing.T) {
	f := newReportFixture(nil)

	from, to := reportWindow()
	report, err := f.uc.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestTopProductsServesFromCache(t *testing.T) {
	f := newReportFixture([]domain.SalesRow{
		{ProductID: 1, ProductName: "Lamp", TotalQuantity: 2},
	})

	from, to := reportWindow()
	first, err := f.uc.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)
	second, err := f.uc.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, f.repo.calls)

	// Invalidation forces a fresh aggregation.
	f.cache.InvalidateAll(context.Background())
	_, err = f.uc.TopProducts(context.Background(), from, to, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, f.repo.calls)
}

func TestTopProductsCorruptPath(t *testing.T) {
	f := newReportFixture([]domain.SalesRow{
		{ProductID: 1, ProductName: "Lamp", CategoryPath: strPtr("not.a.path"), TotalQuantity: 2},
	})

	from, to := reportWindow()
	_, err := f.uc.TopProducts(context.Background(), from, to, 5)
	var integrity *domain.IntegrityViolationError
	require.True(t, errors.As(err, &integrity))
}

func TestTopProductsMissingRootCategory(t *testing.T) {
	f := newReportFixture([]domain.SalesRow{
		{ProductID: 1, ProductName: "Lamp", CategoryPath: strPtr("42.43"), TotalQuantity: 2},
	})

	from, to := reportWindow()
	_, err := f.uc.TopProducts(context.Background(), from, to, 5)
	var integrity *domain.IntegrityViolationError
	require.True(t, errors.As(err, &integrity))
}
