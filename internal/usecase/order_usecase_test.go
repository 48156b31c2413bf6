package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type orderFixture struct {
	uc       OrderUseCase
	store    *memOrderStore
	products *fakeProductRepo
	cache    *fakeReportCache
	orderID  int
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	products := newFakeProductRepo()
	clients := newFakeClientRepo()
	store := newMemOrderStore(products, clients)
	cache := newFakeReportCache()
	uc := NewOrderUseCase(store, store, clients, cache, testLogger())

	client, err := clients.CreateClient(&domain.Client{Name: "Test client", Address: "Test street 1"})
	require.NoError(t, err)
	order, err := uc.CreateOrder(client.ID)
	require.NoError(t, err)

	return &orderFixture{uc: uc, store: store, products: products, cache: cache, orderID: order.ID}
}

func (f *orderFixture) addProduct(t *testing.T, name string, stock int, price float64) int {
	t.Helper()
	product, err := f.products.CreateProduct(&domain.Product{Name: name, Quantity: stock, Price: price})
	require.NoError(t, err)
	return product.ID
}

func TestAddItemsRecomputesTotal(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)
	productB := f.addProduct(t, "B", 10, 5)

	_, order, err := f.uc.AddItem(context.Background(), f.orderID, productA, 2)
	require.NoError(t, err)
	assert.Equal(t, 20.0, order.TotalAmount)

	_, order, err = f.uc.AddItem(context.Background(), f.orderID, productB, 1)
	require.NoError(t, err)
	assert.Equal(t, 25.0, order.TotalAmount)

	// Removing the A line leaves only B.
	order, err = f.uc.RemoveItem(context.Background(), f.orderID, productA)
	require.NoError(t, err)
	assert.Equal(t, 5.0, order.TotalAmount)

	// Removing the last line drops the total to zero, not an error.
	order, err = f.uc.RemoveItem(context.Background(), f.orderID, productB)
	require.NoError(t, err)
	assert.Equal(t, 0.0, order.TotalAmount)
	assert.Empty(t, order.Items)
}

func TestAddItemDuplicateProductGrowsExistingLine(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 2)
	require.NoError(t, err)
	item, order, err := f.uc.AddItem(context.Background(), f.orderID, productA, 3)
	require.NoError(t, err)

	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, 50.0, order.TotalAmount)
}

func TestAddItemPriceSnapshotIgnoresLaterCatalogChanges(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	item, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 2)
	require.NoError(t, err)
	assert.Equal(t, 10.0, item.Price)

	// Catalog price changes after the sale must not affect the line.
	_, err = f.products.UpdateProduct(productA, map[string]interface{}{"price": 99.0})
	require.NoError(t, err)

	order, err := f.uc.GetOrderByID(f.orderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 10.0, order.Items[0].Price)
	assert.Equal(t, 20.0, order.TotalAmount)
}

func TestAddItemInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 3, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 4)
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 4, stockErr.Requested)
	assert.Equal(t, 3, stockErr.Available)

	// No partial effect: stock untouched, order stays empty with zero total.
	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 3, product.Quantity)

	order, err := f.uc.GetOrderByID(f.orderID)
	require.NoError(t, err)
	assert.Empty(t, order.Items)
	assert.Equal(t, 0.0, order.TotalAmount)
}

func TestAddItemAdjustsStock(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 3)
	require.NoError(t, err)

	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 7, product.Quantity)
}

func TestUpdateItemQuantityAppliesDelta(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 3)
	require.NoError(t, err)

	// 3 -> 5 takes two more units from stock.
	item, order, err := f.uc.UpdateItemQuantity(context.Background(), f.orderID, productA, 5)
	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.Equal(t, 50.0, order.TotalAmount)

	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 5, product.Quantity)

	// 5 -> 1 returns four units.
	_, order, err = f.uc.UpdateItemQuantity(context.Background(), f.orderID, productA, 1)
	require.NoError(t, err)
	assert.Equal(t, 10.0, order.TotalAmount)

	product, err = f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 9, product.Quantity)
}

func TestUpdateItemQuantityInsufficientStock(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 5, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 3)
	require.NoError(t, err)

	// Stock is down to 2; growing the line to 6 needs 3 more.
	_, _, err = f.uc.UpdateItemQuantity(context.Background(), f.orderID, productA, 6)
	var stockErr *domain.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))

	// Rejected atomically: line and stock unchanged.
	order, err := f.uc.GetOrderByID(f.orderID)
	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 3, order.Items[0].Quantity)

	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 2, product.Quantity)
}

func TestRemoveItemRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 4)
	require.NoError(t, err)

	_, err = f.uc.RemoveItem(context.Background(), f.orderID, productA)
	require.NoError(t, err)

	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Quantity)
}

func TestItemMutationsInvalidateReportCache(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 2)
	require.NoError(t, err)
	_, _, err = f.uc.UpdateItemQuantity(context.Background(), f.orderID, productA, 3)
	require.NoError(t, err)
	_, err = f.uc.RemoveItem(context.Background(), f.orderID, productA)
	require.NoError(t, err)

	assert.Equal(t, 3, f.cache.invalidations)
}

func TestAddItemValidation(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	var validation *domain.ValidationError

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 0)
	require.True(t, errors.As(err, &validation))

	_, _, err = f.uc.AddItem(context.Background(), f.orderID, productA, -1)
	require.True(t, errors.As(err, &validation))

	_, _, err = f.uc.AddItem(context.Background(), 0, productA, 1)
	require.True(t, errors.As(err, &validation))
}

func TestAddItemUnknownOrderAndProduct(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	var notFound *domain.NotFoundError

	_, _, err := f.uc.AddItem(context.Background(), 999, productA, 1)
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "order", notFound.Entity)

	_, _, err = f.uc.AddItem(context.Background(), f.orderID, 999, 1)
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "product", notFound.Entity)
}

func TestCreateOrderUnknownClient(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.uc.CreateOrder(999)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "client", notFound.Entity)
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	f := newOrderFixture(t)

	order, err := f.uc.UpdateOrderStatus(f.orderID, domain.StatusConfirmed)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, order.Status)

	_, err = f.uc.UpdateOrderStatus(f.orderID, domain.OrderStatus("completed"))
	var validation *domain.ValidationError
	require.True(t, errors.As(err, &validation))

	_, err = f.uc.UpdateOrderStatus(f.orderID, domain.StatusCancelled)
	require.NoError(t, err)

	// A cancelled order is terminal.
	_, err = f.uc.UpdateOrderStatus(f.orderID, domain.StatusShipped)
	require.True(t, errors.As(err, &validation))
}

func TestCancelOrderRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 4)
	require.NoError(t, err)

	_, err = f.uc.UpdateOrderStatus(f.orderID, domain.StatusCancelled)
	require.NoError(t, err)

	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Quantity)

	// Deleting the cancelled order must not restore the stock a second time.
	require.NoError(t, f.uc.DeleteOrder(context.Background(), f.orderID))
	product, err = f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Quantity)
}

func TestDeleteOrderRestoresStock(t *testing.T) {
	f := newOrderFixture(t)
	productA := f.addProduct(t, "A", 10, 10)

	_, _, err := f.uc.AddItem(context.Background(), f.orderID, productA, 4)
	require.NoError(t, err)

	require.NoError(t, f.uc.DeleteOrder(context.Background(), f.orderID))

	product, err := f.products.GetProductByID(productA)
	require.NoError(t, err)
	assert.Equal(t, 10, product.Quantity)

	_, err = f.uc.GetOrderByID(f.orderID)
	var notFound *domain.NotFoundError
	require.True(t, errors.As(err, &notFound))
}
