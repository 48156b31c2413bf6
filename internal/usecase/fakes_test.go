package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// In-memory repositories mirroring the Postgres repositories' semantics
// through the same domain helpers (ChildPath, ApplyStockDelta, OrderTotal).

type fakeCategoryRepo struct {
	categories map[int]*domain.Category
	products   *fakeProductRepo
	nextID     int
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{categories: map[int]*domain.Category{}}
}

func (r *fakeCategoryRepo) CreateCategory(category *domain.Category) (*domain.Category, error) {
	parentPath := ""
	level := 0
	if category.ParentID != nil {
		parent, ok := r.categories[*category.ParentID]
		if !ok {
			return nil, &domain.NotFoundError{Entity: "category", ID: *category.ParentID}
		}
		parentPath = parent.Path
		level = parent.Level + 1
	}
	r.nextID++
	category.ID = r.nextID
	category.Level = level
	category.Path = domain.ChildPath(parentPath, category.ID)
	category.CreatedAt = time.Now()
	category.UpdatedAt = category.CreatedAt
	stored := *category
	r.categories[category.ID] = &stored
	return category, nil
}

func (r *fakeCategoryRepo) GetCategoryByID(id int) (*domain.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "category", ID: id}
	}
	copied := *category
	return &copied, nil
}

func (r *fakeCategoryRepo) UpdateCategory(category *domain.Category) (*domain.Category, error) {
	stored, ok := r.categories[category.ID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "category", ID: category.ID}
	}
	stored.Name = category.Name
	stored.UpdatedAt = time.Now()
	copied := *stored
	return &copied, nil
}

func (r *fakeCategoryRepo) DeleteCategory(id int, policy domain.CategoryDeletePolicy) error {
	if _, ok := r.categories[id]; !ok {
		return &domain.NotFoundError{Entity: "category", ID: id}
	}

	subtree := map[int]bool{}
	for cid, category := range r.categories {
		if domain.PathContains(category.Path, id) {
			subtree[cid] = true
		}
	}

	if r.products != nil {
		for _, product := range r.products.products {
			if product.CategoryID == nil || !subtree[*product.CategoryID] {
				continue
			}
			if policy == domain.RestrictDelete {
				return &domain.ValidationError{
					Reason: fmt.Sprintf("category %d cannot be deleted: products reference it or its subcategories", id),
				}
			}
			product.CategoryID = nil
		}
	}

	for cid := range subtree {
		delete(r.categories, cid)
	}
	return nil
}

func (r *fakeCategoryRepo) ListCategories() ([]domain.Category, error) {
	categories := []domain.Category{}
	for _, category := range r.categories {
		categories = append(categories, *category)
	}
	return categories, nil
}

type fakeProductRepo struct {
	products map[int]*domain.Product
	nextID   int
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[int]*domain.Product{}}
}

func (r *fakeProductRepo) CreateProduct(product *domain.Product) (*domain.Product, error) {
	r.nextID++
	product.ID = r.nextID
	product.CreatedAt = time.Now()
	product.UpdatedAt = product.CreatedAt
	stored := *product
	r.products[product.ID] = &stored
	return product, nil
}

func (r *fakeProductRepo) GetProductByID(id int) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) UpdateProduct(id int, updates map[string]interface{}) (*domain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: id}
	}
	for key, value := range updates {
		switch key {
		case "name":
			product.Name = value.(string)
		case "price":
			product.Price = value.(float64)
		case "quantity":
			product.Quantity = value.(int)
		case "category_id":
			catID := value.(int)
			if catID == 0 {
				product.CategoryID = nil
			} else {
				product.CategoryID = &catID
			}
		}
	}
	product.UpdatedAt = time.Now()
	copied := *product
	return &copied, nil
}

func (r *fakeProductRepo) DeleteProduct(id int) error {
	if _, ok := r.products[id]; !ok {
		return &domain.NotFoundError{Entity: "product", ID: id}
	}
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) ListProducts(limit, offset int) ([]domain.Product, error) {
	products := []domain.Product{}
	for _, product := range r.products {
		products = append(products, *product)
	}
	return products, nil
}

func (r *fakeProductRepo) ListProductsByCategory(categoryID, limit, offset int) ([]domain.Product, error) {
	products := []domain.Product{}
	for _, product := range r.products {
		if product.CategoryID != nil && *product.CategoryID == categoryID {
			products = append(products, *product)
		}
	}
	return products, nil
}

type fakeClientRepo struct {
	clients map[int]*domain.Client
	nextID  int
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: map[int]*domain.Client{}}
}

func (r *fakeClientRepo) CreateClient(client *domain.Client) (*domain.Client, error) {
	r.nextID++
	client.ID = r.nextID
	stored := *client
	r.clients[client.ID] = &stored
	return client, nil
}

func (r *fakeClientRepo) GetClientByID(id int) (*domain.Client, error) {
	client, ok := r.clients[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "client", ID: id}
	}
	copied := *client
	return &copied, nil
}

func (r *fakeClientRepo) ListClients() ([]domain.Client, error) {
	clients := []domain.Client{}
	for _, client := range r.clients {
		clients = append(clients, *client)
	}
	return clients, nil
}

// memOrderStore implements both OrderRepository and OrderItemRepository over
// shared state, applying the same stock and total invariants as the Postgres
// implementation.
type memOrderStore struct {
	products *fakeProductRepo
	clients  *fakeClientRepo
	orders   map[int]*domain.Order
	nextID   int
	nextItem int
}

func newMemOrderStore(products *fakeProductRepo, clients *fakeClientRepo) *memOrderStore {
	return &memOrderStore{
		products: products,
		clients:  clients,
		orders:   map[int]*domain.Order{},
	}
}

func (s *memOrderStore) CreateOrder(order *domain.Order) (*domain.Order, error) {
	if _, ok := s.clients.clients[order.ClientID]; !ok {
		return nil, &domain.NotFoundError{Entity: "client", ID: order.ClientID}
	}
	s.nextID++
	order.ID = s.nextID
	order.OrderDate = time.Now()
	order.Items = []domain.OrderItem{}
	stored := *order
	stored.Items = []domain.OrderItem{}
	s.orders[order.ID] = &stored
	return order, nil
}

func (s *memOrderStore) GetOrderByID(id int) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	copied := *order
	copied.Items = append([]domain.OrderItem{}, order.Items...)
	return &copied, nil
}

func (s *memOrderStore) UpdateOrderStatus(id int, status domain.OrderStatus) (*domain.Order, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "order", ID: id}
	}
	if status == domain.StatusCancelled && order.Status != domain.StatusCancelled {
		for _, item := range order.Items {
			s.products.products[item.ProductID].Quantity += item.Quantity
		}
	}
	order.Status = status
	return s.GetOrderByID(id)
}

func (s *memOrderStore) DeleteOrder(id int) error {
	order, ok := s.orders[id]
	if !ok {
		return &domain.NotFoundError{Entity: "order", ID: id}
	}
	if order.Status != domain.StatusCancelled {
		for _, item := range order.Items {
			s.products.products[item.ProductID].Quantity += item.Quantity
		}
	}
	delete(s.orders, id)
	return nil
}

func (s *memOrderStore) ListOrdersByClientID(clientID, limit, offset int) ([]domain.Order, error) {
	orders := []domain.Order{}
	for _, order := range s.orders {
		if order.ClientID == clientID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (s *memOrderStore) AddItem(orderID, productID, quantity int) (*domain.OrderItem, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	product, ok := s.products.products[productID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: productID}
	}

	newStock, err := domain.ApplyStockDelta(productID, product.Quantity, -quantity, quantity)
	if err != nil {
		return nil, err
	}

	var item *domain.OrderItem
	for i := range order.Items {
		if order.Items[i].ProductID == productID {
			order.Items[i].Quantity += quantity
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		s.nextItem++
		order.Items = append(order.Items, domain.OrderItem{
			ID:        s.nextItem,
			OrderID:   orderID,
			ProductID: productID,
			Quantity:  quantity,
			Price:     product.Price,
		})
		item = &order.Items[len(order.Items)-1]
	}

	product.Quantity = newStock
	order.TotalAmount = domain.OrderTotal(order.Items)
	copied := *item
	return &copied, nil
}

func (s *memOrderStore) UpdateItemQuantity(orderID, productID, quantity int) (*domain.OrderItem, error) {
	order, ok := s.orders[orderID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	product, ok := s.products.products[productID]
	if !ok {
		return nil, &domain.NotFoundError{Entity: "product", ID: productID}
	}

	for i := range order.Items {
		if order.Items[i].ProductID != productID {
			continue
		}
		newStock, err := domain.ApplyStockDelta(productID, product.Quantity, order.Items[i].Quantity-quantity, quantity-order.Items[i].Quantity)
		if err != nil {
			return nil, err
		}
		order.Items[i].Quantity = quantity
		product.Quantity = newStock
		order.TotalAmount = domain.OrderTotal(order.Items)
		copied := order.Items[i]
		return &copied, nil
	}
	return nil, &domain.NotFoundError{Entity: "order item", ID: productID}
}

func (s *memOrderStore) RemoveItem(orderID, productID int) error {
	order, ok := s.orders[orderID]
	if !ok {
		return &domain.NotFoundError{Entity: "order", ID: orderID}
	}
	product, ok := s.products.products[productID]
	if !ok {
		return nil
	}

	for i := range order.Items {
		if order.Items[i].ProductID != productID {
			continue
		}
		product.Quantity += order.Items[i].Quantity
		order.Items = append(order.Items[:i], order.Items[i+1:]...)
		order.TotalAmount = domain.OrderTotal(order.Items)
		return nil
	}
	return &domain.NotFoundError{Entity: "order item", ID: productID}
}

type fakeReportRepo struct {
	rows     []domain.SalesRow
	err      error
	calls    int
	lastFrom time.Time
	lastTo   time.Time
}

func (r *fakeReportRepo) ProductSalesBetween(from, to time.Time) ([]domain.SalesRow, error) {
	r.calls++
	r.lastFrom = from
	r.lastTo = to
	if r.err != nil {
		return nil, r.err
	}
	return r.rows, nil
}

type fakeReportCache struct {
	entries       map[string][]domain.ProductSales
	invalidations int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{entries: map[string][]domain.ProductSales{}}
}

func (c *fakeReportCache) cacheKey(n int, from, to time.Time) string {
	return fmt.Sprintf("%d:%d:%d", n, from.Unix(), to.Unix())
}

func (c *fakeReportCache) Get(_ context.Context, n int, from, to time.Time) ([]domain.ProductSales, bool) {
	rows, ok := c.entries[c.cacheKey(n, from, to)]
	return rows, ok
}

func (c *fakeReportCache) Set(_ context.Context, n int, from, to time.Time, rows []domain.ProductSales) {
	c.entries[c.cacheKey(n, from, to)] = rows
}

func (c *fakeReportCache) InvalidateAll(_ context.Context) {
	c.invalidations++
	c.entries = map[string][]domain.ProductSales{}
}
