package usecase

import (
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type ProductUseCase interface {
	CreateProduct(product *domain.Product) (*domain.Product, error)
	GetProductByID(id int) (*domain.Product, error)
	// GetProductDetails also resolves the category name, empty for
	// uncategorized products.
	GetProductDetails(id int) (*domain.Product, string, error)
	UpdateProduct(id int, updates map[string]interface{}) (*domain.Product, error)
	DeleteProduct(id int) error
	ListProducts(limit, offset int) ([]domain.Product, error)
	ListProductsByCategory(categoryID, limit, offset int) ([]domain.Product, error)
}

type productUseCase struct {
	productRepo  domain.ProductRepository
	categoryRepo domain.CategoryRepository
	log          *logrus.Logger
}

func NewProductUseCase(pRepo domain.ProductRepository, cRepo domain.CategoryRepository, logger *logrus.Logger) ProductUseCase {
	return &productUseCase{
		productRepo:  pRepo,
		categoryRepo: cRepo,
		log:          logger,
	}
}

func (uc *productUseCase) CreateProduct(product *domain.Product) (*domain.Product, error) {
	if product.Name == "" {
		uc.log.Warn("Use Case: Attempted to create product with empty name")
		return nil, &domain.ValidationError{Reason: "product name cannot be empty"}
	}
	if product.Price < 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with negative price: %f", product.Name, product.Price)
		return nil, &domain.ValidationError{Reason: "product price cannot be negative"}
	}
	if product.Quantity < 0 {
		uc.log.Warnf("Use Case: Attempted to create product '%s' with negative stock: %d", product.Name, product.Quantity)
		return nil, &domain.ValidationError{Reason: "product stock cannot be negative"}
	}
	if product.CategoryID != nil {
		if _, err := uc.categoryRepo.GetCategoryByID(*product.CategoryID); err != nil {
			uc.log.Warnf("Use Case: Category ID %d not found during product creation: %v", *product.CategoryID, err)
			return nil, err
		}
	}

	uc.log.Infof("Use Case: Attempting to create product '%s'", product.Name)
	createdProduct, err := uc.productRepo.CreateProduct(product)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create product '%s': %v", product.Name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product '%s' created successfully with ID %d", createdProduct.Name, createdProduct.ID)
	return createdProduct, nil
}

func (uc *productUseCase) GetProductByID(id int) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get product with invalid ID: %d", id)
		return nil, &domain.ValidationError{Reason: "invalid product ID"}
	}
	return uc.productRepo.GetProductByID(id)
}

func (uc *productUseCase) GetProductDetails(id int) (*domain.Product, string, error) {
	product, err := uc.GetProductByID(id)
	if err != nil {
		return nil, "", err
	}
	if product.CategoryID == nil {
		return product, "", nil
	}

	category, err := uc.categoryRepo.GetCategoryByID(*product.CategoryID)
	if err != nil {
		uc.log.Errorf("Use Case: Category %d of product %d is missing: %v", *product.CategoryID, id, err)
		return nil, "", &domain.IntegrityViolationError{
			Reason: fmt.Sprintf("category %d of product %d is missing", *product.CategoryID, id),
		}
	}
	return product, category.Name, nil
}

func (uc *productUseCase) UpdateProduct(id int, updates map[string]interface{}) (*domain.Product, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid product ID: %d", id)
		return nil, &domain.ValidationError{Reason: "invalid product ID for update"}
	}
	if len(updates) == 0 {
		return uc.productRepo.GetProductByID(id)
	}

	validUpdates := make(map[string]interface{})
	for key, value := range updates {
		switch key {
		case "name":
			name, ok := value.(string)
			if !ok || name == "" {
				uc.log.Warnf("Use Case: Invalid or empty 'name' provided for update ID %d", id)
				return nil, &domain.ValidationError{Reason: "product name cannot be empty if provided for update"}
			}
			validUpdates[key] = name
		case "price":
			price, ok := value.(float64)
			if !ok || price < 0 {
				uc.log.Warnf("Use Case: Invalid or negative 'price' provided for update ID %d", id)
				return nil, &domain.ValidationError{Reason: "product price cannot be negative if provided for update"}
			}
			validUpdates[key] = price
		case "quantity":
			quantity, ok := asInt(value)
			if !ok || quantity < 0 {
				uc.log.Warnf("Use Case: Invalid or negative 'quantity' provided for update ID %d", id)
				return nil, &domain.ValidationError{Reason: "product stock cannot be negative if provided for update"}
			}
			validUpdates[key] = quantity
		case "category_id":
			catID, ok := asInt(value)
			if value == nil {
				catID, ok = 0, true
			}
			if !ok || catID < 0 {
				uc.log.Warnf("Use Case: Invalid 'category_id' (%v) provided for update ID %d", value, id)
				return nil, &domain.ValidationError{Reason: "category_id must be positive or 0/null"}
			}
			if catID > 0 {
				if _, err := uc.categoryRepo.GetCategoryByID(catID); err != nil {
					uc.log.Warnf("Use Case: Category ID %d not found during product update for ID %d: %v", catID, id, err)
					return nil, err
				}
			}
			validUpdates[key] = catID
		default:
			uc.log.Warnf("Use Case: Ignoring unknown field '%s' for product update ID %d", key, id)
		}
	}

	if len(validUpdates) == 0 {
		return uc.productRepo.GetProductByID(id)
	}

	uc.log.Infof("Use Case: Attempting partial update for product ID %d with fields: %v", id, validUpdates)
	updatedProduct, err := uc.productRepo.UpdateProduct(id, validUpdates)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed partial update for product ID %d: %v", id, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Product updated successfully for ID %d", updatedProduct.ID)
	return updatedProduct, nil
}

func (uc *productUseCase) DeleteProduct(id int) error {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted delete with invalid product ID: %d", id)
		return &domain.ValidationError{Reason: "invalid product ID for delete"}
	}
	uc.log.Infof("Use Case: Attempting to delete product ID %d", id)
	err := uc.productRepo.DeleteProduct(id)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete product ID %d: %v", id, err)
		return err
	}
	return nil
}

func (uc *productUseCase) ListProducts(limit, offset int) ([]domain.Product, error) {
	products, err := uc.productRepo.ListProducts(limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products: %v", err)
		return nil, fmt.Errorf("could not retrieve products: %w", err)
	}
	return products, nil
}

func (uc *productUseCase) ListProductsByCategory(categoryID, limit, offset int) ([]domain.Product, error) {
	if categoryID <= 0 {
		uc.log.Warnf("Use Case: Attempted list by category with invalid category ID: %d", categoryID)
		return nil, &domain.ValidationError{Reason: "invalid category ID"}
	}
	if _, err := uc.categoryRepo.GetCategoryByID(categoryID); err != nil {
		uc.log.Warnf("Use Case: Category ID %d not found: %v", categoryID, err)
		return nil, err
	}
	products, err := uc.productRepo.ListProductsByCategory(categoryID, limit, offset)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list products for category %d: %v", categoryID, err)
		return nil, fmt.Errorf("could not retrieve products for category %d: %w", categoryID, err)
	}
	return products, nil
}

// asInt accepts both JSON-decoded float64 numbers and native ints, rejecting
// fractional values.
func asInt(value interface{}) (int, bool) {
	switch v := value.(type) {
	case int:
		return v, true
	case float64:
		n := int(v)
		if float64(n) != v {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
