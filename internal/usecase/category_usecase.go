package usecase

import (
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/sirupsen/logrus"
)

type CategoryUseCase interface {
	CreateCategory(name string, parentID *int) (*domain.Category, error)
	GetCategoryByID(id int) (*domain.Category, error)
	UpdateCategory(id int, name string) (*domain.Category, error)
	DeleteCategory(id int) error
	ListCategories() ([]domain.Category, error)
	ResolveRootAncestor(categoryID int) (*domain.Category, error)
}

type categoryUseCase struct {
	categoryRepo domain.CategoryRepository
	deletePolicy domain.CategoryDeletePolicy
	log          *logrus.Logger
}

func NewCategoryUseCase(repo domain.CategoryRepository, deletePolicy domain.CategoryDeletePolicy, logger *logrus.Logger) CategoryUseCase {
	return &categoryUseCase{
		categoryRepo: repo,
		deletePolicy: deletePolicy,
		log:          logger,
	}
}

func (uc *categoryUseCase) CreateCategory(name string, parentID *int) (*domain.Category, error) {
	if name == "" {
		uc.log.Warn("Use Case: Attempted to create category with empty name")
		return nil, &domain.ValidationError{Reason: "category name cannot be empty"}
	}
	if parentID != nil && *parentID <= 0 {
		uc.log.Warnf("Use Case: Attempted to create category with invalid parent ID: %d", *parentID)
		return nil, &domain.ValidationError{Reason: "parent category ID must be positive"}
	}

	uc.log.Infof("Use Case: Attempting to create category '%s'", name)
	category := &domain.Category{Name: name, ParentID: parentID}
	createdCategory, err := uc.categoryRepo.CreateCategory(category)
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to create category '%s': %v", name, err)
		return nil, err
	}

	uc.log.Infof("Use Case: Category '%s' created with ID %d at level %d (path %s)",
		createdCategory.Name, createdCategory.ID, createdCategory.Level, createdCategory.Path)
	return createdCategory, nil
}

func (uc *categoryUseCase) GetCategoryByID(id int) (*domain.Category, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted to get category with invalid ID: %d", id)
		return nil, &domain.ValidationError{Reason: "invalid category ID"}
	}
	return uc.categoryRepo.GetCategoryByID(id)
}

func (uc *categoryUseCase) UpdateCategory(id int, name string) (*domain.Category, error) {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted update with invalid category ID: %d", id)
		return nil, &domain.ValidationError{Reason: "invalid category ID for update"}
	}
	if name == "" {
		uc.log.Warnf("Use Case: Attempted update for category ID %d with empty name", id)
		return nil, &domain.ValidationError{Reason: "category name cannot be empty for update"}
	}

	uc.log.Infof("Use Case: Attempting to rename category ID %d to '%s'", id, name)
	updatedCategory, err := uc.categoryRepo.UpdateCategory(&domain.Category{ID: id, Name: name})
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to update category ID %d: %v", id, err)
		return nil, err
	}
	return updatedCategory, nil
}

func (uc *categoryUseCase) DeleteCategory(id int) error {
	if id <= 0 {
		uc.log.Warnf("Use Case: Attempted delete with invalid category ID: %d", id)
		return &domain.ValidationError{Reason: "invalid category ID for delete"}
	}

	uc.log.Infof("Use Case: Attempting to delete category ID %d (policy: %s)", id, uc.deletePolicy)
	err := uc.categoryRepo.DeleteCategory(id, uc.deletePolicy)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to delete category ID %d: %v", id, err)
		return err
	}

	uc.log.Infof("Use Case: Category %d deleted with its subtree", id)
	return nil
}

func (uc *categoryUseCase) ListCategories() ([]domain.Category, error) {
	categories, err := uc.categoryRepo.ListCategories()
	if err != nil {
		uc.log.Errorf("Use Case: Repository failed to list categories: %v", err)
		return nil, fmt.Errorf("could not retrieve categories: %w", err)
	}
	return categories, nil
}

// ResolveRootAncestor walks no tree: the root is the first segment of the
// category's materialized path.
func (uc *categoryUseCase) ResolveRootAncestor(categoryID int) (*domain.Category, error) {
	if categoryID <= 0 {
		uc.log.Warnf("Use Case: Attempted root resolution with invalid category ID: %d", categoryID)
		return nil, &domain.ValidationError{Reason: "invalid category ID"}
	}

	category, err := uc.categoryRepo.GetCategoryByID(categoryID)
	if err != nil {
		uc.log.Warnf("Use Case: Repository failed to get category ID %d: %v", categoryID, err)
		return nil, err
	}

	rootID, err := domain.RootSegment(category.Path)
	if err != nil {
		uc.log.Errorf("Use Case: Category %d carries a corrupt path %q: %v", categoryID, category.Path, err)
		return nil, &domain.IntegrityViolationError{
			Reason: fmt.Sprintf("category %d carries a corrupt path %q", categoryID, category.Path),
		}
	}
	if rootID == category.ID {
		return category, nil
	}

	root, err := uc.categoryRepo.GetCategoryByID(rootID)
	if err != nil {
		uc.log.Errorf("Use Case: Root %d of category %d is missing: %v", rootID, categoryID, err)
		return nil, &domain.IntegrityViolationError{
			Reason: fmt.Sprintf("root ancestor %d of category %d is missing", rootID, categoryID),
		}
	}
	return root, nil
}
