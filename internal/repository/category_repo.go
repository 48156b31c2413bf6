package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/Gargooie/Order-Management-API/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type postgresCategoryRepository struct {
	db  *sql.DB
	log *logrus.Logger
}

func NewPostgresCategoryRepository(db *sql.DB, logger *logrus.Logger) domain.CategoryRepository {
	return &postgresCategoryRepository{
		db:  db,
		log: logger,
	}
}

func (r *postgresCategoryRepository) CreateCategory(category *domain.Category) (*domain.Category, error) {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for category create: %v", err)
		return nil, fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback category create: %v (original error: %v)", rbErr, err)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit category create: %w", cErr)
				r.log.Errorf("CreateCategory: %v", err)
			}
		}
	}()

	parentPath := ""
	level := 0
	if category.ParentID != nil {
		err = tx.QueryRow(`SELECT path, level FROM categories WHERE id = $1`, *category.ParentID).
			Scan(&parentPath, &level)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				r.log.Warnf("Parent category %d not found while creating '%s'", *category.ParentID, category.Name)
				err = &domain.NotFoundError{Entity: "category", ID: *category.ParentID}
				return nil, err
			}
			r.log.Errorf("Failed to load parent category %d: %v", *category.ParentID, err)
			return nil, fmt.Errorf("could not load parent category: %w", err)
		}
		level++
	}

	err = tx.QueryRow(`
        INSERT INTO categories (name, parent_id, level)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at`,
		category.Name, category.ParentID, level).
		Scan(&category.ID, &category.CreatedAt, &category.UpdatedAt)
	if err != nil {
		r.log.Errorf("Failed to insert category '%s': %v", category.Name, err)
		return nil, fmt.Errorf("could not create category: %w", err)
	}

	// The path includes the generated id, so it is stamped after the insert
	// within the same transaction.
	category.Level = level
	category.Path = domain.ChildPath(parentPath, category.ID)
	_, err = tx.Exec(`UPDATE categories SET path = $1 WHERE id = $2`, category.Path, category.ID)
	if err != nil {
		r.log.Errorf("Failed to stamp path for category %d: %v", category.ID, err)
		return nil, fmt.Errorf("could not stamp category path: %w", err)
	}

	r.log.Infof("Category created successfully with ID: %d, Path: %s", category.ID, category.Path)
	return category, nil
}

func (r *postgresCategoryRepository) GetCategoryByID(id int) (*domain.Category, error) {
	query := `SELECT id, name, parent_id, level, path, created_at, updated_at FROM categories WHERE id = $1`
	category := &domain.Category{}
	var parentID sql.NullInt64
	err := r.db.QueryRow(query, id).Scan(
		&category.ID,
		&category.Name,
		&parentID,
		&category.Level,
		&category.Path,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found", id)
			return nil, &domain.NotFoundError{Entity: "category", ID: id}
		}
		r.log.Errorf("Failed to get category by ID %d: %v", id, err)
		return nil, fmt.Errorf("could not get category by id: %w", err)
	}
	if parentID.Valid {
		pid := int(parentID.Int64)
		category.ParentID = &pid
	}
	return category, nil
}

func (r *postgresCategoryRepository) UpdateCategory(category *domain.Category) (*domain.Category, error) {
	query := `
        UPDATE categories SET name = $1, updated_at = NOW()
        WHERE id = $2
        RETURNING id, name, parent_id, level, path, created_at, updated_at`
	var parentID sql.NullInt64
	err := r.db.QueryRow(query, category.Name, category.ID).Scan(
		&category.ID,
		&category.Name,
		&parentID,
		&category.Level,
		&category.Path,
		&category.CreatedAt,
		&category.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found for update", category.ID)
			return nil, &domain.NotFoundError{Entity: "category", ID: category.ID}
		}
		r.log.Errorf("Failed to update category ID %d: %v", category.ID, err)
		return nil, fmt.Errorf("could not update category: %w", err)
	}
	category.ParentID = nil
	if parentID.Valid {
		pid := int(parentID.Int64)
		category.ParentID = &pid
	}
	r.log.Infof("Category updated successfully with ID: %d", category.ID)
	return category, nil
}

func (r *postgresCategoryRepository) DeleteCategory(id int, policy domain.CategoryDeletePolicy) error {
	tx, err := r.db.Begin()
	if err != nil {
		r.log.Errorf("Failed to begin transaction for category delete: %v", err)
		return fmt.Errorf("could not start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				r.log.Errorf("Failed to rollback category delete: %v (original error: %v)", rbErr, err)
			}
		} else {
			if cErr := tx.Commit(); cErr != nil {
				err = fmt.Errorf("failed to commit category delete: %w", cErr)
				r.log.Errorf("DeleteCategory: %v", err)
			}
		}
	}()

	var path string
	err = tx.QueryRow(`SELECT path FROM categories WHERE id = $1`, id).Scan(&path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.Warnf("Category with ID %d not found for deletion", id)
			err = &domain.NotFoundError{Entity: "category", ID: id}
			return err
		}
		r.log.Errorf("Failed to load category %d for deletion: %v", id, err)
		return fmt.Errorf("could not load category for deletion: %w", err)
	}

	// Subtree match on the materialized path: the node itself plus every
	// category whose path extends it by at least one segment.
	subtree := `SELECT id FROM categories WHERE path = $1 OR path LIKE $1 || '.%'`

	if policy == domain.RestrictDelete {
		var referencing int
		err = tx.QueryRow(
			`SELECT count(*) FROM products WHERE category_id IN (`+subtree+`)`, path).
			Scan(&referencing)
		if err != nil {
			r.log.Errorf("Failed to count products under category %d: %v", id, err)
			return fmt.Errorf("could not check products under category: %w", err)
		}
		if referencing > 0 {
			r.log.Warnf("Rejected deletion of category %d: %d products reference its subtree", id, referencing)
			err = &domain.ValidationError{
				Reason: fmt.Sprintf("category %d cannot be deleted: %d products reference it or its subcategories", id, referencing),
			}
			return err
		}
	} else {
		_, err = tx.Exec(
			`UPDATE products SET category_id = NULL, updated_at = NOW() WHERE category_id IN (`+subtree+`)`, path)
		if err != nil {
			r.log.Errorf("Failed to detach products under category %d: %v", id, err)
			return fmt.Errorf("could not detach products under category: %w", err)
		}
	}

	result, err := tx.Exec(`DELETE FROM categories WHERE path = $1 OR path LIKE $1 || '.%'`, path)
	if err != nil {
		r.log.Errorf("Failed to delete category subtree for ID %d: %v", id, err)
		return fmt.Errorf("could not delete category: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		r.log.Errorf("Failed to get rows affected after deleting category ID %d: %v", id, err)
		return fmt.Errorf("could not confirm category deletion: %w", err)
	}

	r.log.Infof("Category %d deleted with %d subtree rows (policy: %s)", id, deleted, policy)
	return nil
}

func (r *postgresCategoryRepository) ListCategories() ([]domain.Category, error) {
	query := `SELECT id, name, parent_id, level, path, created_at, updated_at FROM categories ORDER BY path ASC`
	rows, err := r.db.Query(query)
	if err != nil {
		r.log.Errorf("Failed to list categories: %v", err)
		return nil, fmt.Errorf("could not list categories: %w", err)
	}
	defer rows.Close()

	categories := []domain.Category{}
	for rows.Next() {
		var category domain.Category
		var parentID sql.NullInt64
		if err := rows.Scan(
			&category.ID,
			&category.Name,
			&parentID,
			&category.Level,
			&category.Path,
			&category.CreatedAt,
			&category.UpdatedAt,
		); err != nil {
			r.log.Errorf("Failed to scan category row: %v", err)
			return nil, fmt.Errorf("error scanning category data: %w", err)
		}
		if parentID.Valid {
			pid := int(parentID.Int64)
			category.ParentID = &pid
		}
		categories = append(categories, category)
	}
	if err = rows.Err(); err != nil {
		r.log.Errorf("Error during categories list iteration: %v", err)
		return nil, fmt.Errorf("error iterating categories: %w", err)
	}

	r.log.Infof("Retrieved %d categories", len(categories))
	return categories, nil
}

// isForeignKeyViolation reports whether err is a Postgres foreign key
// violation (code 23503).
func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23503"
}
