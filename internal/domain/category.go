package domain

import (
	"strconv"
	"strings"
	"time"
)

// Category is a node of the product category tree. Path is the full
// materialized path: dot-separated ancestor ids ending with the category's
// own id (e.g. "1.3.4"). Level equals the number of ancestors, 0 for roots.
type Category struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	ParentID  *int      `json:"parent_id"`
	Level     int       `json:"level"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CategoryDeletePolicy controls what happens to products referencing a
// category subtree when it is deleted.
type CategoryDeletePolicy string

const (
	// DetachProducts nulls out category_id on every product in the subtree.
	DetachProducts CategoryDeletePolicy = "detach"
	// RestrictDelete rejects the deletion while any product references the subtree.
	RestrictDelete CategoryDeletePolicy = "restrict"
)

func IsValidDeletePolicy(p CategoryDeletePolicy) bool {
	return p == DetachProducts || p == RestrictDelete
}

// ChildPath builds the materialized path of a child with the given id under
// a parent path. An empty parent path produces a root path.
func ChildPath(parentPath string, id int) string {
	if parentPath == "" {
		return strconv.Itoa(id)
	}
	return parentPath + "." + strconv.Itoa(id)
}

// RootSegment extracts the root ancestor id from a materialized path.
func RootSegment(path string) (int, error) {
	segment, _, _ := strings.Cut(path, ".")
	return strconv.Atoi(segment)
}

// PathLevel returns the tree level encoded in a path: segment count minus one.
func PathLevel(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, ".")
}

// PathContains reports whether id appears as a segment of path, i.e. whether
// the category owning the path is id itself or one of its descendants.
func PathContains(path string, id int) bool {
	want := strconv.Itoa(id)
	for _, segment := range strings.Split(path, ".") {
		if segment == want {
			return true
		}
	}
	return false
}

type CategoryRepository interface {
	CreateCategory(category *Category) (*Category, error)
	GetCategoryByID(id int) (*Category, error)
	UpdateCategory(category *Category) (*Category, error)
	DeleteCategory(id int, policy CategoryDeletePolicy) error
	ListCategories() ([]Category, error)
}
