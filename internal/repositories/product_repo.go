package repositories

import (
	"errors"

	"dulcino/internal/models"
)

// ErrNotFound is returned when a mutation or lookup targets an id that does
// not exist. Deleting a missing id fails with this error rather than being a
// silent no-op; callers that want idempotent deletes must check for it.
var ErrNotFound = errors.New("product not found")

// ListOptions controls GetAll. A zero Limit means no cap; NewestFirst orders
// the result by creation timestamp descending.
type ListOptions struct {
	Limit       int
	NewestFirst bool
}

// ProductRepository defines the interface for product data access. Both
// backends (CSV file and database table) expose the same contract and return
// identical Product shapes; the rest of the system never knows which one is
// behind the interface.
type ProductRepository interface {
	GetAll(opts ListOptions) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
