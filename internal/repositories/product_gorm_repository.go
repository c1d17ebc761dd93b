package repositories

import (
	"errors"
	"fmt"

	"dulcino/internal/models"

	"gorm.io/gorm"
)

// GORMProductRepository is the database-table implementation of
// ProductRepository. Each operation is a single statement against the
// products table; atomicity is per row, there are no cross-row transactions.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetAll retrieves products from the database, optionally ordered by
// creation timestamp descending and capped at opts.Limit rows.
func (r *GORMProductRepository) GetAll(opts ListOptions) ([]models.Product, error) {
	query := r.db
	if opts.NewestFirst {
		query = query.Order("ts DESC")
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product by its ID from the database.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product row. The caller (the service layer) has
// already assigned the ID and creation timestamp; Create never overwrites an
// existing row.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update replaces the mutable fields of an existing product row. The map
// form pins the statement to exactly those columns: id and ts are never
// written, and GORM's Save upsert fallback can't turn a missing row into an
// insert.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
		"nombre":     product.Name,
		"precio":     product.Price,
		"categorias": product.Categories,
		"en_venta":   product.OnSale,
	})
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		// Updates doesn't return ErrRecordNotFound when the row is missing,
		// so we check RowsAffected.
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a product row by its ID.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
