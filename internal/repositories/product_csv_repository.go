package repositories

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"dulcino/internal/models"
)

// csvHeader is the column layout of the product file. The five domain columns
// match the storage schema of the database backend; the leading id column
// keeps record identity stable across process restarts.
var csvHeader = []string{"id", "nombre", "precio", "categorias", "en_venta", "ts"}

// CSVProductRepository is the tabular-file implementation of
// ProductRepository. The whole collection is the unit of IO: every mutation
// reads the current table, applies the change in memory and rewrites the
// entire file. There is no locking; two concurrent writers can lose a write
// (last writer wins). This is an accepted limitation of the single
// interactive session the system is designed for.
type CSVProductRepository struct {
	path string
}

// NewCSVProductRepository creates a repository persisting to the given file
// path. The file and its directory are created lazily on the first write.
func NewCSVProductRepository(path string) *CSVProductRepository {
	return &CSVProductRepository{
		path: path,
	}
}

// GetAll reads the whole table, optionally ordered by creation timestamp
// descending and capped at opts.Limit records. A missing file is an empty
// collection, not an error.
func (r *CSVProductRepository) GetAll(opts ListOptions) ([]models.Product, error) {
	products, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	if opts.NewestFirst {
		sort.SliceStable(products, func(i, j int) bool {
			return products[i].CreatedAt.After(products[j].CreatedAt)
		})
	}
	if opts.Limit > 0 && len(products) > opts.Limit {
		products = products[:opts.Limit]
	}
	return products, nil
}

// GetByID scans the table for a single product.
func (r *CSVProductRepository) GetByID(id string) (*models.Product, error) {
	products, err := r.loadAll()
	if err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].ID == id {
			return &products[i], nil
		}
	}
	return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
}

// Create appends one record and rewrites the file.
func (r *CSVProductRepository) Create(product *models.Product) error {
	products, err := r.loadAll()
	if err != nil {
		return err
	}
	products = append(products, *product)
	return r.writeAll(products)
}

// Update replaces the record with the matching ID and rewrites the file.
func (r *CSVProductRepository) Update(product *models.Product) error {
	products, err := r.loadAll()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == product.ID {
			products[i] = *product
			return r.writeAll(products)
		}
	}
	return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
}

// Delete removes the record with the matching ID and rewrites the file.
func (r *CSVProductRepository) Delete(id string) error {
	products, err := r.loadAll()
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].ID == id {
			products = append(products[:i], products[i+1:]...)
			return r.writeAll(products)
		}
	}
	return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
}

// loadAll reads and parses the whole file. A missing file yields an empty
// slice.
func (r *CSVProductRepository) loadAll() ([]models.Product, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open product file %s: %w", r.path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read product file %s: %w", r.path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	// Skip the header row.
	products := make([]models.Product, 0, len(records)-1)
	for _, row := range records[1:] {
		product, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("corrupt row in %s: %w", r.path, err)
		}
		products = append(products, product)
	}
	return products, nil
}

// writeAll rewrites the entire file, header included.
func (r *CSVProductRepository) writeAll(products []models.Product) error {
	if dir := filepath.Dir(r.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create data directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(r.path)
	if err != nil {
		return fmt.Errorf("failed to create product file %s: %w", r.path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for i := range products {
		if err := w.Write(formatRow(&products[i])); err != nil {
			return fmt.Errorf("failed to write product %s: %w", products[i].ID, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush product file %s: %w", r.path, err)
	}
	return nil
}

func formatRow(p *models.Product) []string {
	return []string{
		p.ID,
		p.Name,
		strconv.FormatFloat(p.Price, 'f', -1, 64),
		p.Categories.String(),
		strconv.FormatBool(p.OnSale),
		p.CreatedAt.Format(time.RFC3339),
	}
}

func parseRow(row []string) (models.Product, error) {
	if len(row) != len(csvHeader) {
		return models.Product{}, fmt.Errorf("expected %d columns, got %d", len(csvHeader), len(row))
	}

	price, err := strconv.ParseFloat(row[2], 64)
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid price %q: %w", row[2], err)
	}
	onSale, err := strconv.ParseBool(row[4])
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid en_venta value %q: %w", row[4], err)
	}
	ts, err := time.Parse(time.RFC3339, row[5])
	if err != nil {
		return models.Product{}, fmt.Errorf("invalid timestamp %q: %w", row[5], err)
	}

	var categories models.CategoryList
	if err := categories.Scan(row[3]); err != nil {
		return models.Product{}, err
	}

	return models.Product{
		ID:         row[0],
		Name:       row[1],
		Price:      price,
		Categories: categories,
		OnSale:     onSale,
		CreatedAt:  ts,
	}, nil
}
