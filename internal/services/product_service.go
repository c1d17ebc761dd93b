package services

import (
	"log"
	"time"

	"dulcino/internal/models"
	"dulcino/internal/repositories"
	"dulcino/internal/validation"

	"github.com/google/uuid"
)

// EventPublisher publishes product lifecycle events to a broker. A nil
// publisher disables publication entirely.
type EventPublisher interface {
	PublishProductEvent(action string, product *models.Product) error
}

// ProductService handles business logic related to products: it runs the
// validator over raw submissions, assigns identity and creation timestamp,
// and drives the repository. A failed validation or repository call never
// partially applies a change.
type ProductService struct {
	repo      repositories.ProductRepository
	validator *validation.Validator
	publisher EventPublisher
}

// NewProductService creates a new ProductService. publisher may be nil when
// no broker is configured.
func NewProductService(repo repositories.ProductRepository, validator *validation.Validator, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
	}
}

// Validate runs the raw submission through the validator without persisting
// anything. The presentation shell uses this for pre-submit checks.
func (s *ProductService) Validate(raw validation.RawSubmission) (*models.Product, error) {
	return s.validator.Validate(raw)
}

// GetAllProducts retrieves products, optionally newest-first and capped.
func (s *ProductService) GetAllProducts(opts repositories.ListOptions) ([]models.Product, error) {
	return s.repo.GetAll(opts)
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct validates a raw submission and persists it as a new product.
// The service assigns the UUID and the creation timestamp exactly once, here;
// both are immutable afterwards.
func (s *ProductService) CreateProduct(raw validation.RawSubmission) (*models.Product, error) {
	product, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	product.ID = uuid.New().String()
	product.CreatedAt = time.Now()

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}

	s.publish("created", product)
	return product, nil
}

// UpdateProduct validates a raw submission and replaces the mutable fields of
// an existing product. ID and CreatedAt are carried through from the stored
// record, never from the submission. A missing id fails with the repository's
// not-found error and never creates a new record.
func (s *ProductService) UpdateProduct(id string, raw validation.RawSubmission) (*models.Product, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	product, err := s.validator.Validate(raw)
	if err != nil {
		return nil, err
	}

	product.ID = existing.ID
	product.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}

	s.publish("updated", product)
	return product, nil
}

// DeleteProduct deletes a product by its ID. Deleting an unknown id is an
// error, not a no-op.
func (s *ProductService) DeleteProduct(id string) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.publish("deleted", product)
	return nil
}

// publish sends a lifecycle event when a broker is configured. Publish
// failures are logged and never fail the operation that triggered them.
func (s *ProductService) publish(action string, product *models.Product) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishProductEvent(action, product); err != nil {
		log.Printf("Warning: failed to publish product %s event for %s: %v", action, product.ID, err)
	}
}
