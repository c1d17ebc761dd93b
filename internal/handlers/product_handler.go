package handlers

import (
	"errors"
	"log"

	"dulcino/internal/repositories"
	"dulcino/internal/services"
	"dulcino/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products. It is a thin shell: it
// collects raw field values, hands them to the service (which owns validation
// and persistence) and translates classified errors into user-facing
// responses. It never interprets the raw fields itself.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the product routes with the Fiber app.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", h.HandleCreateProduct)
	productRoutes.Put("/:id", h.HandleUpdateProduct)
	productRoutes.Delete("/:id", h.HandleDeleteProduct)
}

// productForm carries the raw form fields exactly as the user entered them.
// Price stays a string: deciding whether it is a valid number is the
// validator's job, not the transport layer's.
type productForm struct {
	Name       string   `json:"name"`
	Price      string   `json:"price"`
	Categories []string `json:"categories"`
	OnSale     string   `json:"on_sale"`
}

func (f productForm) toRawSubmission() validation.RawSubmission {
	return validation.RawSubmission{
		Name:       f.Name,
		Price:      f.Price,
		Categories: f.Categories,
		OnSale:     f.OnSale,
	}
}

// HandleGetProducts retrieves products, newest first, optionally capped by
// the "limit" query parameter.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	opts := repositories.ListOptions{
		Limit:       c.QueryInt("limit", 0),
		NewestFirst: true,
	}

	products, err := h.service.GetAllProducts(opts)
	if err != nil {
		log.Printf("Error getting all products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	return c.JSON(products)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		return h.renderError(c, err, "Could not retrieve product")
	}
	return c.JSON(product)
}

// HandleCreateProduct validates and persists a new product submission.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var form productForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.CreateProduct(form.toRawSubmission())
	if err != nil {
		return h.renderError(c, err, "Could not create product")
	}
	return c.Status(fiber.StatusCreated).JSON(product)
}

// HandleUpdateProduct re-validates a submission and replaces the mutable
// fields of an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	productID := c.Params("id")

	var form productForm
	if err := c.BodyParser(&form); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}

	product, err := h.service.UpdateProduct(productID, form.toRawSubmission())
	if err != nil {
		return h.renderError(c, err, "Could not update product")
	}
	return c.JSON(product)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(productID); err != nil {
		return h.renderError(c, err, "Could not delete product")
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// renderError maps classified core errors onto HTTP responses. A malformed
// price gets its own generic message; the remaining validation kinds share
// the rejection message plus the rule detail; unknown ids map to 404 and
// anything else is the unexpected-error catch-all.
func (h *ProductHandler) renderError(c *fiber.Ctx, err error, fallback string) error {
	if ve, ok := validation.AsValidationError(err); ok {
		if ve.Kind == validation.KindPriceParse {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Please check the price field.",
				"kind":    ve.Kind,
			})
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Sorry, this product was rejected.",
			"kind":    ve.Kind,
			"detail":  ve.Detail,
		})
	}
	if errors.Is(err, repositories.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	}
	log.Printf("Unexpected error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Unexpected error. Contact support.",
		"error":   fallback,
	})
}
