package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"dulcino/internal/handlers"
	"dulcino/internal/models"
	"dulcino/internal/repositories"
	"dulcino/internal/services"
	"dulcino/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var testCategories = []string{
	"Chocolates", "Caramelos", "Mashmelos",
	"Galletas", "Salados", "Gomas de mascar",
}

// setupApp sets up a Fiber app for testing with an in-memory SQLite store
// and the full validator/service/handler chain.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}))

	productRepo := repositories.NewGORMProductRepository(db)
	productService := services.NewProductService(productRepo, validation.New(testCategories), nil)
	productHandler := handlers.NewProductHandler(productService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	productHandler.RegisterRoutes(apiV1)

	return app
}

// TestMain runs setup and teardown for all tests
func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	code := m.Run()
	os.Exit(code)
}

func postProduct(t *testing.T, app *fiber.App, body map[string]interface{}) *http.Response {
	t.Helper()

	jsonBody, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/products/", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestCreateAndListProduct(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "Chocolate Bar",
		"price":      "5.50",
		"categories": []string{"Chocolates"},
		"on_sale":    "Sí",
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	created := decodeBody(t, resp)
	assert.NotEmpty(t, created["id"])
	assert.Equal(t, "Chocolate Bar", created["name"])
	assert.InDelta(t, 5.50, created["price"].(float64), 1e-9)
	assert.Equal(t, true, created["on_sale"])

	// The created record is visible to a subsequent list call.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	require.Len(t, products, 1)
	assert.Equal(t, created["id"], products[0]["id"])
	assert.Equal(t, []interface{}{"Chocolates"}, products[0]["categories"])
}

func TestCreateProduct_EmptyNameRejected(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "",
		"price":      "5",
		"categories": []string{"Chocolates"},
		"on_sale":    "Sí",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, string(validation.KindEmptyName), body["kind"])

	// Nothing was persisted.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&products))
	listResp.Body.Close()
	assert.Empty(t, products)
}

func TestCreateProduct_MalformedPriceGetsGenericMessage(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "Gum",
		"price":      "abc",
		"categories": []string{"Gomas de mascar"},
		"on_sale":    "No",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, string(validation.KindPriceParse), body["kind"])
	// A malformed price gets its own message, distinct from range errors.
	assert.Equal(t, "Please check the price field.", body["message"])
}

func TestCreateProduct_PriceOutOfRange(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "X",
		"price":      "1000",
		"categories": []string{"Galletas"},
		"on_sale":    "Sí",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, string(validation.KindPriceOutOfRange), body["kind"])
	assert.NotEqual(t, "Please check the price field.", body["message"])
}

func TestCreateProduct_InvalidCategoryNamed(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "Soda",
		"price":      "3",
		"categories": []string{"Bebidas"},
		"on_sale":    "No",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	body := decodeBody(t, resp)
	assert.Equal(t, string(validation.KindInvalidCategory), body["kind"])
	assert.Contains(t, body["detail"], "Bebidas")
}

func TestUpdateProduct(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "Gum",
		"price":      "1.50",
		"categories": []string{"Gomas de mascar"},
		"on_sale":    "No",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody(t, resp)
	id := created["id"].(string)

	update := map[string]interface{}{
		"name":       "Mint Gum",
		"price":      "2.25",
		"categories": []string{"Gomas de mascar", "Caramelos"},
		"on_sale":    "Sí",
	}
	jsonBody, _ := json.Marshal(update)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/"+id, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated := decodeBody(t, resp)
	// Identity and creation timestamp survive the update untouched.
	assert.Equal(t, id, updated["id"])
	createdAt, err := time.Parse(time.RFC3339Nano, created["created_at"].(string))
	require.NoError(t, err)
	updatedAt, err := time.Parse(time.RFC3339Nano, updated["created_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, createdAt, updatedAt, time.Second)
	assert.Equal(t, "Mint Gum", updated["name"])
	assert.Equal(t, []interface{}{"Gomas de mascar", "Caramelos"}, updated["categories"])
	assert.Equal(t, true, updated["on_sale"])
}

func TestUpdateProduct_UnknownIDIs404(t *testing.T) {
	app := setupApp(t)

	update := map[string]interface{}{
		"name":       "Ghost",
		"price":      "1",
		"categories": []string{"Chocolates"},
		"on_sale":    "No",
	}
	jsonBody, _ := json.Marshal(update)
	req := httptest.NewRequest(http.MethodPut, "/api/v1/products/no-such-id", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// The failed update never created a record.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	listResp, err := app.Test(req, -1)
	require.NoError(t, err)
	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(listResp.Body).Decode(&products))
	listResp.Body.Close()
	assert.Empty(t, products)
}

func TestDeleteProduct_SecondDeleteIs404(t *testing.T) {
	app := setupApp(t)

	resp := postProduct(t, app, map[string]interface{}{
		"name":       "Gum",
		"price":      "1.50",
		"categories": []string{"Gomas de mascar"},
		"on_sale":    "No",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := decodeBody(t, resp)["id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+id, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	// Deleting the same id again fails: the strict not-found policy.
	req = httptest.NewRequest(http.MethodDelete, "/api/v1/products/"+id, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestListProducts_LimitQuery(t *testing.T) {
	app := setupApp(t)

	for _, name := range []string{"One", "Two", "Three"} {
		resp := postProduct(t, app, map[string]interface{}{
			"name":       name,
			"price":      "5",
			"categories": []string{"Salados"},
			"on_sale":    "No",
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/?limit=2", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var products []map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&products))
	resp.Body.Close()
	assert.Len(t, products, 2)
}
