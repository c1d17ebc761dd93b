package validation

import (
	"math"
	"strconv"
	"strings"

	"dulcino/internal/models"

	"github.com/go-playground/validator/v10"
)

// Labels for the on-sale radio choice. The form presents exactly these two
// options; anything else counts as "no choice made".
const (
	OnSaleYes = "Sí"
	OnSaleNo  = "No"
)

// RawSubmission is the untyped record handed over by the presentation shell.
// Price arrives as the literal text the user typed; OnSale is the selected
// radio label, or empty when nothing was selected. The Validator is the only
// place these raw values are interpreted.
type RawSubmission struct {
	Name       string
	Price      string
	Categories []string
	OnSale     string
}

// Validator checks raw submissions against the product rules and normalizes
// them into a Product ready for identity/timestamp assignment. It is pure:
// no side effects, no stored state beyond the allowed-category vocabulary.
type Validator struct {
	validate *validator.Validate
	allowed  map[string]struct{}
}

// New creates a Validator for the given allowed-category vocabulary. The
// vocabulary is process-wide configuration injected here, never a global.
func New(allowedCategories []string) *Validator {
	allowed := make(map[string]struct{}, len(allowedCategories))
	for _, c := range allowedCategories {
		allowed[c] = struct{}{}
	}
	return &Validator{
		validate: validator.New(),
		allowed:  allowed,
	}
}

// Validate applies the product rules in a fixed order, short-circuiting on
// the first failure. On success it returns a normalized Product with the
// trimmed name, the parsed price, the categories in submission order and the
// resolved on-sale flag; ID and CreatedAt are left for the store to assign.
func (v *Validator) Validate(sub RawSubmission) (*models.Product, error) {
	name := strings.TrimSpace(sub.Name)
	if err := v.validate.Var(name, "required"); err != nil {
		return nil, newError(KindEmptyName, "the name cannot be empty")
	}
	if err := v.validate.Var(name, "max=20"); err != nil {
		return nil, newError(KindNameTooLong, "the name cannot be longer than 20 characters")
	}

	price, err := strconv.ParseFloat(strings.TrimSpace(sub.Price), 64)
	if err != nil || math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, newError(KindPriceParse, "please check the price field")
	}
	if err := v.validate.Var(price, "gt=0,lt=999"); err != nil {
		return nil, newError(KindPriceOutOfRange, "the price must be greater than 0 and less than 999")
	}

	if len(sub.Categories) == 0 {
		return nil, newError(KindNoCategories, "at least one category must be selected")
	}
	for _, cat := range sub.Categories {
		if _, ok := v.allowed[cat]; !ok {
			return nil, newError(KindInvalidCategory, "invalid category: %s", cat)
		}
	}

	var onSale bool
	switch sub.OnSale {
	case OnSaleYes:
		onSale = true
	case OnSaleNo:
		onSale = false
	default:
		return nil, newError(KindMissingOnSaleChoice, "select whether the product is on sale or not")
	}

	// Categories are copied so the caller's slice cannot mutate the product
	// after validation. Submission order and duplicates are kept as-is.
	categories := make(models.CategoryList, len(sub.Categories))
	copy(categories, sub.Categories)

	return &models.Product{
		Name:       name,
		Price:      price,
		Categories: categories,
		OnSale:     onSale,
	}, nil
}
