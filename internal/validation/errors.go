package validation

import (
	"errors"
	"fmt"
)

// Kind classifies why a submission was rejected. The presentation layer keys
// its user-facing messages off this value, so every rule has its own kind.
type Kind string

const (
	// KindEmptyName means the name was empty after trimming whitespace.
	KindEmptyName Kind = "empty_name"
	// KindNameTooLong means the trimmed name exceeded 20 characters.
	KindNameTooLong Kind = "name_too_long"
	// KindPriceParse means the price was not a finite decimal number. It is
	// deliberately distinct from KindPriceOutOfRange: a malformed literal gets
	// a generic "check the price field" message, a range violation does not.
	KindPriceParse Kind = "price_parse"
	// KindPriceOutOfRange means the price parsed but fell outside (0, 999).
	KindPriceOutOfRange Kind = "price_out_of_range"
	// KindNoCategories means no category was selected.
	KindNoCategories Kind = "no_categories"
	// KindInvalidCategory means a category was not in the allowed vocabulary.
	KindInvalidCategory Kind = "invalid_category"
	// KindMissingOnSaleChoice means the on-sale field was not an explicit
	// yes/no choice.
	KindMissingOnSaleChoice Kind = "missing_on_sale_choice"
)

// Error is a classified validation failure. It carries a machine-readable
// Kind plus a human-readable detail string.
type Error struct {
	Kind   Kind
	Detail string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("validation failed (%s): %s", e.Kind, e.Detail)
}

// IsPriceParse reports whether err is a validation failure caused by a
// malformed price literal.
func IsPriceParse(err error) bool {
	ve, ok := AsValidationError(err)
	return ok && ve.Kind == KindPriceParse
}

// AsValidationError unwraps err into a *Error if one is in its chain.
func AsValidationError(err error) (*Error, bool) {
	var ve *Error
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}
