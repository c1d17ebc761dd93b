package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// CategorySeparator joins multiple category tags into the single text field
// shared by both persistence backends.
const CategorySeparator = ";"

// CategoryList is an ordered list of category tags. It serializes to a single
// ";"-joined string so the CSV backend and the database backend share one
// storage representation. Order and duplicates are preserved as submitted.
type CategoryList []string

// Value implements driver.Valuer for database storage.
func (c CategoryList) Value() (driver.Value, error) {
	return strings.Join(c, CategorySeparator), nil
}

// Scan implements sql.Scanner, splitting the stored text back into tags.
func (c *CategoryList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*c = nil
		return nil
	case string:
		*c = splitCategories(v)
		return nil
	case []byte:
		*c = splitCategories(string(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into CategoryList", value)
	}
}

// String returns the joined storage representation.
func (c CategoryList) String() string {
	return strings.Join(c, CategorySeparator)
}

func splitCategories(s string) CategoryList {
	if s == "" {
		return nil
	}
	return CategoryList(strings.Split(s, CategorySeparator))
}

// Product represents one confectionery item for sale. A Product is only ever
// persisted after passing validation; ID and CreatedAt are assigned once at
// create time and never change afterwards.
type Product struct {
	ID         string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name       string       `json:"name" gorm:"column:nombre;type:varchar(20);not null"`
	Price      float64      `json:"price" gorm:"column:precio;not null"`
	Categories CategoryList `json:"categories" gorm:"column:categorias;type:text;not null"`
	OnSale     bool         `json:"on_sale" gorm:"column:en_venta;not null"`
	CreatedAt  time.Time    `json:"created_at" gorm:"column:ts"`
}

// TableName fixes the table name so GORM does not derive it from the struct.
func (Product) TableName() string {
	return "products"
}
