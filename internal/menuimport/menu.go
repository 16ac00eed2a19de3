// Package menuimport turns an uploaded menu PDF into catalog rows: the PDF is
// split into small chunks for the OCR provider, the recognised text is cleaned
// and handed to a text-generation provider that answers with a JSON menu, and
// the menu is written to the catalog in one transaction.
package menuimport

import (
	"context"

	"github.com/shopspring/decimal"
)

// Menu is the structure the text-generation provider must answer with.
type Menu struct {
	Categories []MenuCategory `json:"categories"`
}

type MenuCategory struct {
	Name          string            `json:"name"`
	SubCategories []MenuSubCategory `json:"subCategories,omitempty"`
	Products      []MenuProduct     `json:"products,omitempty"`
}

// MenuSubCategory: Name nil ise ürünler doğrudan kategoriye eklenir
type MenuSubCategory struct {
	Name     *string       `json:"name"`
	Products []MenuProduct `json:"products,omitempty"`
}

type MenuProduct struct {
	Designation string          `json:"designation"`
	Price       decimal.Decimal `json:"price"`
}

// TextExtractor returns the text recognised in one PDF document.
type TextExtractor interface {
	ExtractText(ctx context.Context, pdf []byte) (string, error)
}

// MenuParser structures cleaned menu text.
type MenuParser interface {
	ParseMenu(ctx context.Context, text string) (*Menu, error)
}
