// Package production builds the per-day production sheet: how much of each
// product the kitchen must prepare for the orders picked up that day.
package production

import (
	"sort"

	"caterer-backend/internal/models"

	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type Row struct {
	ProductID       uuid.UUID `json:"productId"`
	ProductName     string    `json:"productName"`
	TotalQuantity   int       `json:"totalQuantity"`
	CategoryName    string    `json:"categoryName"`
	SubCategoryName string    `json:"subCategoryName"`
}

type Sheet struct {
	Date string `json:"date"`
	Rows []Row  `json:"rows"`
	// Ürünü çözülemeyen (silinmiş) kalem sayısı; bu kalemler satırlara dahil edilmez
	UnresolvedItems int `json:"unresolvedItems"`
}

// Lookup holds the catalog rows the aggregation may reference, keyed by id.
// A product missing from Products is unresolved.
type Lookup struct {
	Products      map[uuid.UUID]models.Product
	Categories    map[uuid.UUID]string
	SubCategories map[uuid.UUID]string
}

// Aggregate sums item quantities per product id across orders. Rows are sorted
// by product name with the collation rules of lang; equal names are ordered by
// product id. Aggregate does not touch the orders or the lookup maps.
func Aggregate(orders []models.Order, lk Lookup, lang language.Tag) ([]Row, int) {
	totals := make(map[uuid.UUID]int)
	unresolved := 0

	for _, o := range orders {
		for _, item := range o.Items {
			if _, ok := lk.Products[item.ProductID]; !ok {
				unresolved++
				continue
			}
			totals[item.ProductID] += item.Quantity
		}
	}

	rows := make([]Row, 0, len(totals))
	for id, qty := range totals {
		p := lk.Products[id]
		row := Row{
			ProductID:     id,
			ProductName:   p.Designation,
			TotalQuantity: qty,
			CategoryName:  lk.Categories[p.CategoryID],
		}
		if p.SubCategoryID != nil {
			row.SubCategoryName = lk.SubCategories[*p.SubCategoryID]
		}
		rows = append(rows, row)
	}

	// Collator eşzamanlı kullanıma uygun değil, her çağrıda yenisi oluşturulur
	col := collate.New(lang)
	sort.Slice(rows, func(i, j int) bool {
		if c := col.CompareString(rows[i].ProductName, rows[j].ProductName); c != 0 {
			return c < 0
		}
		return rows[i].ProductID.String() < rows[j].ProductID.String()
	})

	return rows, unresolved
}
