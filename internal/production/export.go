package production

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/collate"
)

const exportSheetName = "Production"

// Export renders the production sheet of date as an XLSX workbook. Rows are
// grouped under one header line per category.
func (s *Service) Export(ctx context.Context, tenantID uuid.UUID, date time.Time) (*bytes.Buffer, *Sheet, error) {
	sheet, err := s.Sheet(ctx, tenantID, date)
	if err != nil {
		return nil, nil, err
	}
	buf, err := s.writeWorkbook(sheet)
	if err != nil {
		return nil, nil, err
	}
	return buf, sheet, nil
}

func (s *Service) writeWorkbook(sheet *Sheet) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheetName); err != nil {
		return nil, err
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	set := func(cell string, v any) {
		if err == nil {
			err = f.SetCellValue(exportSheetName, cell, v)
		}
	}

	set("A1", fmt.Sprintf("Production du %s", sheet.Date))
	set("A3", "Catégorie")
	set("B3", "Sous-catégorie")
	set("C3", "Produit")
	set("D3", "Quantité")
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(exportSheetName, "A1", "D3", boldStyle); err != nil {
		return nil, err
	}

	row := 4
	for _, group := range groupByCategory(sheet.Rows, collate.New(s.lang)) {
		set(fmt.Sprintf("A%d", row), categoryLabel(group.name))
		if err == nil {
			err = f.SetCellStyle(exportSheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), boldStyle)
		}
		row++
		for _, r := range group.rows {
			set(fmt.Sprintf("B%d", row), r.SubCategoryName)
			set(fmt.Sprintf("C%d", row), r.ProductName)
			set(fmt.Sprintf("D%d", row), r.TotalQuantity)
			row++
		}
	}
	if sheet.UnresolvedItems > 0 {
		row++
		set(fmt.Sprintf("A%d", row), fmt.Sprintf("Articles ignorés (produit supprimé) : %d", sheet.UnresolvedItems))
	}
	if err != nil {
		return nil, err
	}

	if err := f.SetColWidth(exportSheetName, "A", "C", 28); err != nil {
		return nil, err
	}
	return f.WriteToBuffer()
}

type categoryGroup struct {
	name string
	rows []Row
}

// groupByCategory keeps the product order inside each group and sorts groups by name.
func groupByCategory(rows []Row, col *collate.Collator) []categoryGroup {
	index := make(map[string]int)
	var groups []categoryGroup
	for _, r := range rows {
		i, ok := index[r.CategoryName]
		if !ok {
			i = len(groups)
			index[r.CategoryName] = i
			groups = append(groups, categoryGroup{name: r.CategoryName})
		}
		groups[i].rows = append(groups[i].rows, r)
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return col.CompareString(groups[i].name, groups[j].name) < 0
	})
	return groups
}

func categoryLabel(name string) string {
	if name == "" {
		return "Sans catégorie"
	}
	return name
}
