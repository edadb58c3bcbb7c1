// Package export renders saved nomenclatures as an XLSX workbook.
package export

import (
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"nomenclator/internal/model"
)

const (
	SheetName = "Sheet"
	MediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	// widthPadding is added to the longest value of each column.
	widthPadding = 2
)

var Header = []string{"id", "nomenclature", "project", "extension", "date", "time", "user"}

// WriteXLSX writes a header row followed by one row per record, in the order
// given, and sizes every column to its longest value.
func WriteXLSX(w io.Writer, records []model.Nomenclature) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet failed: %w", err)
	}

	widths := make([]int, len(Header))
	for i, h := range Header {
		widths[i] = utf8.RuneCountInString(h)
	}

	if err := setRow(f, 1, toCells(Header)); err != nil {
		return err
	}
	for i, r := range records {
		values := []string{
			strconv.FormatUint(uint64(r.ID), 10),
			r.Nomenclature,
			r.Project,
			r.Extension,
			r.Date,
			r.Time,
			r.User,
		}
		for col, v := range values {
			if n := utf8.RuneCountInString(v); n > widths[col] {
				widths[col] = n
			}
		}

		cells := toCells(values)
		cells[0] = r.ID
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	for i, width := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return fmt.Errorf("resolve column name failed: %w", err)
		}
		if err := f.SetColWidth(SheetName, col, col, float64(width+widthPadding)); err != nil {
			return fmt.Errorf("set column width failed: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook failed: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("resolve cell name failed: %w", err)
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d failed: %w", row, err)
	}
	return nil
}

func toCells(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
