package table

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/unicode/norm"
)

// readXLSX returns the first worksheet as a grid of stringified cells.
func (l Loader) readXLSX(data []byte) ([][]string, error) {
	var opts []excelize.Options
	if l.MaxUnzipSize > 0 {
		opts = append(opts, excelize.Options{UnzipSizeLimit: l.MaxUnzipSize})
	}

	f, err := excelize.OpenReader(bytes.NewReader(data), opts...)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	defer rows.Close()

	var grid [][]string
	for r := 1; rows.Next(); r++ {
		raw, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", r, err)
		}

		cells := make([]string, len(raw))
		for c, value := range raw {
			if value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r)
			if err != nil {
				return nil, err
			}
			kind, err := f.GetCellType(sheet, axis)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", axis, err)
			}
			cells[c] = FormatCell(kind, value)
		}
		grid = append(grid, cells)
	}
	if err := rows.Error(); err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	return grid, nil
}

// FormatCell stringifies a raw cell value by its stored type.
func FormatCell(kind excelize.CellType, raw string) string {
	switch kind {
	case excelize.CellTypeBool:
		if raw == "1" || strings.EqualFold(raw, "true") {
			return "TRUE"
		}
		return "FALSE"
	case excelize.CellTypeUnset, excelize.CellTypeNumber:
		if s, ok := FormatNumber(raw); ok {
			return s
		}
	}
	return norm.NFC.String(raw)
}

// FormatNumber renders a stored numeric value as plain decimal text with
// no exponent, grouping or trailing zeros: "5.551234567E9" -> "5551234567".
func FormatNumber(raw string) (string, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", false
	}
	return strconv.FormatFloat(f, 'f', -1, 64), true
}
