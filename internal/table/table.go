// Package table turns uploaded spreadsheet bytes into an ordered column list
// and a sequence of string-valued rows.
//
// Cell values are stringified once here: numbers become plain decimal text,
// booleans become TRUE/FALSE, blanks become "". Downstream code only ever
// sees strings.
package table

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrEmpty is returned when the file has no header row.
var ErrEmpty = errors.New("empty file: no header row found")

// Format identifies the parser used for an upload.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// Row maps column name to cell text. Absent keys and blank cells are
// indistinguishable to callers that use Get.
type Row map[string]string

// Get returns the cell for column, or "" when the column is unknown.
func (r Row) Get(column string) string {
	return r[column]
}

// Table is a fully materialized sheet.
type Table struct {
	Format  Format
	Columns []string
	Rows    []Row
}

// Loader parses uploads. The zero value is ready to use.
type Loader struct {
	// MaxUnzipSize caps the decompressed size of xlsx archives; zero keeps
	// the library default.
	MaxUnzipSize int64
}

// Load parses data as a spreadsheet. name is only used to pick the parser.
func (l Loader) Load(name string, data []byte) (*Table, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmpty
	}

	var (
		grid [][]string
		err  error
	)
	format := detectFormat(name, data)
	switch format {
	case FormatXLSX:
		grid, err = l.readXLSX(data)
	default:
		grid, err = readCSV(data)
	}
	if err != nil {
		return nil, err
	}

	return build(format, grid)
}

// Load parses data with a default Loader.
func Load(name string, data []byte) (*Table, error) {
	return Loader{}.Load(name, data)
}

// zipMagic prefixes every OOXML package.
var zipMagic = []byte("PK\x03\x04")

func detectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return FormatXLSX
	case ".csv", ".txt", ".tsv":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

// build applies header naming rules and drops blank rows.
func build(format Format, grid [][]string) (*Table, error) {
	start := -1
	for i, cells := range grid {
		if !isBlank(cells) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrEmpty
	}

	header := grid[start]
	body := grid[start+1:]

	width := len(header)
	for _, cells := range body {
		if n := lastNonBlank(cells) + 1; n > width {
			width = n
		}
	}

	columns := NameColumns(header, width)
	t := &Table{Format: format, Columns: columns}

	for _, cells := range body {
		if isBlank(cells) {
			continue
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(cells) {
				row[col] = cells[i]
			} else {
				row[col] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

// NameColumns pads header to width and makes every name unique. A blank
// header at position i becomes "Unnamed: i"; repeated names get ".1", ".2"
// suffixes in order of appearance.
func NameColumns(header []string, width int) []string {
	if width < len(header) {
		width = len(header)
	}

	names := make([]string, width)
	seen := make(map[string]int, width)
	for i := 0; i < width; i++ {
		name := ""
		if i < len(header) {
			name = header[i]
		}
		if strings.TrimSpace(name) == "" {
			name = "Unnamed: " + strconv.Itoa(i)
		}

		base := name
		for {
			n, dup := seen[base]
			if !dup {
				break
			}
			candidate := fmt.Sprintf("%s.%d", base, n+1)
			seen[base] = n + 1
			if _, taken := seen[candidate]; !taken {
				name = candidate
				break
			}
		}
		seen[name] = 0
		names[i] = name
	}
	return names
}

func isBlank(cells []string) bool {
	return lastNonBlank(cells) < 0
}

func lastNonBlank(cells []string) int {
	for i := len(cells) - 1; i >= 0; i-- {
		if strings.TrimSpace(cells[i]) != "" {
			return i
		}
	}
	return -1
}
