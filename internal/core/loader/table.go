package loader

import (
	"fmt"
	"strings"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
)

// sheetTable is a sheet region below its header rows, with normalized column names.
type sheetTable struct {
	Columns []string
	Rows    [][]string
	// SheetRows holds the 1-based sheet row of each entry in Rows.
	SheetRows []int
	index     map[string]int
}

// newSheetTable takes the header at the given 0-based rows (consecutive, one
// per level) and every non-blank row after the last one as data.
func newSheetTable(rows [][]string, headerRows ...int) (*sheetTable, error) {
	if len(headerRows) == 0 {
		headerRows = []int{0}
	}
	last := headerRows[len(headerRows)-1]
	if last >= len(rows) {
		return nil, fmt.Errorf("header row %d beyond sheet end (%d rows)", last+1, len(rows))
	}

	header := make([][]string, len(headerRows))
	for i, r := range headerRows {
		header[i] = rows[r]
	}

	t := &sheetTable{Columns: normalize.Columns(header), index: map[string]int{}}
	for i, c := range t.Columns {
		if _, seen := t.index[c]; !seen {
			t.index[c] = i
		}
	}
	for i := last + 1; i < len(rows); i++ {
		if blankRow(rows[i]) {
			continue
		}
		t.Rows = append(t.Rows, rows[i])
		t.SheetRows = append(t.SheetRows, i+1)
	}
	return t, nil
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Col returns the first position of a normalized column name, or -1.
func (t *sheetTable) Col(name string) int {
	if i, ok := t.index[name]; ok {
		return i
	}
	return -1
}

// Width is the number of header columns.
func (t *sheetTable) Width() int {
	return len(t.Columns)
}

func cell(row []string, idx int) string {
	if idx >= 0 && idx < len(row) {
		return row[idx]
	}
	return ""
}
