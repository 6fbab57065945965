package loader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type sheetSpec struct {
	name string
	rows [][]any
}

// writeWorkbook saves an .xlsx with the given sheets in order and returns its path.
func writeWorkbook(t *testing.T, file string, sheets ...sheetSpec) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			if len(row) == 0 {
				continue
			}
			addr, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			row := row
			require.NoError(t, f.SetSheetRow(s.name, addr, &row))
		}
	}

	path := filepath.Join(t.TempDir(), file)
	require.NoError(t, f.SaveAs(path))
	return path
}

// wideRow places values at 0-based positions in a row of the given width;
// positions past the width are dropped.
func wideRow(width int, vals map[int]any) []any {
	row := make([]any, width)
	for i, v := range vals {
		if i < width {
			row[i] = v
		}
	}
	return row
}

func fillerRows(n int) [][]any {
	rows := make([][]any, n)
	for i := range rows {
		rows[i] = []any{"Reporte"}
	}
	return rows
}
