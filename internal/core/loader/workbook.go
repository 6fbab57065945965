package loader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/schollz/closestmatch"
	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// Workbook is a read-only, fully loaded spreadsheet: sheet names in file order
// and the raw cell text of every row. Numeric cells keep their stored value
// (dates stay as serials), not the displayed format.
type Workbook struct {
	Path   string
	sheets []string
	rows   map[string][][]string
}

// OpenWorkbook reads .xlsx/.xlsm with excelize, legacy .xls with xlsReader and
// .csv as a single sheet named after the file.
func OpenWorkbook(path string) (*Workbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewMissingSourceError(filepath.Base(path), path, "", err)
	}
	return ReadWorkbook(bytes.NewReader(data), path)
}

// ReadWorkbook loads a workbook from memory; name only drives format detection.
func ReadWorkbook(r io.Reader, name string) (*Workbook, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		return readCSV(data, name)
	case ".xls":
		wb, errXLS := readXLS(data, name)
		if errXLS == nil {
			return wb, nil
		}
		// maybe an xlsx saved with the .xls extension
		if wb, errX := readXLSX(data, name); errX == nil {
			return wb, nil
		}
		return nil, fmt.Errorf("open %s: %w", name, errXLS)
	default:
		wb, errX := readXLSX(data, name)
		if errX == nil {
			return wb, nil
		}
		if wb, errXLS := readXLS(data, name); errXLS == nil {
			return wb, nil
		}
		return nil, fmt.Errorf("open %s: %w", name, errX)
	}
}

func readXLSX(data []byte, name string) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wb := &Workbook{Path: name, rows: map[string][][]string{}}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}
		wb.sheets = append(wb.sheets, sheet)
		wb.rows[sheet] = rows
	}
	return wb, nil
}

func readXLS(data []byte, name string) (*Workbook, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	sheets := workbook.GetSheets()
	if len(sheets) == 0 {
		return nil, errors.New("the .xls file has no sheets")
	}

	wb := &Workbook{Path: name, rows: map[string][][]string{}}
	for i := range sheets {
		sheet := &sheets[i]
		var rows [][]string
		for _, row := range sheet.GetRows() {
			var cells []string
			for _, cell := range row.GetCols() {
				cells = append(cells, cell.GetString())
			}
			rows = append(rows, cells)
		}
		wb.sheets = append(wb.sheets, sheet.GetName())
		wb.rows[sheet.GetName()] = rows
	}
	return wb, nil
}

func readCSV(data []byte, name string) (*Workbook, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	var reader io.Reader = bytes.NewReader(data)
	if !utf8.Valid(data) {
		reader = transform.NewReader(reader, charmap.ISO8859_1.NewDecoder())
	}

	r := csv.NewReader(reader)
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", name, err)
	}

	sheet := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
	return &Workbook{Path: name, sheets: []string{sheet}, rows: map[string][][]string{sheet: rows}}, nil
}

// sniffDelimiter picks the most frequent separator of the first line.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ',', 0
	for _, d := range []rune{';', ',', '\t', '|'} {
		if n := bytes.Count(line, []byte(string(d))); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// Sheets lists the sheet names in file order.
func (w *Workbook) Sheets() []string {
	return w.sheets
}

// Rows returns the raw rows of a sheet by exact name.
func (w *Workbook) Rows(sheet string) ([][]string, error) {
	rows, ok := w.rows[sheet]
	if !ok {
		return nil, domain.NewMissingSourceError(filepath.Base(w.Path), w.Path, sheet, nil)
	}
	return rows, nil
}

// Resolve finds a sheet by name: exact, then accent/case-insensitive, then the
// closest name sharing at least one word. fuzzy is true for the last case.
func (w *Workbook) Resolve(name string) (sheet string, fuzzy bool, err error) {
	if _, ok := w.rows[name]; ok {
		return name, false, nil
	}

	want := normalize.Key(name)
	byKey := make(map[string]string, len(w.sheets))
	keys := make([]string, 0, len(w.sheets))
	for _, s := range w.sheets {
		k := normalize.Key(s)
		if k == want {
			return s, false, nil
		}
		if _, dup := byKey[k]; !dup && k != "" {
			byKey[k] = s
			keys = append(keys, k)
		}
	}

	if len(keys) > 0 && want != "" {
		// closestmatch indexes lowercased text; the returned key keeps its case
		cm := closestmatch.New(keys, []int{2, 3, 4})
		if match := cm.Closest(strings.ToLower(want)); match != "" && sharesWord(match, want) {
			return byKey[match], true, nil
		}
	}
	return "", false, domain.NewMissingSourceError(filepath.Base(w.Path), w.Path, name, nil)
}

func sharesWord(a, b string) bool {
	words := map[string]bool{}
	for _, w := range strings.Fields(a) {
		if len(w) > 2 {
			words[w] = true
		}
	}
	for _, w := range strings.Fields(b) {
		if words[w] {
			return true
		}
	}
	return false
}
