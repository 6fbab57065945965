package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

type Service interface {
	Write(path string, cartera, mora *domain.Table) error
	Validate(outputPath, referencePath string) (*Comparison, error)
}

type Options struct {
	// CutoffDate is printed in the title block. Defaults to the write time.
	CutoffDate time.Time
	Tolerance  decimal.Decimal
}

func DefaultOptions() Options {
	return Options{Tolerance: decimal.RequireFromString("0.01")}
}

type service struct {
	logger *zap.Logger
	opts   Options
}

func NewService(logger *zap.Logger, opts Options) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Tolerance.IsZero() {
		opts.Tolerance = DefaultOptions().Tolerance
	}
	return &service{logger: logger, opts: opts}
}

// ---------------------- writer ----------------------

// Write renders CARTERA and MORA into a new workbook at path. The file is only
// created once both sheets rendered.
func (svc *service) Write(path string, cartera, mora *domain.Table) error {
	if cartera == nil || mora == nil {
		return fmt.Errorf("write %s: both tables are required", path)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", cartera.Name); err != nil {
		return fmt.Errorf("rename sheet %s: %w", cartera.Name, err)
	}
	if _, err := f.NewSheet(mora.Name); err != nil {
		return fmt.Errorf("create sheet %s: %w", mora.Name, err)
	}

	sw := &sheetWriter{f: f, styles: map[styleKey]int{}}
	cutoff := svc.opts.CutoffDate
	if cutoff.IsZero() {
		cutoff = time.Now()
	}
	for _, s := range []struct {
		table  *domain.Table
		layout layout
	}{{cartera, carteraLayout}, {mora, moraLayout}} {
		if err := sw.render(s.table, s.layout, cutoff); err != nil {
			return fmt.Errorf("render %s: %w", s.table.Name, err)
		}
	}
	f.SetActiveSheet(0)

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	svc.logger.Info("output written",
		zap.String("path", path),
		zap.Int("cartera_rows", len(cartera.Rows)),
		zap.Int("mora_rows", len(mora.Rows)),
		zap.String("monto_del_credito", ColumnTotal(cartera, "monto_del_credito").StringFixed(2)),
		zap.String("cartera_vencida_total", ColumnTotal(cartera, "cartera_vencida_total").StringFixed(2)),
	)
	return nil
}

// ColumnTotal sums the numeric cells of a column; blanks and text are skipped.
func ColumnTotal(t *domain.Table, column string) decimal.Decimal {
	total := decimal.Zero
	idx := t.Index(column)
	if idx < 0 {
		return total
	}
	for _, row := range t.Rows {
		switch v := row[idx].(type) {
		case float64:
			total = total.Add(decimal.NewFromFloat(v))
		case int64:
			total = total.Add(decimal.NewFromInt(v))
		}
	}
	return total
}

type styleKey struct {
	numFmt    string
	highlight bool
	header    bool
}

type sheetWriter struct {
	f      *excelize.File
	styles map[styleKey]int
}

func (sw *sheetWriter) style(k styleKey) (int, error) {
	if id, ok := sw.styles[k]; ok {
		return id, nil
	}
	s := &excelize.Style{}
	if k.numFmt != "" {
		nf := k.numFmt
		s.CustomNumFmt = &nf
	}
	if k.highlight {
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{highlightColor}, Pattern: 1}
	}
	if k.header {
		s.Font = &excelize.Font{Bold: true}
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1}
		s.Alignment = &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
		s.Border = []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		}
	}
	id, err := sw.f.NewStyle(s)
	if err != nil {
		return 0, err
	}
	sw.styles[k] = id
	return id, nil
}

func (sw *sheetWriter) render(t *domain.Table, l layout, cutoff time.Time) error {
	sheet := t.Name
	lastCol, err := excelize.ColumnNumberToName(len(t.Columns))
	if err != nil {
		return err
	}

	// title block
	title := []struct {
		cell  string
		value any
	}{
		{"A1", l.title},
		{"A2", "Fecha de corte: " + cutoff.Format("02/01/2006")},
		{"A3", fmt.Sprintf("Grupos: %d", len(t.Rows))},
	}
	for _, c := range title {
		if err := sw.f.SetCellValue(sheet, c.cell, c.value); err != nil {
			return err
		}
	}

	header := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = label(c)
	}
	if err := sw.f.SetSheetRow(sheet, fmt.Sprintf("A%d", headerRow), &header); err != nil {
		return err
	}
	hs, err := sw.style(styleKey{header: true})
	if err != nil {
		return err
	}
	if err := sw.f.SetCellStyle(sheet, fmt.Sprintf("A%d", headerRow), fmt.Sprintf("%s%d", lastCol, headerRow), hs); err != nil {
		return err
	}

	for i, row := range t.Rows {
		r := row
		if err := sw.f.SetSheetRow(sheet, fmt.Sprintf("A%d", firstDataRow+i), &r); err != nil {
			return err
		}
	}

	lastData := firstDataRow + len(t.Rows) - 1
	totalsRow := lastData + 1
	if len(t.Rows) > 0 {
		if err := sw.totals(t, l, lastData, totalsRow); err != nil {
			return err
		}
	}
	if err := sw.formats(t, l, totalsRow); err != nil {
		return err
	}

	for col, w := range l.widths {
		if err := sw.f.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}

	// an empty table cannot carry an Excel table object
	if len(t.Rows) > 0 {
		stripes := true
		if err := sw.f.AddTable(sheet, &excelize.Table{
			Range:          fmt.Sprintf("A%d:%s%d", headerRow, lastCol, lastData),
			Name:           l.tableName,
			StyleName:      tableStyle,
			ShowRowStripes: &stripes,
		}); err != nil {
			return fmt.Errorf("add table %s: %w", l.tableName, err)
		}
	}

	return sw.f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      headerRow,
		TopLeftCell: freezeCell,
		ActivePane:  "bottomLeft",
	})
}

// totals writes the label and the SUBTOTAL formulas below the data.
func (sw *sheetWriter) totals(t *domain.Table, l layout, lastData, totalsRow int) error {
	sheet := t.Name
	if err := sw.f.SetCellValue(sheet, fmt.Sprintf("A%d", totalsRow), totalsLabel); err != nil {
		return err
	}
	for _, c := range l.totals {
		idx := t.Index(c)
		if idx < 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return err
		}
		formula := fmt.Sprintf("SUBTOTAL(%d,%s%d:%s%d)", subtotalSumParam, col, firstDataRow, col, lastData)
		if err := sw.f.SetCellFormula(sheet, fmt.Sprintf("%s%d", col, totalsRow), formula); err != nil {
			return err
		}
	}
	return nil
}

// formats styles each formatted column from the first data row through the totals row.
func (sw *sheetWriter) formats(t *domain.Table, l layout, totalsRow int) error {
	sheet := t.Name
	for idx, c := range t.Columns {
		k := styleKey{numFmt: l.formats[c], highlight: l.highlighted(c)}
		if k == (styleKey{}) {
			continue
		}
		id, err := sw.style(k)
		if err != nil {
			return err
		}
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return err
		}
		last := totalsRow
		if len(t.Rows) == 0 {
			last = firstDataRow
		}
		if err := sw.f.SetCellStyle(sheet, fmt.Sprintf("%s%d", col, firstDataRow), fmt.Sprintf("%s%d", col, last), id); err != nil {
			return err
		}
	}
	return nil
}

func label(column string) string {
	if l, ok := domain.ColumnLabels[column]; ok {
		return l
	}
	return column
}
