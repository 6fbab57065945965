package report

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/loader"
	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// ErrNoReference means there is no reference workbook to compare with.
var ErrNoReference = errors.New("reference workbook not found")

const (
	// rows above the header row in both workbooks
	skipRows     = titleRows
	groupIDCol   = 2
	sampleLimit  = 5
	compareSheet = "CARTERA"
)

var groupIDPattern = regexp.MustCompile(`^\d{6}$`)

// comparedColumns are the CARTERA positions checked against the reference (A-F, M, O-V).
var comparedColumns = []int{0, 1, 2, 3, 4, 5, 12, 14, 15, 16, 17, 18, 19, 20, 21}

// Comparison is the outcome of checking a generated CARTERA against the reference.
type Comparison struct {
	OutputRows    int
	ReferenceRows int
	Common        int
	OnlyOutput    []string
	OnlyReference []string
	Columns       []ColumnDiff
}

// Differences is the total of differing cells across the compared columns.
func (c *Comparison) Differences() int {
	n := 0
	for _, col := range c.Columns {
		n += col.Differences
	}
	return n
}

type ColumnDiff struct {
	Index       int
	Name        string
	Differences int
	Samples     []Difference
}

type Difference struct {
	GroupID   string
	Output    string
	Reference string
	// Delta is set when both sides are numeric.
	Delta *decimal.Decimal
}

// Validate compares the CARTERA sheet of outputPath against referencePath by
// group id. A missing reference is ErrNoReference, which callers skip.
func (svc *service) Validate(outputPath, referencePath string) (*Comparison, error) {
	if referencePath == "" {
		return nil, ErrNoReference
	}
	if _, err := os.Stat(referencePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoReference, referencePath)
		}
		return nil, fmt.Errorf("stat reference: %w", err)
	}

	out, err := readCartera(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read output: %w", err)
	}
	ref, err := readCartera(referencePath)
	if err != nil {
		return nil, fmt.Errorf("read reference: %w", err)
	}

	cmp := compare(out, ref, svc.opts.Tolerance)
	svc.logger.Info("validation finished",
		zap.Int("output_ids", cmp.OutputRows),
		zap.Int("reference_ids", cmp.ReferenceRows),
		zap.Int("common_ids", cmp.Common),
		zap.Int("only_output", len(cmp.OnlyOutput)),
		zap.Int("only_reference", len(cmp.OnlyReference)),
		zap.Int("differences", cmp.Differences()),
	)
	for _, c := range cmp.Columns {
		if c.Differences == 0 {
			continue
		}
		fields := []zap.Field{zap.String("column", c.Name), zap.Int("differences", c.Differences)}
		for i, s := range c.Samples {
			fields = append(fields, zap.String(fmt.Sprintf("sample_%d", i), fmt.Sprintf("%s: %q vs %q", s.GroupID, s.Output, s.Reference)))
		}
		svc.logger.Warn("column differs from reference", fields...)
	}
	return cmp, nil
}

// keyedRows holds data rows by group id in sheet order; a repeated id keeps the first.
type keyedRows struct {
	order []string
	byID  map[string][]string
}

func readCartera(path string) (*keyedRows, error) {
	wb, err := loader.OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	sheet, _, err := wb.Resolve(compareSheet)
	if err != nil {
		return nil, err
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}

	kr := &keyedRows{byID: map[string][]string{}}
	for i := skipRows; i < len(rows); i++ {
		row := rows[i]
		if len(row) <= groupIDCol || strings.TrimSpace(row[groupIDCol]) == "" {
			continue
		}
		id := normalize.GroupID(row[groupIDCol])
		if !groupIDPattern.MatchString(id) {
			continue
		}
		if _, seen := kr.byID[id]; seen {
			continue
		}
		kr.order = append(kr.order, id)
		kr.byID[id] = row
	}
	return kr, nil
}

func compare(out, ref *keyedRows, tol decimal.Decimal) *Comparison {
	cmp := &Comparison{OutputRows: len(out.order), ReferenceRows: len(ref.order)}

	var common []string
	for _, id := range out.order {
		if _, ok := ref.byID[id]; ok {
			common = append(common, id)
		} else {
			cmp.OnlyOutput = append(cmp.OnlyOutput, id)
		}
	}
	for _, id := range ref.order {
		if _, ok := out.byID[id]; !ok {
			cmp.OnlyReference = append(cmp.OnlyReference, id)
		}
	}
	sort.Strings(common)
	sort.Strings(cmp.OnlyOutput)
	sort.Strings(cmp.OnlyReference)
	cmp.Common = len(common)

	for _, col := range comparedColumns {
		cd := ColumnDiff{Index: col, Name: domain.PortfolioColumns[col]}
		for _, id := range common {
			o, r := cellAt(out.byID[id], col), cellAt(ref.byID[id], col)
			d, differs := diff(o, r, tol)
			if !differs {
				continue
			}
			cd.Differences++
			if len(cd.Samples) < sampleLimit {
				cd.Samples = append(cd.Samples, Difference{GroupID: id, Output: o, Reference: r, Delta: d})
			}
		}
		cmp.Columns = append(cmp.Columns, cd)
	}
	return cmp
}

// diff compares two cells: numerically within tol when both parse, as trimmed
// text otherwise. Two blanks are equal.
func diff(o, r string, tol decimal.Decimal) (*decimal.Decimal, bool) {
	o, r = strings.TrimSpace(o), strings.TrimSpace(r)
	if o == r {
		return nil, false
	}
	if o == "" || r == "" {
		return nil, true
	}
	od, ok1 := parseDecimal(o)
	rd, ok2 := parseDecimal(r)
	if !ok1 || !ok2 {
		return nil, true
	}
	d := od.Sub(rd).Abs()
	return &d, d.GreaterThan(tol)
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	if d, err := decimal.NewFromString(s); err == nil {
		return d, true
	}
	v := normalize.Number(s)
	if !v.Finite() {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(v.Float), true
}

func cellAt(row []string, idx int) string {
	if idx < len(row) {
		return row[idx]
	}
	return ""
}
