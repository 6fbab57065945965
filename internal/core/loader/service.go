package loader

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// Service loads the four portfolio sources into typed records.
type Service interface {
	LoadAging(path string) (*domain.AgingTable, error)
	LoadStatus(path string) ([]domain.StatusRecord, error)
	LoadCollections(path string) ([]domain.CollectionRecord, error)
	LoadSavings(path string) ([]domain.SavingsRecord, error)
	LoadAll(paths Paths) (*domain.Sources, error)
}

// Paths are the resolved input files of one run.
type Paths struct {
	Aging       string
	Status      string
	Collections string
	Savings     string
}

// Options are the sheet names and 0-based header rows of each source.
type Options struct {
	// AgingSheet empty means auto-detect.
	AgingSheet           string
	StatusSheet          string
	StatusHeaderRows     []int
	CollectionsSheet     string
	CollectionsHeaderRow int
	SavingsSheet         string
	SavingsHeaderRow     int
}

// DefaultOptions matches the layout of the core-system exports.
func DefaultOptions() Options {
	return Options{
		StatusSheet:          domain.DefaultStatusSheet,
		StatusHeaderRows:     domain.DefaultStatusHeaderRows(),
		CollectionsSheet:     domain.DefaultCollectionsSheet,
		CollectionsHeaderRow: domain.DefaultCollectionsHeaderRow,
		SavingsSheet:         domain.DefaultSavingsSheet,
		SavingsHeaderRow:     domain.DefaultSavingsHeaderRow,
	}
}

type service struct {
	logger *zap.Logger
	opts   Options
}

// NewService creates a loader. A nil logger discards output.
func NewService(logger *zap.Logger, opts Options) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.StatusHeaderRows) == 0 {
		opts.StatusHeaderRows = DefaultOptions().StatusHeaderRows
	}
	return &service{logger: logger, opts: opts}
}

// LoadAll loads every source; the first failure aborts.
func (svc *service) LoadAll(paths Paths) (*domain.Sources, error) {
	aging, err := svc.LoadAging(paths.Aging)
	if err != nil {
		return nil, fmt.Errorf("load aging: %w", err)
	}
	status, err := svc.LoadStatus(paths.Status)
	if err != nil {
		return nil, fmt.Errorf("load status: %w", err)
	}
	collections, err := svc.LoadCollections(paths.Collections)
	if err != nil {
		return nil, fmt.Errorf("load collections: %w", err)
	}
	savings, err := svc.LoadSavings(paths.Savings)
	if err != nil {
		return nil, fmt.Errorf("load savings: %w", err)
	}
	return &domain.Sources{Aging: aging, Status: status, Collections: collections, Savings: savings}, nil
}

// openSheet opens a workbook, resolves the sheet and builds its table.
func (svc *service) openSheet(source, path, sheetName string, headerRows ...int) (*sheetTable, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	return svc.sheetTable(source, wb, sheetName, headerRows...)
}

func (svc *service) sheetTable(source string, wb *Workbook, sheetName string, headerRows ...int) (*sheetTable, error) {
	sheet, fuzzy, err := wb.Resolve(sheetName)
	if err != nil {
		return nil, err
	}
	if fuzzy {
		svc.logger.Warn("sheet matched by similarity",
			zap.String("source", source),
			zap.String("wanted", sheetName),
			zap.String("found", sheet))
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return nil, err
	}
	t, err := newSheetTable(rows, headerRows...)
	if err != nil {
		return nil, fmt.Errorf("%s sheet %q: %w", source, sheet, err)
	}
	svc.logShape(source, wb.Path, sheet, t)
	return t, nil
}

func (svc *service) logShape(source, path, sheet string, t *sheetTable) {
	preview := t.Columns
	if len(preview) > 10 {
		preview = preview[:10]
	}
	svc.logger.Info("source loaded",
		zap.String("source", source),
		zap.String("path", path),
		zap.String("sheet", sheet),
		zap.Int("rows", len(t.Rows)),
		zap.Int("columns", t.Width()),
		zap.Strings("first_columns", preview))
}

func (svc *service) bind(schema Schema, t *sheetTable) (binding, error) {
	b, err := schema.bind(t)
	if err != nil {
		return b, err
	}
	for _, d := range b.drift {
		svc.logger.Warn("positional column header differs from expected", zap.String("source", schema.Source), zap.String("detail", d))
	}
	return b, nil
}
