package pipeline

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/config"
	"github.com/uzzielvz/cartera-generator/internal/core/cartera"
	"github.com/uzzielvz/cartera-generator/internal/core/discover"
	"github.com/uzzielvz/cartera-generator/internal/core/loader"
	"github.com/uzzielvz/cartera-generator/internal/core/patch"
	"github.com/uzzielvz/cartera-generator/internal/core/report"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// Result is what one batch run produced.
type Result struct {
	RunID      string
	Inputs     loader.Paths
	OutputPath string
	Cartera    *domain.Table
	Mora       *domain.Table
	// Comparison is nil when validation was skipped or failed.
	Comparison *report.Comparison
}

type Pipeline struct {
	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time
}

// New wires a pipeline. now is the clock of the run and defaults to time.Now.
func New(cfg *config.Config, logger *zap.Logger, now func() time.Time) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &Pipeline{cfg: cfg, logger: logger, now: now}
}

// Run discovers the inputs, builds CARTERA and MORA and writes the workbook.
// Any structural error aborts before the output file is created.
func (p *Pipeline) Run() (*Result, error) {
	runID := uuid.NewString()
	log := p.logger.With(zap.String("run_id", runID))
	started := p.now()
	log.Info("run started", zap.String("input_dir", p.cfg.Input.Dir))

	paths, err := discover.Inputs(p.cfg.Input.Dir, patterns(p.cfg.Input.Patterns), log)
	if err != nil {
		return nil, fmt.Errorf("discover inputs: %w", err)
	}
	log.Info("inputs resolved",
		zap.String("aging", paths.Aging),
		zap.String("status", paths.Status),
		zap.String("collections", paths.Collections),
		zap.String("savings", paths.Savings),
	)

	patches, err := p.patches(log)
	if err != nil {
		return nil, err
	}

	src, err := loader.NewService(log, loaderOptions(p.cfg.Sheets)).LoadAll(paths)
	if err != nil {
		return nil, err
	}
	src.Aging.Records = patches.ApplyAging(src.Aging.Records)

	builder := cartera.NewService(log, patches, cartera.Options{
		Now:           func() time.Time { return started },
		MoraThreshold: p.cfg.Rules.MoraThreshold,
	})
	carteraTable, rows, err := builder.GenerateCartera(src)
	if err != nil {
		return nil, err
	}
	moraTable, err := builder.GenerateMora(rows)
	if err != nil {
		return nil, err
	}

	reports := report.NewService(log, report.Options{CutoffDate: started})
	if err := reports.Write(p.cfg.Output.Path, carteraTable, moraTable); err != nil {
		return nil, err
	}

	res := &Result{
		RunID:      runID,
		Inputs:     paths,
		OutputPath: p.cfg.Output.Path,
		Cartera:    carteraTable,
		Mora:       moraTable,
	}
	if p.cfg.Reference.Validate {
		res.Comparison = validate(log, reports, p.cfg.Output.Path, p.cfg.Reference.Path)
	}

	log.Info("run finished",
		zap.Int("cartera_rows", len(carteraTable.Rows)),
		zap.Int("mora_rows", len(moraTable.Rows)),
		zap.Duration("elapsed", p.now().Sub(started)),
	)
	return res, nil
}

// Validate compares an existing output with the configured reference.
func (p *Pipeline) Validate(outputPath string) (*report.Comparison, error) {
	log := p.logger.With(zap.String("run_id", uuid.NewString()))
	return report.NewService(log, report.Options{}).Validate(outputPath, p.cfg.Reference.Path)
}

// validate is best effort: a missing reference or unreadable workbook is logged, never fatal.
func validate(log *zap.Logger, reports report.Service, output, reference string) *report.Comparison {
	cmp, err := reports.Validate(output, reference)
	switch {
	case errors.Is(err, report.ErrNoReference):
		log.Info("validation skipped: no reference workbook", zap.String("reference", reference))
		return nil
	case err != nil:
		log.Warn("validation failed", zap.Error(err))
		return nil
	}
	return cmp
}

// patches merges the built-in corrections, the reference workbook sheet and
// the optional patch file, in that order of increasing precedence.
func (p *Pipeline) patches(log *zap.Logger) (patch.Set, error) {
	set := patch.Defaults()

	if ref := p.cfg.Reference.Path; ref != "" {
		if _, err := os.Stat(ref); err != nil {
			log.Warn("reference workbook not found; promoter patch sheet skipped", zap.String("reference", ref))
		} else {
			fromRef, err := patch.FromReference(ref, log)
			if err != nil {
				return patch.Set{}, fmt.Errorf("read reference patches: %w", err)
			}
			set = set.Merge(fromRef)
		}
	}

	if file := p.cfg.Rules.PatchesFile; file != "" {
		fromFile, err := patch.LoadFile(file)
		if err != nil {
			return patch.Set{}, err
		}
		set = set.Merge(fromFile)
	}
	log.Info("patches ready", zap.Int("entries", set.Len()))
	return set, nil
}

func patterns(c config.PatternsConfig) discover.Patterns {
	return discover.Patterns{
		Aging:       c.Aging,
		Status:      c.Status,
		Collections: c.Collections,
		Savings:     c.Savings,
	}
}

// loaderOptions maps the sheet settings onto the source loaders.
func loaderOptions(c config.SheetsConfig) loader.Options {
	return loader.Options{
		AgingSheet:           c.Aging,
		StatusSheet:          c.Status,
		StatusHeaderRows:     c.StatusHeaderRows,
		CollectionsSheet:     c.Collections,
		CollectionsHeaderRow: c.CollectionsHeaderRow,
		SavingsSheet:         c.Savings,
		SavingsHeaderRow:     c.SavingsHeaderRow,
	}
}
