package patch

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/loader"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// ReferenceSheet holds the promoter corrections inside the reference workbook.
const ReferenceSheet = "Parche Promotores"

// first data row of ReferenceSheet (0-based); rows above are titles
const referenceFirstRow = 2

// FromReference reads the promoter corrections of the reference workbook
// (column A original, column B correct). A workbook without the sheet yields an
// empty Set and a warning.
func FromReference(path string, logger *zap.Logger) (Set, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	wb, err := loader.OpenWorkbook(path)
	if err != nil {
		return Set{}, err
	}
	sheet, _, err := wb.Resolve(ReferenceSheet)
	if err != nil {
		if errors.Is(err, domain.ErrMissingSource) {
			logger.Warn("reference workbook has no promoter patch sheet", zap.String("path", path), zap.String("sheet", ReferenceSheet))
			return Set{}, nil
		}
		return Set{}, err
	}
	rows, err := wb.Rows(sheet)
	if err != nil {
		return Set{}, err
	}

	var set Set
	for i := referenceFirstRow; i < len(rows); i++ {
		row := rows[i]
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		c := Correction{Original: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			c.Correct = strings.TrimSpace(row[1])
		}
		set.Promoters = append(set.Promoters, c)
	}
	logger.Info("promoter patch loaded", zap.String("path", path), zap.Int("corrections", len(set.Promoters)))
	return set, nil
}

type fileTypo struct {
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
}

// LoadFile reads a patch file (yaml, json or toml) with the keys promoters,
// typos and groups.
func LoadFile(path string) (Set, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Set{}, fmt.Errorf("read patch file %s: %w", path, err)
	}

	var set Set
	if err := v.UnmarshalKey("promoters", &set.Promoters); err != nil {
		return Set{}, fmt.Errorf("patch promoters: %w", err)
	}
	var typos []fileTypo
	if err := v.UnmarshalKey("typos", &typos); err != nil {
		return Set{}, fmt.Errorf("patch typos: %w", err)
	}
	for _, t := range typos {
		re, err := regexp.Compile(t.Pattern)
		if err != nil {
			return Set{}, fmt.Errorf("patch typo %q: %w", t.Pattern, err)
		}
		set.Typos = append(set.Typos, Typo{Pattern: re, Replacement: t.Replacement})
	}
	if err := v.UnmarshalKey("groups", &set.Groups); err != nil {
		return Set{}, fmt.Errorf("patch groups: %w", err)
	}
	return Set{}.Merge(set), nil
}
