package discover

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/loader"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// Patterns are the file-name globs of the four sources, matched case-insensitively.
type Patterns struct {
	Aging       string `mapstructure:"aging"`
	Status      string `mapstructure:"status"`
	Collections string `mapstructure:"collections"`
	Savings     string `mapstructure:"savings"`
}

func DefaultPatterns() Patterns {
	return Patterns{
		Aging:       domain.DefaultAgingPattern,
		Status:      domain.DefaultStatusPattern,
		Collections: domain.DefaultCollectionsPattern,
		Savings:     domain.DefaultSavingsPattern,
	}
}

// Inputs resolves every pattern under dir. The newest match by modification
// time wins; a pattern with no match is a MissingSourceError.
func Inputs(dir string, p Patterns, logger *zap.Logger) (loader.Paths, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return loader.Paths{}, domain.NewMissingSourceError("input directory", dir, "", err)
	}

	var paths loader.Paths
	for _, s := range []struct {
		source  string
		pattern string
		dst     *string
	}{
		{"aging", p.Aging, &paths.Aging},
		{"status", p.Status, &paths.Status},
		{"collections", p.Collections, &paths.Collections},
		{"savings", p.Savings, &paths.Savings},
	} {
		path, candidates, err := newest(dir, entries, s.pattern)
		if err != nil {
			return loader.Paths{}, fmt.Errorf("pattern %q: %w", s.pattern, err)
		}
		if path == "" {
			return loader.Paths{}, domain.NewMissingSourceError(s.source, filepath.Join(dir, s.pattern), "", os.ErrNotExist)
		}
		if candidates > 1 {
			logger.Info("several files match; newest selected",
				zap.String("source", s.source),
				zap.Int("candidates", candidates),
				zap.String("path", path),
			)
		}
		*s.dst = path
	}
	return paths, nil
}

// newest returns the most recently modified regular file matching pattern.
// Office lock files (~$name) are ignored. Equal times prefer the later name.
func newest(dir string, entries []os.DirEntry, pattern string) (string, int, error) {
	pattern = strings.ToLower(pattern)
	var (
		best     string
		bestTime time.Time
		n        int
	)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		ok, err := filepath.Match(pattern, strings.ToLower(name))
		if err != nil {
			return "", 0, err
		}
		if !ok {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		n++
		mt := info.ModTime()
		if best == "" || mt.After(bestTime) || (mt.Equal(bestTime) && name > filepath.Base(best)) {
			best, bestTime = filepath.Join(dir, name), mt
		}
	}
	return best, n, nil
}
