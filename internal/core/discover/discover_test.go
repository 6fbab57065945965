package discover

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

func touch(t *testing.T, dir, name string, mtime time.Time) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
}

func TestInputs_NewestWins(t *testing.T) {
	dir := t.TempDir()
	old := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	recent := old.Add(72 * time.Hour)

	touch(t, dir, "ReportedeAntiguedaddeCarteraGrupal_01092025.xlsx", old)
	touch(t, dir, "ReportedeAntiguedaddeCarteraGrupal_30092025.xlsx", recent)
	touch(t, dir, "Situación de cartera 30092025.xlsx", old)
	touch(t, dir, "cobranza 30092025.xlsx", old)
	touch(t, dir, "~$Cobranza 30092025.xlsx", recent)
	touch(t, dir, "AHORROS.xlsx", old)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "AHORROS_old"), 0o755))

	paths, err := Inputs(dir, DefaultPatterns(), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "ReportedeAntiguedaddeCarteraGrupal_30092025.xlsx"), paths.Aging)
	assert.Equal(t, filepath.Join(dir, "Situación de cartera 30092025.xlsx"), paths.Status)
	assert.Equal(t, filepath.Join(dir, "cobranza 30092025.xlsx"), paths.Collections, "case-insensitive, lock file skipped")
	assert.Equal(t, filepath.Join(dir, "AHORROS.xlsx"), paths.Savings)
}

func TestInputs_MissingSource(t *testing.T) {
	dir := t.TempDir()
	now := time.Now()
	touch(t, dir, "ReportedeAntiguedad.xlsx", now)
	touch(t, dir, "Situacion de cartera.xlsx", now)
	touch(t, dir, "Cobranza.xlsx", now)

	_, err := Inputs(dir, DefaultPatterns(), nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingSource))

	var ms *domain.MissingSourceError
	require.ErrorAs(t, err, &ms)
	assert.Equal(t, "savings", ms.Source)
}

func TestInputs_MissingDirectory(t *testing.T) {
	_, err := Inputs(filepath.Join(t.TempDir(), "nope"), DefaultPatterns(), nil)
	assert.True(t, errors.Is(err, domain.ErrMissingSource))
}

func TestInputs_BadPattern(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "a.xlsx", time.Now())
	p := DefaultPatterns()
	p.Aging = "[a"
	_, err := Inputs(dir, p, nil)
	assert.Error(t, err)
}
