package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Structural errors. Both abort the run before any output is written.
var (
	ErrMissingSource = errors.New("missing source")
	ErrMissingColumn = errors.New("missing column")
)

// MissingSourceError reports an input file or sheet that could not be located.
type MissingSourceError struct {
	Source string
	Path   string
	Sheet  string
	Err    error
}

func (e *MissingSourceError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: missing source", e.Source)
	if e.Path != "" {
		fmt.Fprintf(&b, " %q", e.Path)
	}
	if e.Sheet != "" {
		fmt.Fprintf(&b, " (sheet %q)", e.Sheet)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MissingSourceError) Is(target error) bool {
	return target == ErrMissingSource
}

func (e *MissingSourceError) Unwrap() error {
	return e.Err
}

// MissingColumnError reports schema drift: a required source column or output column is absent.
type MissingColumnError struct {
	Table   string
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: missing columns [%s]", e.Table, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Is(target error) bool {
	return target == ErrMissingColumn
}

// NewMissingSourceError wraps err (may be nil) as a missing source.
func NewMissingSourceError(source, path, sheet string, err error) error {
	return &MissingSourceError{Source: source, Path: path, Sheet: sheet, Err: err}
}

// NewMissingColumnError builds an error for one or more absent columns.
func NewMissingColumnError(table string, columns ...string) error {
	return &MissingColumnError{Table: table, Columns: columns}
}
