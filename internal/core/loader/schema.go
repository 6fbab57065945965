package loader

import (
	"fmt"
	"strings"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// noPosition marks a field resolved by header name only.
const noPosition = -1

// Field maps one canonical column to its place in a source sheet. Aliases are
// normalized header names tried in order; Position is the 0-based fallback
// used when no alias is present, because several source headers are unstable
// across snapshots.
type Field struct {
	Name     string
	Aliases  []string
	Position int
	Optional bool
	// Expect is a fragment the header at Position should contain; a mismatch
	// is reported as drift but does not fail the load.
	Expect string
}

// Schema is the ordered column mapping of one source.
type Schema struct {
	Source string
	Fields []Field
}

// binding is a resolved schema: canonical name -> column position.
type binding struct {
	pos   map[string]int
	drift []string
}

func (b binding) has(name string) bool {
	_, ok := b.pos[name]
	return ok
}

func (b binding) get(row []string, name string) string {
	idx, ok := b.pos[name]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

// bind resolves every field against the table header. All missing required
// fields are reported together in one MissingColumnError.
func (s Schema) bind(t *sheetTable) (binding, error) {
	b := binding{pos: make(map[string]int, len(s.Fields))}
	var missing []string

	for _, f := range s.Fields {
		idx := -1
		for _, alias := range f.Aliases {
			if i := t.Col(alias); i >= 0 {
				idx = i
				break
			}
		}
		if idx < 0 && f.Position != noPosition && f.Position < t.Width() {
			idx = f.Position
			if f.Expect != "" && !strings.Contains(t.Columns[idx], f.Expect) {
				b.drift = append(b.drift, fmt.Sprintf("%s at column %d is %q", f.Name, idx+1, t.Columns[idx]))
			}
		}
		if idx < 0 {
			if !f.Optional {
				missing = append(missing, f.Name)
			}
			continue
		}
		b.pos[f.Name] = idx
	}

	if len(missing) > 0 {
		return b, domain.NewMissingColumnError(s.Source, missing...)
	}
	return b, nil
}
