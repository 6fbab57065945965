package patch

import (
	"regexp"
	"strings"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// Correction replaces a promoter name that matches Original with Correct.
type Correction struct {
	Original string `mapstructure:"original"`
	Correct  string `mapstructure:"correct"`
}

// Typo is a substring fix applied to manager and promoter names.
type Typo struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// Override forces the names of one group. Empty fields are left alone.
type Override struct {
	Manager  string `mapstructure:"manager"`
	Promoter string `mapstructure:"promoter"`
}

// Set is the static reference data of one run. It is never mutated after
// construction; Merge returns a new Set.
type Set struct {
	Promoters []Correction
	Typos     []Typo
	Groups    map[string]Override
}

// Defaults are the corrections kept in the reference workbook's history.
func Defaults() Set {
	return Set{
		Promoters: []Correction{
			{Original: "Ponce Galindo", Correct: "Contreras Martinez Jose Luis"},
		},
		Groups: map[string]Override{
			"000184": {Manager: "Garcia Herrera Jonathan"},
			"000216": {Manager: "Olivares Morales Josue Edgar"},
		},
	}
}

// Merge returns s extended with o. Entries of o are tried first and its group
// overrides replace those of s.
func (s Set) Merge(o Set) Set {
	out := Set{
		Promoters: append(append([]Correction(nil), o.Promoters...), s.Promoters...),
		Typos:     append(append([]Typo(nil), s.Typos...), o.Typos...),
		Groups:    make(map[string]Override, len(s.Groups)+len(o.Groups)),
	}
	for id, ov := range s.Groups {
		out.Groups[normalize.GroupID(id)] = ov
	}
	for id, ov := range o.Groups {
		out.Groups[normalize.GroupID(id)] = ov
	}
	return out
}

// Promoter returns the canonical promoter name. An exact match wins; otherwise
// the first correction whose folded original is contained in the folded name
// (case and accents ignored) replaces the whole name.
func (s Set) Promoter(name string) string {
	if strings.TrimSpace(name) == "" {
		return name
	}
	for _, c := range s.Promoters {
		if c.Correct != "" && c.Original == name {
			return c.Correct
		}
	}
	key := normalize.Key(name)
	for _, c := range s.Promoters {
		orig := normalize.Key(c.Original)
		if c.Correct == "" || orig == "" {
			continue
		}
		if key == orig || strings.Contains(key, orig) {
			return c.Correct
		}
	}
	return name
}

func (s Set) fixTypos(name string) string {
	for _, t := range s.Typos {
		if t.Pattern != nil {
			name = t.Pattern.ReplaceAllString(name, t.Replacement)
		}
	}
	return name
}

// ApplyAging returns a copy of the records with typo fixes and per-group
// overrides applied to the manager and promoter names.
func (s Set) ApplyAging(records []domain.AgingRecord) []domain.AgingRecord {
	out := make([]domain.AgingRecord, len(records))
	for i, r := range records {
		r.Manager = s.fixTypos(r.Manager)
		r.Promoter = s.fixTypos(r.Promoter)
		if ov, ok := s.Groups[r.GroupID]; ok {
			if ov.Manager != "" {
				r.Manager = ov.Manager
			}
			if ov.Promoter != "" {
				r.Promoter = ov.Promoter
			}
		}
		out[i] = r
	}
	return out
}

// Len is the number of entries of every kind.
func (s Set) Len() int {
	return len(s.Promoters) + len(s.Typos) + len(s.Groups)
}
