package normalize

import (
	"fmt"
	"strings"
)

// headerPlaceholder marks a header level with no caption (blank merged cell,
// or the "Unnamed: 3_level_0" labels some exporters write).
const headerPlaceholder = "Unnamed"

type columnRule func(string) string

// columnRules run in order over the joined label.
var columnRules = []columnRule{
	func(s string) string {
		s = strings.NewReplacer("\n", " ", "\r", " ").Replace(s)
		return strings.ToLower(strings.TrimSpace(s))
	},
	strings.NewReplacer(
		" ", "_",
		".", "",
		"/", "",
		"(", "",
		")", "",
		"%", "pct",
	).Replace,
	strings.NewReplacer(
		"á", "a",
		"é", "e",
		"í", "i",
		"ó", "o",
		"ú", "u",
		"ñ", "n",
	).Replace,
	func(s string) string {
		for strings.Contains(s, "__") {
			s = strings.ReplaceAll(s, "__", "_")
		}
		return s
	},
}

func isPlaceholder(level string) bool {
	level = strings.TrimSpace(level)
	return level == "" || strings.HasPrefix(level, headerPlaceholder)
}

// Column canonicalizes one header label. Several levels come from a multi-row
// header and are joined with "_" after dropping placeholders.
func Column(levels ...string) string {
	parts := make([]string, 0, len(levels))
	for _, l := range levels {
		if isPlaceholder(l) {
			continue
		}
		parts = append(parts, l)
	}
	name := strings.Join(parts, "_")
	for _, rule := range columnRules {
		name = rule(name)
	}
	return name
}

// Columns normalizes a header block (one slice per header row). Upper levels are
// forward-filled across blank cells, as a merged caption spans its children.
// Labels that end up empty are named unnamed_<index>.
func Columns(headers [][]string) []string {
	width := 0
	for _, row := range headers {
		if len(row) > width {
			width = len(row)
		}
	}

	// fresh[i] is true where some upper level starts a new caption; a fill never crosses it.
	fresh := make([]bool, width)
	filled := make([][]string, len(headers))
	for lvl, row := range headers {
		filled[lvl] = make([]string, width)
		last := ""
		for i := 0; i < width; i++ {
			cell := ""
			if i < len(row) {
				cell = strings.TrimSpace(row[i])
			}
			if fresh[i] {
				last = ""
			}
			if lvl < len(headers)-1 {
				if cell == "" {
					cell = last
				} else {
					last = cell
					fresh[i] = true
				}
			}
			filled[lvl][i] = cell
		}
	}

	out := make([]string, width)
	levels := make([]string, len(headers))
	for i := 0; i < width; i++ {
		for lvl := range filled {
			levels[lvl] = filled[lvl][i]
		}
		name := Column(levels...)
		if name == "" {
			name = fmt.Sprintf("unnamed_%d", i)
		}
		out[i] = name
	}
	return out
}
