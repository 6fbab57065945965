package normalize

import (
	"strconv"
	"strings"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// Number parses a numeric cell. Raw workbook values ("1234.5", "3E-2") parse
// directly; formatted text goes through ParseMXNumber. Blank or non-numeric
// cells are null.
func Number(raw string) domain.Value {
	s := strings.TrimSpace(raw)
	if s == "" {
		return domain.Null
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if v := domain.Num(f); v.Finite() {
			return v
		}
		return domain.Null
	}
	f, ok := ParseMXNumber(s)
	if !ok {
		return domain.Null
	}
	return domain.Num(f)
}

// ParseMXNumber: heuristic for peso amounts as exported by the core system
// ("$ 1,234.50", "(1,234.50)", "-12.5%", "1.234,50").
func ParseMXNumber(val string) (float64, bool) {
	s := strings.TrimSpace(val)
	s = strings.ReplaceAll(s, "MXN", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	s = strings.TrimSuffix(s, "%")
	if s == "" {
		return 0, false
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = !neg
		s = strings.TrimPrefix(s, "-")
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		// both present: the rightmost one is the decimal separator
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if thousandsGrouped(s, ',') {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ",", ".")
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	for _, r := range s {
		if (r < '0' || r > '9') && r != '.' {
			return 0, false
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}

// thousandsGrouped reports whether every group after the first sep has three digits.
func thousandsGrouped(s string, sep byte) bool {
	parts := strings.Split(s, string(sep))
	if len(parts) < 2 || parts[0] == "" || len(parts[0]) > 3 {
		return false
	}
	for _, p := range parts[1:] {
		if len(p) != 3 {
			return false
		}
	}
	return true
}
