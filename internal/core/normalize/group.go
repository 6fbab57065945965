package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// GroupIDWidth is the width of the canonical group identifier.
const GroupIDWidth = 6

// GroupID returns the join key for a group-code cell: trimmed, integral
// numbers without a decimal part, left-padded with zeros to six characters.
// The result is never converted back to a number.
func GroupID(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) && f >= 0 && f < 1e15 {
		s = strconv.FormatInt(int64(f), 10)
	}
	if len(s) < GroupIDWidth {
		s = strings.Repeat("0", GroupIDWidth-len(s)) + s
	}
	return s
}

// Cycle parses a cycle counter. Unparseable values are null.
func Cycle(raw string) domain.Value {
	return Number(raw)
}

// DepositCode builds the bank deposit reference: "0", the six-digit group id
// and the cycle as a two-digit integer ("00" when there is no cycle).
func DepositCode(groupID string, cycle domain.Value) string {
	part := "00"
	if cycle.Finite() {
		part = fmt.Sprintf("%02d", int64(cycle.Float))
	}
	return "0" + GroupID(groupID) + part
}
