package cartera

import (
	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// situation codes of the core system, folded with normalize.Key
var situationStatus = map[string]domain.Status{
	"ENTREGADO":              domain.StatusVigente,
	"AUTORIZADO POR CARTERA": domain.StatusVigente,
	"LIQUIDADO":              domain.StatusDesertorSinMora,
}

// Classify maps a credit situation to a portfolio status. A blank situation is
// Vigente. Any other unknown value is also Vigente and reported through the
// second result so the caller can warn about it.
func Classify(situation string) (domain.Status, bool) {
	key := normalize.Key(situation)
	if key == "" {
		return domain.StatusVigente, false
	}
	if st, ok := situationStatus[key]; ok {
		return st, false
	}
	return domain.StatusVigente, true
}
