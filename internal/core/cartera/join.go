package cartera

import (
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// joined is one aging record with its matches in the secondary sources.
// A missing match is the zero record: every Value in it is null.
type joined struct {
	aging       domain.AgingRecord
	status      domain.StatusRecord
	collections domain.CollectionRecord
	savings     domain.SavingsRecord
	hasStatus   bool
	hasColl     bool
	hasSavings  bool
}

// indexByGroup keys records by group id. A repeated id keeps the first row.
func indexByGroup[T any](records []T, id func(T) string) (map[string]T, int) {
	idx := make(map[string]T, len(records))
	dups := 0
	for _, r := range records {
		k := id(r)
		if _, seen := idx[k]; seen {
			dups++
			continue
		}
		idx[k] = r
	}
	return idx, dups
}

type joinStats struct {
	statusMiss, collectionsMiss, savingsMiss int
}

// leftJoin attaches Status, Collections and Savings to every aging record.
// Aging decides which rows exist; nothing is dropped.
func (svc *service) leftJoin(src *domain.Sources) ([]joined, joinStats) {
	status, sd := indexByGroup(src.Status, func(r domain.StatusRecord) string { return r.GroupID })
	coll, cd := indexByGroup(src.Collections, func(r domain.CollectionRecord) string { return r.GroupID })
	sav, ad := indexByGroup(src.Savings, func(r domain.SavingsRecord) string { return r.GroupID })
	for _, d := range []struct {
		source string
		n      int
	}{{"status", sd}, {"collections", cd}, {"savings", ad}} {
		if d.n > 0 {
			svc.logger.Warn("repeated group ids in source; first row kept", zap.String("source", d.source), zap.Int("repeated", d.n))
		}
	}

	var stats joinStats
	out := make([]joined, 0, len(src.Aging.Records))
	for _, a := range src.Aging.Records {
		j := joined{aging: a}
		j.status, j.hasStatus = status[a.GroupID]
		j.collections, j.hasColl = coll[a.GroupID]
		j.savings, j.hasSavings = sav[a.GroupID]
		if !j.hasStatus {
			stats.statusMiss++
		}
		if !j.hasColl {
			stats.collectionsMiss++
		}
		if !j.hasSavings {
			stats.savingsMiss++
		}
		out = append(out, j)
	}
	return out, stats
}
