package loader

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

const agingGroupColumn = "cod_grupo_solidario"

var agingSchema = Schema{
	Source: "aging",
	Fields: []Field{
		{Name: "cod_grupo_solidario", Aliases: []string{"cod_grupo_solidario"}, Position: noPosition},
		{Name: "grupo_solidario", Aliases: []string{"grupo_solidario"}, Position: noPosition},
		{Name: "cantidad_prestada", Aliases: []string{"cantidad_prestada"}, Position: noPosition},
		{Name: "cantidad_entregada", Aliases: []string{"cantidad_entregada"}, Position: noPosition},
		{Name: "tipo_de_grupo", Aliases: []string{"tipo_de_grupo"}, Position: noPosition},
		{Name: "inicio_ciclo", Aliases: []string{"inicio_ciclo"}, Position: noPosition},
		{Name: "plazo_del_credito", Aliases: []string{"plazo_del_credito"}, Position: noPosition},
		{Name: "dia_junta", Aliases: []string{"dia_junta"}, Position: noPosition},
		{Name: "hora_junta", Aliases: []string{"hora_junta"}, Position: noPosition},
		{Name: "periodicidad", Aliases: []string{"periodicidad"}, Position: noPosition},
		{Name: "pago_semanal", Aliases: []string{"parcialidad_+_parcialidad_comision"}, Position: noPosition},
		{Name: "dias_de_mora", Aliases: []string{"dias_de_mora"}, Position: noPosition},
		{Name: "saldo_total", Aliases: []string{"saldo_total"}, Position: noPosition, Optional: true},
		{Name: "numero_integrantes", Aliases: []string{"numero_integrantes", "numero_de_integrantes"}, Position: noPosition},
		{Name: "nombre_de_gerente", Aliases: []string{"nombre_de_gerente", "nombre_del_gerente"}, Position: noPosition},
		{Name: "nombre_promotor", Aliases: []string{"nombre_promotor", "nombre_del_promotor"}, Position: noPosition},
		{Name: "situacion_credito", Aliases: []string{"situacion_credito"}, Position: noPosition},
		{Name: "ciclo", Aliases: []string{"ciclo"}, Position: noPosition},
	},
}

// LoadAging loads the anchor table and resolves duplicated groups.
func (svc *service) LoadAging(path string) (*domain.AgingTable, error) {
	wb, err := OpenWorkbook(path)
	if err != nil {
		return nil, err
	}
	sheet := svc.opts.AgingSheet
	if sheet == "" {
		detected, err := detectAgingSheet(wb)
		if err != nil {
			return nil, err
		}
		sheet = detected
	}

	t, err := svc.sheetTable(agingSchema.Source, wb, sheet, 0)
	if err != nil {
		return nil, err
	}
	b, err := svc.bind(agingSchema, t)
	if err != nil {
		return nil, err
	}

	var records []domain.AgingRecord
	skipped := 0
	for i, row := range t.Rows {
		id := normalize.GroupID(b.get(row, "cod_grupo_solidario"))
		if id == "" || strings.Contains(normalize.Key(id), "TOTAL") {
			skipped++
			continue
		}
		records = append(records, domain.AgingRecord{
			Row:             t.SheetRows[i],
			GroupID:         id,
			GroupName:       normalize.Text(b.get(row, "grupo_solidario")),
			LoanedAmount:    normalize.Number(b.get(row, "cantidad_prestada")),
			DisbursedAmount: normalize.Number(b.get(row, "cantidad_entregada")),
			GroupType:       normalize.Text(b.get(row, "tipo_de_grupo")),
			CycleStart:      normalize.Date(b.get(row, "inicio_ciclo")),
			Term:            normalize.Number(b.get(row, "plazo_del_credito")),
			MeetingDay:      normalize.Text(b.get(row, "dia_junta")),
			MeetingTime:     normalize.MeetingTime(b.get(row, "hora_junta")),
			Periodicity:     normalize.Text(b.get(row, "periodicidad")),
			WeeklyPayment:   normalize.Number(b.get(row, "pago_semanal")),
			DaysDelinquent:  normalize.Number(b.get(row, "dias_de_mora")),
			TotalBalance:    normalize.Number(b.get(row, "saldo_total")),
			Members:         normalize.Number(b.get(row, "numero_integrantes")),
			Manager:         normalize.Text(b.get(row, "nombre_de_gerente")),
			Promoter:        normalize.Text(b.get(row, "nombre_promotor")),
			Situation:       normalize.Text(b.get(row, "situacion_credito")),
			Cycle:           normalize.Cycle(b.get(row, "ciclo")),
		})
	}
	if skipped > 0 {
		svc.logger.Info("aging rows skipped: blank or total group code", zap.Int("rows", skipped))
	}
	if !b.has("saldo_total") {
		svc.logger.Warn("column saldo_total not found; system balance falls back to status current balance")
	}

	deduped, duplicates := Deduplicate(records)
	svc.logger.Info("aging duplicates resolved",
		zap.Int("duplicates", duplicates),
		zap.Int("records", len(records)),
		zap.Int("groups", len(deduped)))

	return &domain.AgingTable{
		Records:         deduped,
		HasTotalBalance: b.has("saldo_total"),
		Duplicates:      duplicates,
	}, nil
}

// detectAgingSheet returns the first sheet whose first row holds the group-code column.
// The aging export names its sheet after the snapshot date, so the name is not stable.
func detectAgingSheet(wb *Workbook) (string, error) {
	for _, sheet := range wb.Sheets() {
		rows, err := wb.Rows(sheet)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			continue
		}
		for _, c := range normalize.Columns([][]string{rows[0]}) {
			if c == agingGroupColumn {
				return sheet, nil
			}
		}
	}
	return "", domain.NewMissingSourceError(agingSchema.Source, wb.Path, "<sheet with "+agingGroupColumn+">", nil)
}

// Deduplicate keeps one record per group id: the one with the highest cycle
// (a null cycle sorts lowest, ties keep the first occurrence). A blank manager
// on the kept record is backfilled from the duplicates scanned by ascending
// cycle. Groups keep the order of their first appearance. The second result is
// the number of records dropped.
func Deduplicate(records []domain.AgingRecord) ([]domain.AgingRecord, int) {
	order := []string{}
	byID := map[string][]domain.AgingRecord{}
	for _, r := range records {
		if _, seen := byID[r.GroupID]; !seen {
			order = append(order, r.GroupID)
		}
		byID[r.GroupID] = append(byID[r.GroupID], r)
	}

	out := make([]domain.AgingRecord, 0, len(order))
	dropped := 0
	for _, id := range order {
		group := byID[id]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		dropped += len(group) - 1

		// ascending by cycle, null first; stable keeps file order on ties
		sorted := append([]domain.AgingRecord(nil), group...)
		sort.SliceStable(sorted, func(i, j int) bool {
			return cycleLess(sorted[i].Cycle, sorted[j].Cycle)
		})

		kept := group[0]
		for _, r := range group[1:] {
			if cycleLess(kept.Cycle, r.Cycle) {
				kept = r
			}
		}
		if strings.TrimSpace(kept.Manager) == "" {
			for _, r := range sorted {
				if strings.TrimSpace(r.Manager) != "" {
					kept.Manager = r.Manager
					break
				}
			}
		}
		out = append(out, kept)
	}
	return out, dropped
}

func cycleLess(a, b domain.Value) bool {
	if !a.Valid {
		return b.Valid
	}
	return b.Valid && a.Float < b.Float
}
