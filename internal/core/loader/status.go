package loader

import (
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// The status report header spans two rows; its captions repeat across blocks,
// so the money columns are taken by position.
var statusSchema = Schema{
	Source: "status",
	Fields: []Field{
		{Name: "codigo", Position: 8},
		{Name: "ciclo_sit", Aliases: []string{"nombre_ciclo"}, Position: 10},
		{Name: "cartera_vencida_importe", Position: 24, Expect: "vencid"},
		{Name: "cartera_vencida_pct", Position: 25, Expect: "vencid"},
		{Name: "cartera_vigente_importe", Position: 26, Expect: "vigent"},
		{Name: "cartera_vigente_parcialidad", Position: 29, Expect: "vigent"},
		{Name: "numero_de_integrantes_sit", Position: 41, Expect: "integrantes"},
	},
}

// LoadStatus loads the portfolio-status report.
func (svc *service) LoadStatus(path string) ([]domain.StatusRecord, error) {
	t, err := svc.openSheet(statusSchema.Source, path, svc.opts.StatusSheet, svc.opts.StatusHeaderRows...)
	if err != nil {
		return nil, err
	}
	b, err := svc.bind(statusSchema, t)
	if err != nil {
		return nil, err
	}

	records := make([]domain.StatusRecord, 0, len(t.Rows))
	skipped := 0
	for i, row := range t.Rows {
		id := normalize.GroupID(b.get(row, "codigo"))
		if id == "" {
			skipped++
			continue
		}
		records = append(records, domain.StatusRecord{
			Row:            t.SheetRows[i],
			GroupID:        id,
			Cycle:          normalize.Cycle(b.get(row, "ciclo_sit")),
			Overdue:        normalize.Number(b.get(row, "cartera_vencida_importe")),
			OverduePct:     normalize.Number(b.get(row, "cartera_vencida_pct")),
			Current:        normalize.Number(b.get(row, "cartera_vigente_importe")),
			CurrentPartial: normalize.Number(b.get(row, "cartera_vigente_parcialidad")),
			Members:        normalize.Number(b.get(row, "numero_de_integrantes_sit")),
		})
	}
	if skipped > 0 {
		svc.logger.Debug("status rows without group code skipped", zap.Int("rows", skipped))
	}
	return records, nil
}
