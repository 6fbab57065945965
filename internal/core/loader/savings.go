package loader

import (
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

var savingsSchema = Schema{
	Source: "savings",
	Fields: []Field{
		{Name: "id", Aliases: []string{"id", "id_de_grupo", "gpo"}, Position: noPosition},
		{Name: "ahorro_acumulado", Aliases: []string{"ahorro_acumulado"}, Position: noPosition},
	},
}

// LoadSavings loads the accumulated savings sheet.
func (svc *service) LoadSavings(path string) ([]domain.SavingsRecord, error) {
	t, err := svc.openSheet(savingsSchema.Source, path, svc.opts.SavingsSheet, svc.opts.SavingsHeaderRow)
	if err != nil {
		return nil, err
	}
	b, err := svc.bind(savingsSchema, t)
	if err != nil {
		return nil, err
	}

	records := make([]domain.SavingsRecord, 0, len(t.Rows))
	skipped := 0
	for i, row := range t.Rows {
		id := normalize.GroupID(b.get(row, "id"))
		if id == "" {
			skipped++
			continue
		}
		records = append(records, domain.SavingsRecord{
			Row:         t.SheetRows[i],
			GroupID:     id,
			Accumulated: normalize.Number(b.get(row, "ahorro_acumulado")),
		})
	}
	if skipped > 0 {
		svc.logger.Debug("savings rows without group id skipped", zap.Int("rows", skipped))
	}
	return records, nil
}
