package loader

import (
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

var collectionsSchema = Schema{
	Source: "collections",
	Fields: []Field{
		{Name: "gpo", Aliases: []string{"gpo"}, Position: 6},
		{Name: "proximo_pago_cob", Aliases: []string{"proximo_pago"}, Position: 39},
		{Name: "por_vencer", Aliases: []string{"por_vencer"}, Position: 40},
		{Name: "pagos", Aliases: []string{"pagos"}, Position: 41},
	},
}

// LoadCollections loads the collections report.
func (svc *service) LoadCollections(path string) ([]domain.CollectionRecord, error) {
	t, err := svc.openSheet(collectionsSchema.Source, path, svc.opts.CollectionsSheet, svc.opts.CollectionsHeaderRow)
	if err != nil {
		return nil, err
	}
	b, err := svc.bind(collectionsSchema, t)
	if err != nil {
		return nil, err
	}

	records := make([]domain.CollectionRecord, 0, len(t.Rows))
	skipped := 0
	for i, row := range t.Rows {
		id := normalize.GroupID(b.get(row, "gpo"))
		if id == "" {
			skipped++
			continue
		}
		records = append(records, domain.CollectionRecord{
			Row:          t.SheetRows[i],
			GroupID:      id,
			NextPayment:  normalize.Date(b.get(row, "proximo_pago_cob")),
			PaymentsDue:  normalize.Number(b.get(row, "por_vencer")),
			PaymentsMade: normalize.Number(b.get(row, "pagos")),
		})
	}
	if skipped > 0 {
		svc.logger.Debug("collections rows without group code skipped", zap.Int("rows", skipped))
	}
	return records, nil
}
