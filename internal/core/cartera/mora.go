package cartera

import (
	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// weeks in the monthly delinquency projection
const weeksPerMonth = 4

// GenerateMora keeps the portfolio rows whose overdue fraction exceeds the
// threshold. No match still yields the full MORA schema with zero rows.
func (svc *service) GenerateMora(rows []domain.PortfolioRow) (*domain.Table, error) {
	threshold := svc.opts.MoraThreshold

	var mora []domain.DelinquencyRow
	for _, r := range rows {
		if !r.OverduePct.Gt(threshold) {
			continue
		}
		mora = append(mora, domain.DelinquencyRow{
			Manager:                r.Manager,
			Promoter:               r.Promoter,
			GroupID:                r.GroupID,
			GroupName:              r.GroupName,
			Cycle:                  r.Cycle,
			CreditAmount:           r.CreditAmount,
			Week:                   r.Week,
			WeeklyPayment:          r.WeeklyPayment,
			OverdueTotal:           r.OverdueTotal,
			OverduePct:             r.OverduePct,
			AtRiskBalance:          r.AtRiskBalance,
			DaysDelinquent:         r.DaysDelinquent,
			MonthlyPotential:       r.WeeklyPayment.Mul(domain.Num(weeksPerMonth)),
			ComputedOverdueBalance: r.WeeklyPayment.Mul(r.Week),
		})
	}

	table, err := project(SheetMora, domain.DelinquencyColumns, delinquencyCells, mora)
	if err != nil {
		return nil, err
	}
	svc.logger.Info("mora generated", zap.Int("rows", len(mora)), zap.Float64("threshold", threshold))
	return table, nil
}
