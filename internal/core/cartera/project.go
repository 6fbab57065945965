package cartera

import (
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

type cellFunc[R any] func(r *R) any

// project renders rows through a fixed column list. Every column must have a
// cell function; the table is never built with a column missing.
func project[R any](name string, columns []string, cells map[string]cellFunc[R], rows []R) (*domain.Table, error) {
	fns := make([]cellFunc[R], len(columns))
	var missing []string
	for i, c := range columns {
		fn, ok := cells[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		fns[i] = fn
	}
	if len(missing) > 0 {
		return nil, domain.NewMissingColumnError(name, missing...)
	}

	t := &domain.Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]any, 0, len(rows)),
	}
	for i := range rows {
		out := make([]any, len(fns))
		for c, fn := range fns {
			out[c] = fn(&rows[i])
		}
		t.Rows = append(t.Rows, out)
	}
	return t, nil
}

var portfolioCells = map[string]cellFunc[domain.PortfolioRow]{
	"nombre_del_gerente":            func(r *domain.PortfolioRow) any { return domain.StringCell(r.Manager) },
	"nombre_promotor":               func(r *domain.PortfolioRow) any { return domain.StringCell(r.Promoter) },
	"id_de_grupo":                   func(r *domain.PortfolioRow) any { return r.GroupID },
	"nombre_de_grupo":               func(r *domain.PortfolioRow) any { return domain.StringCell(r.GroupName) },
	"ciclo":                         func(r *domain.PortfolioRow) any { return r.Cycle.IntCell() },
	"monto_del_credito":             func(r *domain.PortfolioRow) any { return r.CreditAmount.Cell() },
	"tipo_de_grupo":                 func(r *domain.PortfolioRow) any { return domain.StringCell(r.GroupType) },
	"fecha_de_inicio_del_credito":   func(r *domain.PortfolioRow) any { return r.CreditStart.Cell() },
	"plazo":                         func(r *domain.PortfolioRow) any { return r.Term.IntCell() },
	"dia_de_reunion":                func(r *domain.PortfolioRow) any { return domain.StringCell(r.MeetingDay) },
	"hora_de_reunion":               func(r *domain.PortfolioRow) any { return domain.StringCell(r.MeetingTime) },
	"periodicidad":                  func(r *domain.PortfolioRow) any { return domain.StringCell(r.Periodicity) },
	"pago_semanal":                  func(r *domain.PortfolioRow) any { return r.WeeklyPayment.Cell() },
	"proximo_pago":                  func(r *domain.PortfolioRow) any { return r.NextPayment.Cell() },
	"cartera_vigente_sistema":       func(r *domain.PortfolioRow) any { return r.SystemBalance.Cell() },
	"cartera_vigente_inicial":       func(r *domain.PortfolioRow) any { return r.InitialBalance.Cell() },
	"cartera_vigente_calculada":     func(r *domain.PortfolioRow) any { return r.ComputedBalance.Cell() },
	"cartera_insoluta":              func(r *domain.PortfolioRow) any { return r.OutstandingBalance.Cell() },
	"diferencia_validacion_vigente": func(r *domain.PortfolioRow) any { return r.BalanceDifference.Cell() },
	"ahorro_consumido":              func(r *domain.PortfolioRow) any { return r.SavingsConsumed.Cell() },
	"cartera_vencida_estadistica":   func(r *domain.PortfolioRow) any { return r.StatisticalOverdue.Cell() },
	"cartera_vencida_total":         func(r *domain.PortfolioRow) any { return r.OverdueTotal.Cell() },
	"pct_mora":                      func(r *domain.PortfolioRow) any { return r.OverduePct.Cell() },
	"saldo_en_riesgo":               func(r *domain.PortfolioRow) any { return r.AtRiskBalance.Cell() },
	"saldo_ahorro_acumulado":        func(r *domain.PortfolioRow) any { return r.SavingsBalance.Cell() },
	"monto_promedio_del_grupo":      func(r *domain.PortfolioRow) any { return r.AverageLoan.Cell() },
	"numero_de_integrantes":         func(r *domain.PortfolioRow) any { return r.Members.IntCell() },
	"semana":                        func(r *domain.PortfolioRow) any { return r.Week.IntCell() },
	"pagos_cubiertos":               func(r *domain.PortfolioRow) any { return r.PaymentsCovered.IntCell() },
	"pagos_por_vencer":              func(r *domain.PortfolioRow) any { return r.PaymentsDue.IntCell() },
	"total_de_pagos":                func(r *domain.PortfolioRow) any { return r.TotalPayments.IntCell() },
	"dias_de_mora":                  func(r *domain.PortfolioRow) any { return r.DaysDelinquent.IntCell() },
	"ahorro_acumulado":              func(r *domain.PortfolioRow) any { return r.AccumulatedSavings.Cell() },
	"pct_de_ahorro":                 func(r *domain.PortfolioRow) any { return r.SavingsPct.Cell() },
	"estatus":                       func(r *domain.PortfolioRow) any { return string(r.Status) },
	"concepto_deposito":             func(r *domain.PortfolioRow) any { return r.DepositCode },
}

var delinquencyCells = map[string]cellFunc[domain.DelinquencyRow]{
	"nombre_del_gerente":              func(r *domain.DelinquencyRow) any { return domain.StringCell(r.Manager) },
	"nombre_promotor":                 func(r *domain.DelinquencyRow) any { return domain.StringCell(r.Promoter) },
	"id_de_grupo":                     func(r *domain.DelinquencyRow) any { return r.GroupID },
	"nombre_de_grupo":                 func(r *domain.DelinquencyRow) any { return domain.StringCell(r.GroupName) },
	"ciclo":                           func(r *domain.DelinquencyRow) any { return r.Cycle.IntCell() },
	"monto_del_credito":               func(r *domain.DelinquencyRow) any { return r.CreditAmount.Cell() },
	"semana":                          func(r *domain.DelinquencyRow) any { return r.Week.IntCell() },
	"pago_semanal":                    func(r *domain.DelinquencyRow) any { return r.WeeklyPayment.Cell() },
	"cartera_vencida_total":           func(r *domain.DelinquencyRow) any { return r.OverdueTotal.Cell() },
	"pct_mora":                        func(r *domain.DelinquencyRow) any { return r.OverduePct.Cell() },
	"saldo_en_riesgo":                 func(r *domain.DelinquencyRow) any { return r.AtRiskBalance.Cell() },
	"dias_de_mora":                    func(r *domain.DelinquencyRow) any { return r.DaysDelinquent.IntCell() },
	"mora_potencial_mensual":          func(r *domain.DelinquencyRow) any { return r.MonthlyPotential.Cell() },
	"cartera_vencida_total_calculada": func(r *domain.DelinquencyRow) any { return r.ComputedOverdueBalance.Cell() },
}
