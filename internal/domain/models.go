// package domain/models.go
package domain

// Status is the portfolio classification derived from the credit situation.
type Status string

// Constants for the statuses a portfolio row can take.
const (
	StatusVigente         Status = "Vigente"
	StatusDesertorSinMora Status = "Desertor sin mora"
)

// ---------------------- sources ----------------------

// AgingRecord is one row of the loan aging report (ReportedeAntiguedaddeCarteraGrupal).
type AgingRecord struct {
	Row             int
	GroupID         string
	GroupName       string
	LoanedAmount    Value
	DisbursedAmount Value
	GroupType       string
	CycleStart      Date
	Term            Value
	MeetingDay      string
	MeetingTime     string
	Periodicity     string
	WeeklyPayment   Value
	DaysDelinquent  Value
	TotalBalance    Value
	Members         Value
	Manager         string
	Promoter        string
	Situation       string
	Cycle           Value
}

// AgingTable is the de-duplicated anchor table.
type AgingTable struct {
	Records []AgingRecord
	// HasTotalBalance is false when the snapshot carried no saldo_total column.
	HasTotalBalance bool
	Duplicates      int
}

// StatusRecord is one group from the portfolio-status report (Situación de cartera).
type StatusRecord struct {
	Row            int
	GroupID        string
	Cycle          Value
	Overdue        Value
	OverduePct     Value
	Current        Value
	CurrentPartial Value
	Members        Value
}

// CollectionRecord is one group from the collections report (Reporte de cobranza).
type CollectionRecord struct {
	Row          int
	GroupID      string
	NextPayment  Date
	PaymentsDue  Value
	PaymentsMade Value
}

// SavingsRecord is one group from the savings workbook (hoja ACUMULADO).
type SavingsRecord struct {
	Row         int
	GroupID     string
	Accumulated Value
}

// Sources bundles the four loaded inputs of a run.
type Sources struct {
	Aging       *AgingTable
	Status      []StatusRecord
	Collections []CollectionRecord
	Savings     []SavingsRecord
}

// ---------------------- outputs ----------------------

// PortfolioRow is one row of the CARTERA sheet. Field order follows PortfolioColumns.
type PortfolioRow struct {
	Manager            string
	Promoter           string
	GroupID            string
	GroupName          string
	Cycle              Value
	CreditAmount       Value
	GroupType          string
	CreditStart        Date
	Term               Value
	MeetingDay         string
	MeetingTime        string
	Periodicity        string
	WeeklyPayment      Value
	NextPayment        Date
	SystemBalance      Value
	InitialBalance     Value
	ComputedBalance    Value
	OutstandingBalance Value
	BalanceDifference  Value
	SavingsConsumed    Value
	StatisticalOverdue Value
	OverdueTotal       Value
	OverduePct         Value
	AtRiskBalance      Value
	SavingsBalance     Value
	AverageLoan        Value
	Members            Value
	Week               Value
	PaymentsCovered    Value
	PaymentsDue        Value
	TotalPayments      Value
	DaysDelinquent     Value
	AccumulatedSavings Value
	SavingsPct         Value
	Status             Status
	DepositCode        string
}

// DelinquencyRow is one row of the MORA sheet.
type DelinquencyRow struct {
	Manager                string
	Promoter               string
	GroupID                string
	GroupName              string
	Cycle                  Value
	CreditAmount           Value
	Week                   Value
	WeeklyPayment          Value
	OverdueTotal           Value
	OverduePct             Value
	AtRiskBalance          Value
	DaysDelinquent         Value
	MonthlyPotential       Value
	ComputedOverdueBalance Value
}

// Table is a named, ordered projection ready for the output writer.
// Cells hold string, float64, int64, time.Time or nil.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Index returns the position of a column, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// PortfolioColumns is the fixed CARTERA schema (columns A..AJ).
var PortfolioColumns = []string{
	"nombre_del_gerente",
	"nombre_promotor",
	"id_de_grupo",
	"nombre_de_grupo",
	"ciclo",
	"monto_del_credito",
	"tipo_de_grupo",
	"fecha_de_inicio_del_credito",
	"plazo",
	"dia_de_reunion",
	"hora_de_reunion",
	"periodicidad",
	"pago_semanal",
	"proximo_pago",
	"cartera_vigente_sistema",
	"cartera_vigente_inicial",
	"cartera_vigente_calculada",
	"cartera_insoluta",
	"diferencia_validacion_vigente",
	"ahorro_consumido",
	"cartera_vencida_estadistica",
	"cartera_vencida_total",
	"pct_mora",
	"saldo_en_riesgo",
	"saldo_ahorro_acumulado",
	"monto_promedio_del_grupo",
	"numero_de_integrantes",
	"semana",
	"pagos_cubiertos",
	"pagos_por_vencer",
	"total_de_pagos",
	"dias_de_mora",
	"ahorro_acumulado",
	"pct_de_ahorro",
	"estatus",
	"concepto_deposito",
}

// DelinquencyColumns is the fixed MORA schema (columns A..N).
var DelinquencyColumns = []string{
	"nombre_del_gerente",
	"nombre_promotor",
	"id_de_grupo",
	"nombre_de_grupo",
	"ciclo",
	"monto_del_credito",
	"semana",
	"pago_semanal",
	"cartera_vencida_total",
	"pct_mora",
	"saldo_en_riesgo",
	"dias_de_mora",
	"mora_potencial_mensual",
	"cartera_vencida_total_calculada",
}

// ColumnLabels are the header captions of the reference workbook.
var ColumnLabels = map[string]string{
	"nombre_del_gerente":              "Nombre del gerente",
	"nombre_promotor":                 "Nombre promotor",
	"id_de_grupo":                     "ID de grupo",
	"nombre_de_grupo":                 "Nombre de grupo",
	"ciclo":                           "Ciclo",
	"monto_del_credito":               "Monto del crédito",
	"tipo_de_grupo":                   "Tipo de grupo",
	"fecha_de_inicio_del_credito":     "Fecha de inicio del crédito",
	"plazo":                           "Plazo",
	"dia_de_reunion":                  "Día de reunión",
	"hora_de_reunion":                 "Hora de reunión",
	"periodicidad":                    "Periodicidad",
	"pago_semanal":                    "Pago Semanal",
	"proximo_pago":                    "Próximo pago",
	"cartera_vigente_sistema":         "Cartera vigente sistema",
	"cartera_vigente_inicial":         "Cartera vigente inicial",
	"cartera_vigente_calculada":       "Cartera vigente calculada",
	"cartera_insoluta":                "Cartera Insoluta",
	"diferencia_validacion_vigente":   "Diferencia Validación vigente",
	"ahorro_consumido":                "Ahorro Consumido",
	"cartera_vencida_estadistica":     "Cartera Vencida Estadistica",
	"cartera_vencida_total":           "Cartera vencida Total",
	"pct_mora":                        "%mora",
	"saldo_en_riesgo":                 "Saldo en riesgo",
	"saldo_ahorro_acumulado":          "Saldo ahorro acumulado",
	"monto_promedio_del_grupo":        "Monto promedio del grupo",
	"numero_de_integrantes":           "Número de Integrantes",
	"semana":                          "Semana",
	"pagos_cubiertos":                 "Pagos cubiertos",
	"pagos_por_vencer":                "Pagos por vencer",
	"total_de_pagos":                  "Total de pagos",
	"dias_de_mora":                    "Días de mora",
	"ahorro_acumulado":                "Ahorro Acumulado",
	"pct_de_ahorro":                   "%ahorro",
	"estatus":                         "Estatus",
	"concepto_deposito":               "Concepto Depósito",
	"mora_potencial_mensual":          "Mora potencial mensual",
	"cartera_vencida_total_calculada": "Cartera vencida total calculada",
}
