package domain

// File-name globs of the four core-system exports.
const (
	DefaultAgingPattern       = "ReportedeAntiguedad*"
	DefaultStatusPattern      = "Situaci*n de cartera*"
	DefaultCollectionsPattern = "Cobranza*"
	DefaultSavingsPattern     = "AHORROS*"
)

// Sheet layout of the exports. Header rows are 0-based.
const (
	DefaultStatusSheet          = "SITUACIÓN DE CARTERA"
	DefaultCollectionsSheet     = "REPORTE DE COBRANZA"
	DefaultCollectionsHeaderRow = 8
	DefaultSavingsSheet         = "ACUMULADO"
	DefaultSavingsHeaderRow     = 0
)

// DefaultStatusHeaderRows are the two header rows of the status report.
func DefaultStatusHeaderRows() []int { return []int{11, 12} }

// DefaultMoraThreshold is the overdue fraction a row must exceed to enter MORA.
const DefaultMoraThreshold = 0.05
