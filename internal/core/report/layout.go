package report

// Number formats of the reference workbook.
const (
	fmtMoney         = `_($* #,##0.00_);_($* (#,##0.00);_($* "-"??_);_(@_)`
	fmtMoneyMinus    = `_($* #,##0.00_);_($* -#,##0.00_);_($* "-"??_);_(@_)`
	fmtDate          = "d/mm/yyyy"
	fmtPercent       = "0.00%"
	fmtText          = "@"
	fmtInteger       = "0"
	highlightColor   = "FFFF00"
	headerFillColor  = "D9E1F2"
	tableStyle       = "TableStyleMedium2"
	titleRows        = 5
	headerRow        = titleRows + 1
	firstDataRow     = headerRow + 1
	freezeCell       = "A7"
	totalsLabel      = "Total"
	subtotalSumParam = 109
)

// layout is how one generated table is rendered on its sheet.
type layout struct {
	tableName string
	title     string
	// formats maps a column to its number format
	formats map[string]string
	// highlight lists the columns filled with the highlight color
	highlight []string
	// totals lists the columns summed in the totals row
	totals []string
	widths map[string]float64
}

var carteraLayout = layout{
	tableName: "TablaCartera",
	title:     "CARTERA",
	formats: map[string]string{
		"ciclo":                         fmtText,
		"monto_del_credito":             fmtMoney,
		"fecha_de_inicio_del_credito":   fmtDate,
		"pago_semanal":                  fmtMoney,
		"proximo_pago":                  fmtDate,
		"cartera_vigente_sistema":       fmtMoney,
		"cartera_vigente_inicial":       fmtMoney,
		"cartera_vigente_calculada":     fmtMoney,
		"cartera_insoluta":              fmtMoney,
		"diferencia_validacion_vigente": fmtMoneyMinus,
		"ahorro_consumido":              fmtMoney,
		"cartera_vencida_estadistica":   fmtMoney,
		"cartera_vencida_total":         fmtMoney,
		"pct_mora":                      fmtPercent,
		"saldo_en_riesgo":               fmtMoney,
		"saldo_ahorro_acumulado":        fmtMoney,
		"monto_promedio_del_grupo":      fmtMoney,
		"ahorro_acumulado":              fmtMoney,
		"pct_de_ahorro":                 fmtPercent,
	},
	totals: []string{
		"monto_del_credito",
		"pago_semanal",
		"cartera_vigente_sistema",
		"cartera_vigente_inicial",
		"cartera_vigente_calculada",
		"cartera_insoluta",
		"diferencia_validacion_vigente",
		"ahorro_consumido",
		"cartera_vencida_estadistica",
		"cartera_vencida_total",
		"saldo_en_riesgo",
		"saldo_ahorro_acumulado",
		"monto_promedio_del_grupo",
		"ahorro_acumulado",
	},
	widths: map[string]float64{"Q": 20, "R": 20, "S": 20, "T": 20},
}

var moraLayout = layout{
	tableName: "TablaMora",
	title:     "MORA",
	formats: map[string]string{
		"nombre_del_gerente":              fmtText,
		"nombre_promotor":                 fmtText,
		"id_de_grupo":                     fmtText,
		"nombre_de_grupo":                 fmtText,
		"ciclo":                           fmtInteger,
		"monto_del_credito":               fmtMoney,
		"semana":                          fmtInteger,
		"pago_semanal":                    fmtMoney,
		"cartera_vencida_total":           fmtMoney,
		"pct_mora":                        fmtPercent,
		"saldo_en_riesgo":                 fmtMoney,
		"dias_de_mora":                    fmtInteger,
		"mora_potencial_mensual":          fmtMoney,
		"cartera_vencida_total_calculada": fmtMoney,
	},
	highlight: []string{"pct_mora", "dias_de_mora"},
	totals: []string{
		"monto_del_credito",
		"pago_semanal",
		"cartera_vencida_total",
		"saldo_en_riesgo",
		"mora_potencial_mensual",
		"cartera_vencida_total_calculada",
	},
}

func (l layout) highlighted(column string) bool {
	for _, h := range l.highlight {
		if h == column {
			return true
		}
	}
	return false
}
