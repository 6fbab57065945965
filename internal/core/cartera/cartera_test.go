package cartera

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/uzzielvz/cartera-generator/internal/core/loader"
	"github.com/uzzielvz/cartera-generator/internal/core/patch"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

var fixedNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, logger *zap.Logger) Service {
	t.Helper()
	return NewService(logger, patch.Defaults(), Options{
		Now:           func() time.Time { return fixedNow },
		MoraThreshold: DefaultMoraThreshold,
	})
}

func date(y int, m time.Month, d int) domain.Date {
	return domain.Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC), Valid: true}
}

// activeGroup is an "Entregado" credit with matches in every source.
func activeGroup() (domain.AgingRecord, domain.StatusRecord, domain.CollectionRecord, domain.SavingsRecord) {
	a := domain.AgingRecord{
		GroupID:        "000041",
		GroupName:      "Las Flores",
		LoanedAmount:   domain.Num(200),
		GroupType:      "Solidario",
		CycleStart:     date(2024, 1, 1),
		Term:           domain.Num(16),
		WeeklyPayment:  domain.Num(10),
		DaysDelinquent: domain.Num(3),
		TotalBalance:   domain.Num(120),
		Members:        domain.Num(5),
		Manager:        "Perez Soto Ana",
		Promoter:       "Ponce Galindo",
		Situation:      "Entregado",
		Cycle:          domain.Num(2),
	}
	s := domain.StatusRecord{
		GroupID:    "000041",
		Cycle:      domain.Num(3),
		Overdue:    domain.Num(100),
		OverduePct: domain.Num(12.5),
		Current:    domain.Num(130),
		Members:    domain.Num(4),
	}
	c := domain.CollectionRecord{
		GroupID:      "000041",
		NextPayment:  date(2024, 3, 4),
		PaymentsDue:  domain.Num(6),
		PaymentsMade: domain.Num(10),
	}
	sv := domain.SavingsRecord{GroupID: "000041", Accumulated: domain.Num(50)}
	return a, s, c, sv
}

func fullSources() *domain.Sources {
	a, s, c, sv := activeGroup()
	return &domain.Sources{
		Aging:       &domain.AgingTable{Records: []domain.AgingRecord{a}, HasTotalBalance: true},
		Status:      []domain.StatusRecord{s},
		Collections: []domain.CollectionRecord{c},
		Savings:     []domain.SavingsRecord{sv},
	}
}

func generate(t *testing.T, src *domain.Sources) (*domain.Table, []domain.PortfolioRow) {
	t.Helper()
	table, rows, err := newTestService(t, nil).GenerateCartera(src)
	require.NoError(t, err)
	return table, rows
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.Status
		unknown bool
	}{
		{"Entregado", domain.StatusVigente, false},
		{"Autorizado por cartera", domain.StatusVigente, false},
		{"  AUTORIZADO POR CARTERA ", domain.StatusVigente, false},
		{"Liquidado", domain.StatusDesertorSinMora, false},
		{"Unknown Code", domain.StatusVigente, true},
		{"", domain.StatusVigente, false},
	}
	for _, tc := range tests {
		got, unknown := Classify(tc.in)
		assert.Equal(t, tc.want, got, "Classify(%q)", tc.in)
		assert.Equal(t, tc.unknown, unknown, "Classify(%q) unknown", tc.in)
	}
}

func TestGenerateCartera_ActiveRow(t *testing.T) {
	table, rows := generate(t, fullSources())
	require.Len(t, rows, 1)
	r := rows[0]

	assert.Equal(t, "Contreras Martinez Jose Luis", r.Promoter)
	assert.Equal(t, domain.Num(3), r.Cycle, "status cycle wins")
	assert.Equal(t, domain.Num(200), r.CreditAmount)
	assert.Equal(t, domain.Num(120), r.SystemBalance, "aging saldo_total")
	assert.Equal(t, domain.Num(130), r.OutstandingBalance)
	assert.Equal(t, domain.Num(100), r.OverdueTotal)
	assert.Equal(t, domain.Num(0.125), r.OverduePct)
	assert.Equal(t, domain.Num(4), r.Members, "status members first")
	assert.Equal(t, domain.Num(50), r.AverageLoan)
	assert.Equal(t, domain.Num(4), r.Week)
	assert.Equal(t, domain.Num(6), r.PaymentsDue)
	assert.Equal(t, domain.Num(10), r.TotalPayments)
	assert.Equal(t, domain.Num(4), r.PaymentsCovered)
	assert.Equal(t, domain.Num(160), r.InitialBalance)
	assert.Equal(t, domain.Num(120), r.ComputedBalance)
	assert.Equal(t, domain.Num(0), r.BalanceDifference)
	assert.Equal(t, domain.Num(70), r.SavingsConsumed)
	assert.Equal(t, domain.Num(30), r.StatisticalOverdue)
	assert.Equal(t, domain.Num(130), r.AtRiskBalance)
	assert.Equal(t, domain.Num(50), r.SavingsBalance)
	assert.Equal(t, domain.Num(1.25), r.SavingsPct)
	assert.Equal(t, domain.StatusVigente, r.Status)
	assert.Equal(t, "000004103", r.DepositCode)

	require.Len(t, table.Columns, 36)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "000041", table.Rows[0][table.Index("id_de_grupo")])
	assert.Equal(t, int64(3), table.Rows[0][table.Index("ciclo")])
	assert.Equal(t, "Vigente", table.Rows[0][table.Index("estatus")])
}

func TestGenerateCartera_ComputedBalanceAboveSystem(t *testing.T) {
	src := fullSources()
	src.Aging.Records[0].TotalBalance = domain.Num(70)
	_, rows := generate(t, src)
	// -(4*10 - 160) = 120 beats the system 70
	assert.Equal(t, domain.Num(120), rows[0].ComputedBalance)
	assert.Equal(t, domain.Num(-50), rows[0].BalanceDifference)
}

func TestGenerateCartera_SystemBalanceWithoutSaldoTotal(t *testing.T) {
	src := fullSources()
	src.Aging.HasTotalBalance = false
	_, rows := generate(t, src)
	assert.Equal(t, domain.Num(130), rows[0].SystemBalance)
}

func TestGenerateCartera_FallbackChain(t *testing.T) {
	src := fullSources()
	src.Status[0].Current = domain.Null
	src.Status[0].Members = domain.Null
	src.Status[0].Cycle = domain.Null
	_, rows := generate(t, src)
	r := rows[0]

	assert.Equal(t, domain.Num(0), r.OutstandingBalance, "never the aging balance")
	assert.Equal(t, domain.Num(0), r.AtRiskBalance)
	assert.Equal(t, domain.Num(5), r.Members, "aging members as fallback")
	assert.Equal(t, domain.Num(2), r.Cycle, "aging cycle as fallback")
	assert.Equal(t, "000004102", r.DepositCode)
}

func TestGenerateCartera_CreditAmountFallback(t *testing.T) {
	src := fullSources()
	src.Aging.Records[0].LoanedAmount = domain.Null
	src.Aging.Records[0].DisbursedAmount = domain.Num(180)
	_, rows := generate(t, src)
	assert.Equal(t, domain.Num(180), rows[0].CreditAmount)
	assert.Equal(t, domain.Num(45), rows[0].AverageLoan)
}

func TestGenerateCartera_JoinMissKeepsRow(t *testing.T) {
	a, _, _, _ := activeGroup()
	core, logs := observer.New(zap.InfoLevel)
	svc := NewService(zap.New(core), patch.Set{}, Options{Now: func() time.Time { return fixedNow }})

	_, rows, err := svc.GenerateCartera(&domain.Sources{
		Aging: &domain.AgingTable{Records: []domain.AgingRecord{a}, HasTotalBalance: true},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]

	assert.Equal(t, "Ponce Galindo", r.Promoter, "empty patch set")
	assert.Equal(t, domain.Num(0), r.OverdueTotal)
	assert.Equal(t, domain.Num(0), r.Week)
	assert.Equal(t, domain.Num(0), r.SavingsBalance)
	assert.Equal(t, domain.Num(0), r.SavingsPct)
	assert.False(t, r.NextPayment.Valid)

	joined := logs.FilterMessage("sources joined").All()
	require.Len(t, joined, 1)
	fields := joined[0].ContextMap()
	assert.EqualValues(t, 1, fields["status_missing"])
	assert.EqualValues(t, 1, fields["savings_missing"])
}

func TestGenerateCartera_ClearedRowZeroing(t *testing.T) {
	src := fullSources()
	src.Aging.Records[0].Situation = "Liquidado"
	_, rows := generate(t, src)
	r := rows[0]

	assert.Equal(t, domain.StatusDesertorSinMora, r.Status)
	assert.Equal(t, domain.Num(0), r.SystemBalance)
	assert.Equal(t, domain.Num(0), r.OutstandingBalance)
	assert.Equal(t, domain.Num(0), r.OverdueTotal)
	assert.Equal(t, domain.Num(0), r.OverduePct)
	assert.Equal(t, domain.Num(0), r.PaymentsDue)
	assert.Equal(t, domain.Num(0), r.SavingsConsumed)
	assert.Equal(t, domain.Num(0), r.AtRiskBalance)
	assert.Equal(t, domain.Num(16), r.TotalPayments, "term")
	assert.Equal(t, domain.Num(16), r.PaymentsCovered)
	assert.Equal(t, domain.Num(5), r.Members, "aging members first")
	assert.Equal(t, domain.Num(40), r.AverageLoan)
	// 2024-01-01 to 2024-03-01 is 60 days
	assert.Equal(t, domain.Num(8), r.Week)
}

func TestGenerateCartera_ClearedWithoutStartDate(t *testing.T) {
	src := fullSources()
	src.Aging.Records[0].Situation = "Liquidado"
	src.Aging.Records[0].CycleStart = domain.Date{Text: "sin fecha"}
	table, rows := generate(t, src)

	assert.Equal(t, domain.Num(0), rows[0].Week)
	assert.Nil(t, table.Rows[0][table.Index("fecha_de_inicio_del_credito")])
}

func TestGenerateCartera_ClearedAverageUsesLoanedAmount(t *testing.T) {
	src := fullSources()
	src.Aging.Records[0].Situation = "Liquidado"
	src.Aging.Records[0].LoanedAmount = domain.Null
	src.Aging.Records[0].DisbursedAmount = domain.Num(180)
	_, rows := generate(t, src)
	assert.Equal(t, domain.Num(180), rows[0].CreditAmount)
	assert.False(t, rows[0].AverageLoan.Valid)
}

func TestGenerateCartera_ZeroMembersAverageIsNull(t *testing.T) {
	src := fullSources()
	src.Status[0].Members = domain.Num(0)
	table, rows := generate(t, src)
	assert.False(t, rows[0].AverageLoan.Valid)
	assert.Nil(t, table.Rows[0][table.Index("monto_promedio_del_grupo")])
}

func TestGenerateCartera_SavingsConsumedCap(t *testing.T) {
	tests := []struct {
		overdue float64
		want    float64
	}{
		{100, 70},
		{50, 50},
		{0, 0},
	}
	for _, tc := range tests {
		src := fullSources()
		src.Status[0].Overdue = domain.Num(tc.overdue)
		_, rows := generate(t, src)
		assert.Equal(t, domain.Num(tc.want), rows[0].SavingsConsumed, "overdue %v", tc.overdue)
		assert.Equal(t, domain.Num(tc.overdue-tc.want), rows[0].StatisticalOverdue)
	}
}

func TestGenerateCartera_DegenerateSavingsRatio(t *testing.T) {
	src := fullSources()
	// week = 6 - 6 = 0
	src.Collections[0].PaymentsMade = domain.Num(6)
	core, logs := observer.New(zap.WarnLevel)
	_, rows, err := newTestService(t, zap.New(core)).GenerateCartera(src)
	require.NoError(t, err)

	assert.Equal(t, domain.Num(0), rows[0].SavingsPct)
	assert.Equal(t, 1, logs.FilterMessage("degenerate savings ratios normalized to 0").Len())
}

func TestGenerateCartera_UnknownStatusWarns(t *testing.T) {
	src := fullSources()
	b := src.Aging.Records[0]
	b.GroupID, b.Situation = "000042", "Unknown Code"
	c := src.Aging.Records[0]
	c.GroupID, c.Situation = "000043", ""
	src.Aging.Records = append(src.Aging.Records, b, c)

	core, logs := observer.New(zap.WarnLevel)
	_, rows, err := newTestService(t, zap.New(core)).GenerateCartera(src)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.Equal(t, domain.StatusVigente, r.Status)
	}

	warned := logs.FilterMessage("unrecognized credit situation, defaulting to Vigente").All()
	require.Len(t, warned, 1)
	assert.Equal(t, "000042", warned[0].ContextMap()["group_id"])
}

func TestGenerateCartera_Deduplicated(t *testing.T) {
	a, _, _, _ := activeGroup()
	low := a
	low.Cycle, low.Manager = domain.Num(1), "Historico Ruiz Luis"
	high := a
	high.Cycle, high.Manager = domain.Num(4), ""
	other := a
	other.GroupID = "000050"

	records, dups := loader.Deduplicate([]domain.AgingRecord{low, other, high})
	require.Equal(t, 1, dups)

	_, rows := generate(t, &domain.Sources{Aging: &domain.AgingTable{Records: records}})
	require.Len(t, rows, 2)
	assert.Equal(t, "000041", rows[0].GroupID)
	assert.Equal(t, domain.Num(4), rows[0].Cycle)
	assert.Equal(t, "Historico Ruiz Luis", rows[0].Manager)
	assert.Equal(t, "000050", rows[1].GroupID)
}

func TestGenerateCartera_Idempotent(t *testing.T) {
	first, _ := generate(t, fullSources())
	second, _ := generate(t, fullSources())
	assert.Equal(t, first, second)
}

func TestGenerateCartera_NoAging(t *testing.T) {
	_, _, err := newTestService(t, nil).GenerateCartera(&domain.Sources{})
	assert.Error(t, err)
}

func TestProject_MissingColumn(t *testing.T) {
	cells := make(map[string]cellFunc[domain.PortfolioRow], len(portfolioCells))
	for k, v := range portfolioCells {
		cells[k] = v
	}
	delete(cells, "semana")

	_, err := project(SheetCartera, domain.PortfolioColumns, cells, []domain.PortfolioRow{{}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingColumn))

	var mc *domain.MissingColumnError
	require.ErrorAs(t, err, &mc)
	assert.Equal(t, []string{"semana"}, mc.Columns)
}

func TestProject_EveryColumnHasACell(t *testing.T) {
	assert.Len(t, portfolioCells, len(domain.PortfolioColumns))
	for _, c := range domain.PortfolioColumns {
		assert.Contains(t, portfolioCells, c)
	}
	assert.Len(t, delinquencyCells, len(domain.DelinquencyColumns))
	for _, c := range domain.DelinquencyColumns {
		assert.Contains(t, delinquencyCells, c)
	}
}

func TestGenerateMora_Boundary(t *testing.T) {
	rows := []domain.PortfolioRow{
		{GroupID: "000001", OverduePct: domain.Num(0.05), WeeklyPayment: domain.Num(10), Week: domain.Num(3)},
		{GroupID: "000002", OverduePct: domain.Num(0.0500001), WeeklyPayment: domain.Num(10), Week: domain.Num(3)},
		{GroupID: "000003", OverduePct: domain.Null},
		{GroupID: "000004", OverduePct: domain.Num(0.4), Week: domain.Num(2)},
	}
	table, err := newTestService(t, nil).GenerateMora(rows)
	require.NoError(t, err)

	require.Len(t, table.Columns, 14)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "000002", table.Rows[0][table.Index("id_de_grupo")])
	assert.Equal(t, 40.0, table.Rows[0][table.Index("mora_potencial_mensual")])
	assert.Equal(t, 30.0, table.Rows[0][table.Index("cartera_vencida_total_calculada")])

	assert.Equal(t, "000004", table.Rows[1][table.Index("id_de_grupo")])
	assert.Nil(t, table.Rows[1][table.Index("mora_potencial_mensual")], "null weekly payment")
	assert.Nil(t, table.Rows[1][table.Index("cartera_vencida_total_calculada")])
}

func TestGenerateMora_ThresholdOption(t *testing.T) {
	rows := []domain.PortfolioRow{
		{GroupID: "000001", OverduePct: domain.Num(0.06)},
		{GroupID: "000002", OverduePct: domain.Num(0.15)},
	}
	tests := []struct {
		name      string
		threshold float64
		want      int
	}{
		{"zero uses default", 0, 2},
		{"explicit", 0.1, 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewService(nil, patch.Set{}, Options{MoraThreshold: tc.threshold})
			table, err := svc.GenerateMora(rows)
			require.NoError(t, err)
			assert.Len(t, table.Rows, tc.want)
		})
	}
}

func TestGenerateMora_NoMatchesKeepsSchema(t *testing.T) {
	table, err := newTestService(t, nil).GenerateMora([]domain.PortfolioRow{{OverduePct: domain.Num(0)}})
	require.NoError(t, err)
	assert.Equal(t, domain.DelinquencyColumns, table.Columns)
	assert.Empty(t, table.Rows)
	assert.Equal(t, SheetMora, table.Name)
}

func TestGenerateMora_FromCartera(t *testing.T) {
	svc := newTestService(t, nil)
	_, rows, err := svc.GenerateCartera(fullSources())
	require.NoError(t, err)
	table, err := svc.GenerateMora(rows)
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Equal(t, int64(4), table.Rows[0][table.Index("semana")])
	assert.Equal(t, 40.0, table.Rows[0][table.Index("cartera_vencida_total_calculada")])
	assert.Equal(t, 130.0, table.Rows[0][table.Index("saldo_en_riesgo")])
}
