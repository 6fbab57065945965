package cartera

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/uzzielvz/cartera-generator/internal/core/normalize"
	"github.com/uzzielvz/cartera-generator/internal/core/patch"
	"github.com/uzzielvz/cartera-generator/internal/domain"
)

// DefaultMoraThreshold is the overdue fraction a row must exceed to enter MORA.
const DefaultMoraThreshold = domain.DefaultMoraThreshold

type Service interface {
	GenerateCartera(src *domain.Sources) (*domain.Table, []domain.PortfolioRow, error)
	GenerateMora(rows []domain.PortfolioRow) (*domain.Table, error)
}

type Options struct {
	// Now is the clock for the elapsed-weeks formula. Defaults to time.Now.
	Now           func() time.Time
	// MoraThreshold zero means DefaultMoraThreshold.
	MoraThreshold float64
}

func DefaultOptions() Options {
	return Options{Now: time.Now, MoraThreshold: DefaultMoraThreshold}
}

type service struct {
	logger  *zap.Logger
	patches patch.Set
	opts    Options
}

func NewService(logger *zap.Logger, patches patch.Set, opts Options) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MoraThreshold == 0 {
		opts.MoraThreshold = DefaultMoraThreshold
	}
	return &service{logger: logger, patches: patches, opts: opts}
}

// buildStats counts the recovered data-quality issues of one run.
type buildStats struct {
	unknownStatus int
	degenerate    int
	byStatus      map[domain.Status]int
}

// GenerateCartera joins the sources on group id and derives one portfolio row
// per aging record.
func (svc *service) GenerateCartera(src *domain.Sources) (*domain.Table, []domain.PortfolioRow, error) {
	if src == nil || src.Aging == nil {
		return nil, nil, errors.New("generate cartera: no aging table")
	}

	rows, stats := svc.buildRows(src)

	table, err := project(SheetCartera, domain.PortfolioColumns, portfolioCells, rows)
	if err != nil {
		return nil, nil, err
	}

	if stats.degenerate > 0 {
		svc.logger.Warn("degenerate savings ratios normalized to 0", zap.Int("rows", stats.degenerate))
	}
	svc.logger.Info("cartera generated",
		zap.Int("rows", len(rows)),
		zap.Int("vigente", stats.byStatus[domain.StatusVigente]),
		zap.Int("desertor_sin_mora", stats.byStatus[domain.StatusDesertorSinMora]),
		zap.Int("unknown_status", stats.unknownStatus),
	)
	return table, rows, nil
}

// Sheet names of the two generated tables.
const (
	SheetCartera = "CARTERA"
	SheetMora    = "MORA"
)

func (svc *service) buildRows(src *domain.Sources) ([]domain.PortfolioRow, buildStats) {
	joinedRows, js := svc.leftJoin(src)
	svc.logger.Info("sources joined",
		zap.Int("aging", len(joinedRows)),
		zap.Int("status_missing", js.statusMiss),
		zap.Int("collections_missing", js.collectionsMiss),
		zap.Int("savings_missing", js.savingsMiss),
	)

	now := svc.opts.Now()
	stats := buildStats{byStatus: map[domain.Status]int{}}
	rows := make([]domain.PortfolioRow, 0, len(joinedRows))
	for _, j := range joinedRows {
		st, unknown := Classify(j.aging.Situation)
		if unknown {
			stats.unknownStatus++
			svc.logger.Warn("unrecognized credit situation, defaulting to Vigente",
				zap.String("group_id", j.aging.GroupID),
				zap.String("situacion_credito", j.aging.Situation),
			)
		}
		stats.byStatus[st]++

		row, degenerate := svc.buildRow(j, st, src.Aging.HasTotalBalance, now)
		if degenerate {
			stats.degenerate++
		}
		rows = append(rows, row)
	}
	return rows, stats
}

// buildRow evaluates every derived field of one joined record. The second
// result reports a savings ratio that had to be normalized.
func (svc *service) buildRow(j joined, st domain.Status, systemFromAging bool, now time.Time) (domain.PortfolioRow, bool) {
	a := j.aging
	credit := a.LoanedAmount.OrValue(a.DisbursedAmount)
	cycle := j.status.Cycle.OrValue(a.Cycle)

	b := formulasFor(st)(formulaInput{
		aging:           a,
		status:          j.status,
		collections:     j.collections,
		credit:          credit,
		systemFromAging: systemFromAging,
		now:             now,
	})

	// an unparseable start date is blank in the output, not echoed as text
	start := a.CycleStart
	if !start.Valid {
		start.Text = ""
	}

	payment := a.WeeklyPayment
	initial := payment.Mul(domain.Num(initialPeriods))
	computed := computedBalance(b.Week, payment, initial, b.SystemBalance)
	savings := domain.Num(j.savings.Accumulated.Or(0))
	consumed := savingsConsumed(b.OverdueTotal, savings, credit)

	atRisk := domain.Num(0)
	if b.OverdueTotal.Gt(0) {
		atRisk = b.OutstandingBalance
	}
	pct, degenerate := savingsRatio(savings, payment, b.Week)

	return domain.PortfolioRow{
		Manager:            a.Manager,
		Promoter:           svc.patches.Promoter(a.Promoter),
		GroupID:            a.GroupID,
		GroupName:          a.GroupName,
		Cycle:              cycle,
		CreditAmount:       credit,
		GroupType:          a.GroupType,
		CreditStart:        start,
		Term:               a.Term,
		MeetingDay:         a.MeetingDay,
		MeetingTime:        a.MeetingTime,
		Periodicity:        a.Periodicity,
		WeeklyPayment:      payment,
		NextPayment:        j.collections.NextPayment,
		SystemBalance:      b.SystemBalance,
		InitialBalance:     initial,
		ComputedBalance:    computed,
		OutstandingBalance: b.OutstandingBalance,
		BalanceDifference:  b.SystemBalance.Sub(computed),
		SavingsConsumed:    consumed,
		StatisticalOverdue: b.OverdueTotal.Sub(consumed),
		OverdueTotal:       b.OverdueTotal,
		OverduePct:         b.OverduePct,
		AtRiskBalance:      atRisk,
		SavingsBalance:     savings,
		AverageLoan:        b.AverageLoan,
		Members:            b.Members,
		Week:               b.Week,
		PaymentsCovered:    b.TotalPayments.Sub(b.PaymentsDue),
		PaymentsDue:        b.PaymentsDue,
		TotalPayments:      b.TotalPayments,
		DaysDelinquent:     a.DaysDelinquent,
		AccumulatedSavings: savings,
		SavingsPct:         pct,
		Status:             st,
		DepositCode:        normalize.DepositCode(a.GroupID, cycle),
	}, degenerate
}
