package cartera

import (
	"math"
	"time"

	"github.com/uzzielvz/cartera-generator/internal/domain"
)

const (
	// weekly payments behind the initial current balance
	initialPeriods = 16
	// share of the credit amount counted as guarantee against arrears
	creditGuaranteeShare = 0.1
	daysPerWeek          = 7
)

// formulaInput is everything the status-branched formulas read.
type formulaInput struct {
	aging       domain.AgingRecord
	status      domain.StatusRecord
	collections domain.CollectionRecord
	credit      domain.Value
	// systemFromAging selects saldo_total as the system balance source.
	systemFromAging bool
	now             time.Time
}

// branchFields are the columns whose formula depends on the status.
type branchFields struct {
	SystemBalance      domain.Value
	OutstandingBalance domain.Value
	OverdueTotal       domain.Value
	OverduePct         domain.Value
	Members            domain.Value
	AverageLoan        domain.Value
	Week               domain.Value
	PaymentsDue        domain.Value
	TotalPayments      domain.Value
}

type formulaSet func(in formulaInput) branchFields

// formulaSets selects one independent formula set per status.
var formulaSets = map[domain.Status]formulaSet{
	domain.StatusVigente:         activeFormulas,
	domain.StatusDesertorSinMora: clearedFormulas,
}

func formulasFor(st domain.Status) formulaSet {
	if f, ok := formulaSets[st]; ok {
		return f
	}
	return activeFormulas
}

// clearedFormulas: the credit is closed, balances are zero and the week
// counter is the time elapsed since the credit start.
func clearedFormulas(in formulaInput) branchFields {
	members := in.aging.Members.OrValue(in.status.Members)
	return branchFields{
		SystemBalance:      domain.Num(0),
		OutstandingBalance: domain.Num(0),
		OverdueTotal:       domain.Num(0),
		OverduePct:         domain.Num(0),
		Members:            members,
		AverageLoan:        in.aging.LoanedAmount.Div(members),
		Week:               weeksSince(in.aging.CycleStart, in.now),
		PaymentsDue:        domain.Num(0),
		TotalPayments:      in.aging.Term,
	}
}

// activeFormulas: balances come from the status report, the week counter from
// the payments counted by collections.
func activeFormulas(in formulaInput) branchFields {
	system := domain.Num(in.status.Current.Or(0))
	if in.systemFromAging {
		system = domain.Num(in.aging.TotalBalance.Or(0))
	}
	made := in.collections.PaymentsMade.Or(0)
	due := in.collections.PaymentsDue.Or(0)
	members := in.status.Members.OrValue(in.aging.Members)
	return branchFields{
		SystemBalance:      system,
		OutstandingBalance: domain.Num(in.status.Current.Or(0)),
		OverdueTotal:       domain.Num(in.status.Overdue.Or(0)),
		OverduePct:         domain.Num(in.status.OverduePct.Or(0) / 100),
		Members:            members,
		AverageLoan:        in.credit.Div(members),
		Week:               domain.Num(made - due),
		PaymentsDue:        domain.Num(due),
		TotalPayments:      domain.Num(made),
	}
}

// weeksSince counts whole weeks from start to now; no start date counts as 0.
func weeksSince(start domain.Date, now time.Time) domain.Value {
	if !start.Valid {
		return domain.Num(0)
	}
	days := math.Floor(wallClock(now).Sub(start.Time).Hours() / 24)
	return domain.Num(math.Trunc(days / daysPerWeek))
}

// wallClock drops the zone so now compares with the zone-less sheet dates.
func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// savingsConsumed: with arrears, savings plus 10% of the credit cover them up
// to the overdue amount.
func savingsConsumed(overdue, savings, credit domain.Value) domain.Value {
	if !overdue.Gt(0) {
		return domain.Num(0)
	}
	cover := savings.Add(credit.Mul(domain.Num(creditGuaranteeShare)))
	if !cover.Valid {
		return domain.Null
	}
	return domain.Num(math.Min(cover.Float, overdue.Float))
}

// computedBalance is the straight-line amortization floored by the system balance.
func computedBalance(week, payment, initial, system domain.Value) domain.Value {
	return domain.Max(week.Mul(payment).Sub(initial).Neg(), system)
}

// savingsRatio is savings over the payments due so far; degenerate ratios are 0.
func savingsRatio(savings, payment, week domain.Value) (domain.Value, bool) {
	r := savings.Div(payment.Mul(week))
	if !r.Finite() {
		return domain.Num(0), true
	}
	return r, false
}
