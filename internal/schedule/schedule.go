// Package schedule computes installment amounts and payment schedules for a
// share policy. It is persistence-free: callers materialize the resulting
// entries as ledger rows and reconcile against them.
//
// Due dates advance by fixed-day steps (30/90/180/365 days), not true
// calendar months or years. This is a deliberate policy choice kept for
// output parity with historical schedules already in the ledger.
package schedule

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// stepDays maps each standard cadence to its fixed due-date stride.
var stepDays = map[InstallmentType]int{
	Monthly:    30,
	Quarterly:  90,
	HalfYearly: 180,
	Annual:     365,
}

// perYear maps each standard cadence to its installments per year.
var perYear = map[InstallmentType]int{
	Monthly:    12,
	Quarterly:  4,
	HalfYearly: 2,
	Annual:     1,
}

// InstallmentAmount returns the amount of a single installment under p.
// For the standard cadences it divides the annual amount across all
// installments of the full duration; for custom it is the custom amount
// verbatim. Unknown cadences are a configuration error.
func InstallmentAmount(p Policy) (decimal.Decimal, error) {
	switch p.InstallmentType {
	case Monthly, Quarterly, HalfYearly, Annual:
		n := perYear[p.InstallmentType] * p.DurationYears
		if n == 0 {
			return decimal.Zero, fmt.Errorf("invalid duration %d", p.DurationYears)
		}
		return p.AnnualAmount.Div(decimal.NewFromInt(int64(n))), nil
	case Custom:
		if p.CustomAmount == nil {
			return decimal.Zero, fmt.Errorf("custom installment amount is required")
		}
		return *p.CustomAmount, nil
	}
	return decimal.Zero, fmt.Errorf("unsupported installment type %q", p.InstallmentType)
}

// TotalInstallments returns the number of scheduled installments under p.
func TotalInstallments(p Policy) (int, error) {
	switch p.InstallmentType {
	case Monthly, Quarterly, HalfYearly, Annual, Custom:
		if p.InstallmentType == Custom {
			return p.DurationYears, nil
		}
		return perYear[p.InstallmentType] * p.DurationYears, nil
	}
	return 0, fmt.Errorf("unsupported installment type %q", p.InstallmentType)
}

// TotalInstallmentAmount returns the total amount the schedule will collect,
// rounded to 2 decimals. With a full custom policy it is period × amount;
// otherwise duration × per-installment amount.
func TotalInstallmentAmount(p Policy) (decimal.Decimal, error) {
	if p.CustomPeriodDays != nil && p.CustomAmount != nil {
		total := decimal.NewFromInt(int64(*p.CustomPeriodDays)).Mul(*p.CustomAmount)
		return total.Round(2), nil
	}
	per, err := InstallmentAmount(p)
	if err != nil {
		return decimal.Zero, err
	}
	return per.Mul(decimal.NewFromInt(int64(p.DurationYears))).Round(2), nil
}

// Generate produces the full installment schedule for p, one entry per
// installment starting at StartDate. Amounts are rounded to 2 decimals.
// A custom policy without a period yields an empty schedule.
func Generate(p Policy) ([]Entry, error) {
	amount, err := InstallmentAmount(p)
	if err != nil {
		return nil, err
	}
	amount = amount.Round(2)

	count, err := TotalInstallments(p)
	if err != nil {
		return nil, err
	}

	step := 0
	if p.InstallmentType == Custom {
		if p.CustomPeriodDays == nil {
			return []Entry{}, nil
		}
		step = *p.CustomPeriodDays
	} else {
		step = stepDays[p.InstallmentType]
	}

	entries := make([]Entry, 0, count)
	due := p.StartDate
	for i := 0; i < count; i++ {
		entries = append(entries, Entry{DueDate: due, Amount: amount})
		due = due.AddDate(0, 0, step)
	}
	return entries, nil
}

// Map renders entries as an ISO-8601 date → amount mapping, the shape the
// API exposes as payment_schedule.
func Map(entries []Entry) map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		m[e.DueDate.Format(dateLayout)] = e.Amount
	}
	return m
}
