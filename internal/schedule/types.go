package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentType is the closed set of payment cadences a share can carry.
type InstallmentType string

const (
	Monthly    InstallmentType = "monthly"
	Quarterly  InstallmentType = "quarterly"
	HalfYearly InstallmentType = "half_yearly"
	Annual     InstallmentType = "annual"
	Custom     InstallmentType = "custom"
)

// Valid reports whether t is one of the known cadences.
func (t InstallmentType) Valid() bool {
	switch t {
	case Monthly, Quarterly, HalfYearly, Annual, Custom:
		return true
	}
	return false
}

// InstallmentTypes lists all valid cadences, for validation messages.
func InstallmentTypes() []InstallmentType {
	return []InstallmentType{Monthly, Quarterly, HalfYearly, Annual, Custom}
}

// Policy is the installment policy of a share: everything needed to compute
// the per-installment amount and the full due-date schedule.
type Policy struct {
	AnnualAmount    decimal.Decimal
	DurationYears   int
	StartDate       time.Time
	InstallmentType InstallmentType

	// Both set together when InstallmentType is Custom.
	CustomPeriodDays *int
	CustomAmount     *decimal.Decimal
}

// Entry is a single scheduled installment.
type Entry struct {
	DueDate time.Time
	Amount  decimal.Decimal
}
