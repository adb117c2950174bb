package domain

import (
	"time"

	"shareledger-backend/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Share is a shareholder's equity stake together with its installment
// policy: how the annual amount is split across due dates.
type Share struct {
	ID              uuid.UUID                `gorm:"column:share_id;type:uuid;primaryKey" json:"share_id"`
	ShareholderID   uuid.UUID                `gorm:"column:shareholder_id;type:uuid;not null" json:"shareholder_id"`
	Shareholder     *Shareholder             `gorm:"foreignKey:ShareholderID;constraint:OnDelete:CASCADE" json:"shareholder,omitempty"`
	AnnualAmount    decimal.Decimal          `gorm:"column:annual_amount;type:numeric(10,2);not null" json:"annual_amount"`
	DurationYears   int                      `gorm:"column:duration_years;not null" json:"duration"`
	StartDate       time.Time                `gorm:"column:start_date;type:date;not null" json:"start_date"`
	InstallmentType schedule.InstallmentType `gorm:"column:installment_type;type:varchar(20);not null" json:"installment_type"`

	// Both required together when InstallmentType is custom.
	CustomInstallmentPeriod *int             `gorm:"column:custom_installment_period" json:"custom_installment_period"`
	CustomInstallmentAmount *decimal.Decimal `gorm:"column:custom_installment_amount;type:numeric(10,2)" json:"custom_installment_amount"`

	Payments  []Payment `gorm:"foreignKey:ShareID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt time.Time `json:"created_on"`
	UpdatedAt time.Time `json:"updated_on"`
}

func (Share) TableName() string {
	return "shares"
}

func (s *Share) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Policy extracts the installment policy for the schedule calculator.
func (s *Share) Policy() schedule.Policy {
	return schedule.Policy{
		AnnualAmount:     s.AnnualAmount,
		DurationYears:    s.DurationYears,
		StartDate:        s.StartDate,
		InstallmentType:  s.InstallmentType,
		CustomPeriodDays: s.CustomInstallmentPeriod,
		CustomAmount:     s.CustomInstallmentAmount,
	}
}
