package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus is the closed set of ledger states for an installment.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentPaid      PaymentStatus = "paid"
	PaymentOverdue   PaymentStatus = "overdue"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Valid reports whether s is one of the known payment states.
func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid, PaymentOverdue, PaymentCancelled:
		return true
	}
	return false
}

// Payment is one scheduled installment against a share. One row is
// materialized per schedule entry at share creation and reconciled by
// (share, due_date) on share updates.
type Payment struct {
	ID                   uuid.UUID       `gorm:"column:payment_id;type:uuid;primaryKey" json:"payment_id"`
	ShareID              uuid.UUID       `gorm:"column:share_id;type:uuid;not null;index" json:"share_id"`
	DueDate              time.Time       `gorm:"column:due_date;type:date;not null" json:"due_date"`
	Amount               decimal.Decimal `gorm:"column:amount;type:numeric(10,2);not null" json:"amount"`
	Status               PaymentStatus   `gorm:"column:status;type:varchar(24);not null;default:pending" json:"status"`
	PaymentDate          *time.Time      `gorm:"column:payment_date;type:date" json:"payment_date"`
	AllocatedInstallment *int            `gorm:"column:allocated_installment" json:"allocated_installment"`
	CreatedAt            time.Time       `json:"created_on"`
	UpdatedAt            time.Time       `json:"updated_on"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
