package shares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	paysvc "shareledger-backend/internal/application/payments"
	"shareledger-backend/internal/domain"
	"shareledger-backend/internal/schedule"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("Share not found")
	ErrShareholderNotFound = errors.New("Shareholder not found")
)

const dateLayout = "2006-01-02"

type Service struct {
	DB       *gorm.DB
	Payments *paysvc.Service

	// ClampOutstanding clamps the derived outstanding amount at zero on
	// overpayment instead of reporting a negative balance.
	ClampOutstanding bool
}

type CreateShareInput struct {
	ShareholderID           uuid.UUID
	AnnualAmount            decimal.Decimal
	DurationYears           int
	StartDate               time.Time
	InstallmentType         schedule.InstallmentType
	CustomInstallmentPeriod *int
	CustomInstallmentAmount *decimal.Decimal
}

type UpdateShareInput struct {
	AnnualAmount            *decimal.Decimal
	DurationYears           *int
	StartDate               *time.Time
	InstallmentType         *schedule.InstallmentType
	CustomInstallmentPeriod *int
	CustomInstallmentAmount *decimal.Decimal
}

// View is a share as the API exposes it: policy fields plus figures derived
// on read, never stored.
type View struct {
	domain.Share
	TotalInstallmentAmount decimal.Decimal            `json:"total_installment_amount"`
	RemainingInstallments  int                        `json:"remaining_installments"`
	OutstandingAmount      decimal.Decimal            `json:"outstanding_amount"`
	PaymentSchedule        map[string]decimal.Decimal `json:"payment_schedule"`
}

// Validate returns field-level validation messages, empty when the input is
// a well-formed installment policy.
func (in CreateShareInput) Validate() map[string]string {
	fields := map[string]string{}
	if in.ShareholderID == uuid.Nil {
		fields["shareholder"] = "Required."
	}
	if !in.AnnualAmount.IsPositive() {
		fields["annual_amount"] = "Must be greater than zero."
	}
	if in.DurationYears < 1 || in.DurationYears > 5 {
		fields["duration"] = "Must be between 1 and 5 years."
	}
	if !in.InstallmentType.Valid() {
		fields["installment_type"] = fmt.Sprintf("Unsupported installment type %q.", in.InstallmentType)
	}
	if in.InstallmentType == schedule.Custom && in.CustomInstallmentAmount == nil {
		fields["custom_installment_amount"] = "Required for custom installment type."
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

// CreateShare creates the share and materializes one pending payment per
// schedule entry in a single transaction, so a share is never visible
// without its ledger rows.
func (s *Service) CreateShare(ctx context.Context, in CreateShareInput) (*View, error) {
	if err := s.DB.WithContext(ctx).First(&domain.Shareholder{}, "shareholder_id = ?", in.ShareholderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrShareholderNotFound
		}
		return nil, err
	}

	share := &domain.Share{
		ShareholderID:           in.ShareholderID,
		AnnualAmount:            in.AnnualAmount.Round(2),
		DurationYears:           in.DurationYears,
		StartDate:               in.StartDate,
		InstallmentType:         in.InstallmentType,
		CustomInstallmentPeriod: in.CustomInstallmentPeriod,
		CustomInstallmentAmount: in.CustomInstallmentAmount,
	}

	entries, err := schedule.Generate(share.Policy())
	if err != nil {
		return nil, err
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Create(share).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("Failed to create share: %v", err)
	}
	for i, entry := range entries {
		idx := i + 1
		payment := &domain.Payment{
			ShareID:              share.ID,
			DueDate:              entry.DueDate,
			Amount:               entry.Amount,
			Status:               domain.PaymentPending,
			AllocatedInstallment: &idx,
		}
		if err := tx.Create(payment).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("Failed to create payment: %v", err)
		}
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("Failed to create share: %v", err)
	}

	return s.GetShare(ctx, share.ID)
}

// UpdateShare applies policy changes and reconciles the payment ledger
// against the regenerated schedule as a full diff: amounts are overwritten
// for kept due dates, new due dates gain pending rows, and rows whose due
// date left the schedule are removed. Runs in one transaction per share so
// concurrent updates serialize on the row locks.
func (s *Service) UpdateShare(ctx context.Context, id uuid.UUID, in UpdateShareInput) (*View, error) {
	var share domain.Share
	if err := s.DB.WithContext(ctx).Where("share_id = ?", id).First(&share).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if in.AnnualAmount != nil {
		share.AnnualAmount = in.AnnualAmount.Round(2)
	}
	if in.DurationYears != nil {
		share.DurationYears = *in.DurationYears
	}
	if in.StartDate != nil {
		share.StartDate = *in.StartDate
	}
	if in.InstallmentType != nil {
		share.InstallmentType = *in.InstallmentType
	}
	if in.CustomInstallmentPeriod != nil {
		share.CustomInstallmentPeriod = in.CustomInstallmentPeriod
	}
	if in.CustomInstallmentAmount != nil {
		share.CustomInstallmentAmount = in.CustomInstallmentAmount
	}

	if fields := (CreateShareInput{
		ShareholderID:           share.ShareholderID,
		AnnualAmount:            share.AnnualAmount,
		DurationYears:           share.DurationYears,
		StartDate:               share.StartDate,
		InstallmentType:         share.InstallmentType,
		CustomInstallmentPeriod: share.CustomInstallmentPeriod,
		CustomInstallmentAmount: share.CustomInstallmentAmount,
	}).Validate(); fields != nil {
		return nil, &ValidationError{Fields: fields}
	}

	entries, err := schedule.Generate(share.Policy())
	if err != nil {
		return nil, err
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if err := tx.Save(&share).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("Failed to update share: %v", err)
	}
	if err := reconcilePayments(tx, &share, entries); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("Failed to update share: %v", err)
	}

	return s.GetShare(ctx, id)
}

// ValidationError carries field-level messages out of the service layer.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "Validation failed"
}

func reconcilePayments(tx *gorm.DB, share *domain.Share, entries []schedule.Entry) error {
	var existing []domain.Payment
	if err := tx.Where("share_id = ?", share.ID).Find(&existing).Error; err != nil {
		return fmt.Errorf("Failed to fetch payments: %v", err)
	}
	byDate := make(map[string]*domain.Payment, len(existing))
	for i := range existing {
		byDate[existing[i].DueDate.Format(dateLayout)] = &existing[i]
	}

	scheduled := make(map[string]bool, len(entries))
	for i, entry := range entries {
		key := entry.DueDate.Format(dateLayout)
		scheduled[key] = true
		idx := i + 1
		if payment, ok := byDate[key]; ok {
			payment.Amount = entry.Amount
			payment.AllocatedInstallment = &idx
			if err := tx.Save(payment).Error; err != nil {
				return fmt.Errorf("Failed to update payment: %v", err)
			}
			continue
		}
		payment := &domain.Payment{
			ShareID:              share.ID,
			DueDate:              entry.DueDate,
			Amount:               entry.Amount,
			Status:               domain.PaymentPending,
			AllocatedInstallment: &idx,
		}
		if err := tx.Create(payment).Error; err != nil {
			return fmt.Errorf("Failed to create payment: %v", err)
		}
	}

	// Rows whose due date fell out of the schedule would otherwise linger as
	// orphans when the duration or cadence shrinks.
	for key, payment := range byDate {
		if scheduled[key] {
			continue
		}
		if err := tx.Delete(&domain.Payment{}, "payment_id = ?", payment.ID).Error; err != nil {
			return fmt.Errorf("Failed to delete payment: %v", err)
		}
	}
	return nil
}

func (s *Service) GetShare(ctx context.Context, id uuid.UUID) (*View, error) {
	var share domain.Share
	err := s.DB.WithContext(ctx).
		Preload("Shareholder").Preload("Shareholder.Country").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("due_date") }).
		Where("share_id = ?", id).First(&share).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.buildView(ctx, &share)
}

func (s *Service) ListShares(ctx context.Context) ([]View, error) {
	var shares []domain.Share
	err := s.DB.WithContext(ctx).
		Preload("Shareholder").Preload("Shareholder.Country").
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("due_date") }).
		Order("created_at DESC").Find(&shares).Error
	if err != nil {
		return nil, fmt.Errorf("Failed to fetch shares: %v", err)
	}
	views := make([]View, 0, len(shares))
	for i := range shares {
		view, err := s.buildView(ctx, &shares[i])
		if err != nil {
			return nil, err
		}
		views = append(views, *view)
	}
	return views, nil
}

// DeleteShare cascades to the share's payments in one transaction and
// records an audit event with the cascade count.
func (s *Service) DeleteShare(ctx context.Context, id uuid.UUID) error {
	var share domain.Share
	if err := s.DB.WithContext(ctx).Where("share_id = ?", id).First(&share).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ErrNotFound
		}
		return err
	}

	tx := s.DB.WithContext(ctx).Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	var paymentCount int64
	if err := tx.Model(&domain.Payment{}).Where("share_id = ?", id).Count(&paymentCount).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete share: %v", err)
	}
	if err := tx.Where("share_id = ?", id).Delete(&domain.Payment{}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete payments: %v", err)
	}
	if err := tx.Delete(&domain.Share{}, "share_id = ?", id).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to delete share: %v", err)
	}
	detailBytes, _ := json.Marshal(map[string]interface{}{
		"payments_deleted": paymentCount,
	})
	if err := tx.Create(&domain.AuditEvent{
		EntityType: "share",
		EntityID:   id,
		Action:     "cascade_delete",
		Details:    datatypes.JSON(detailBytes),
	}).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("Failed to record audit event: %v", err)
	}
	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("Failed to delete share: %v", err)
	}
	return nil
}

// RemainingInstallments is the number of scheduled installments not yet
// paid: total scheduled count minus count of paid ledger rows.
func (s *Service) RemainingInstallments(ctx context.Context, share *domain.Share) (int, error) {
	total, err := schedule.TotalInstallments(share.Policy())
	if err != nil {
		return 0, err
	}
	paid, err := s.Payments.CountPaidForShare(ctx, share.ID)
	if err != nil {
		return 0, err
	}
	return total - int(paid), nil
}

// OutstandingAmount is the annual amount minus the sum of paid installments,
// rounded to 2 decimals. Unclamped by default, so overpayment reads as a
// negative balance unless ClampOutstanding is set.
func (s *Service) OutstandingAmount(ctx context.Context, share *domain.Share) (decimal.Decimal, error) {
	paid, err := s.Payments.SumPaidForShare(ctx, share.ID)
	if err != nil {
		return decimal.Zero, err
	}
	outstanding := share.AnnualAmount.Sub(paid).Round(2)
	if s.ClampOutstanding && outstanding.IsNegative() {
		return decimal.Zero, nil
	}
	return outstanding, nil
}

func (s *Service) buildView(ctx context.Context, share *domain.Share) (*View, error) {
	policy := share.Policy()
	total, err := schedule.TotalInstallmentAmount(policy)
	if err != nil {
		return nil, err
	}
	entries, err := schedule.Generate(policy)
	if err != nil {
		return nil, err
	}
	remaining, err := s.RemainingInstallments(ctx, share)
	if err != nil {
		return nil, err
	}
	outstanding, err := s.OutstandingAmount(ctx, share)
	if err != nil {
		return nil, err
	}
	return &View{
		Share:                  *share,
		TotalInstallmentAmount: total,
		RemainingInstallments:  remaining,
		OutstandingAmount:      outstanding,
		PaymentSchedule:        schedule.Map(entries),
	}, nil
}
