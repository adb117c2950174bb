package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shareledger-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("Payment not found")
	ErrInvalidStatus = errors.New("unsupported payment status")
)

type Service struct {
	DB *gorm.DB
}

type UpdatePaymentInput struct {
	Amount               *decimal.Decimal
	Status               *domain.PaymentStatus
	PaymentDate          *time.Time
	AllocatedInstallment *int
}

func (s *Service) ListPayments(ctx context.Context, shareID *uuid.UUID) ([]domain.Payment, error) {
	q := s.DB.WithContext(ctx).Order("due_date")
	if shareID != nil {
		q = q.Where("share_id = ?", *shareID)
	}
	var payments []domain.Payment
	if err := q.Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch payments: %v", err)
	}
	return payments, nil
}

func (s *Service) GetPayment(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	var payment domain.Payment
	if err := s.DB.WithContext(ctx).Where("payment_id = ?", id).First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

// UpdatePayment applies ledger changes. Marking a payment paid stamps the
// payment date with today when the caller does not supply one.
func (s *Service) UpdatePayment(ctx context.Context, id uuid.UUID, in UpdatePaymentInput) (*domain.Payment, error) {
	payment, err := s.GetPayment(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		payment.Status = *in.Status
	}
	if in.Amount != nil {
		payment.Amount = in.Amount.Round(2)
	}
	if in.PaymentDate != nil {
		payment.PaymentDate = in.PaymentDate
	}
	if in.AllocatedInstallment != nil {
		payment.AllocatedInstallment = in.AllocatedInstallment
	}
	if payment.Status == domain.PaymentPaid && payment.PaymentDate == nil {
		now := time.Now().UTC().Truncate(24 * time.Hour)
		payment.PaymentDate = &now
	}
	if err := s.DB.WithContext(ctx).Save(payment).Error; err != nil {
		return nil, fmt.Errorf("Failed to update payment: %v", err)
	}
	return payment, nil
}

func (s *Service) DeletePayment(ctx context.Context, id uuid.UUID) error {
	res := s.DB.WithContext(ctx).Delete(&domain.Payment{}, "payment_id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("Failed to delete payment: %v", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SumPaidForShare returns the total amount of paid installments for a share.
func (s *Service) SumPaidForShare(ctx context.Context, shareID uuid.UUID) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := s.DB.WithContext(ctx).Model(&domain.Payment{}).
		Where("share_id = ? AND status = ?", shareID, domain.PaymentPaid).
		Select("SUM(amount)").Scan(&total).Error
	if err != nil {
		return decimal.Zero, fmt.Errorf("Failed to sum payments: %v", err)
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

// CountPaidForShare returns how many installments of a share are paid.
func (s *Service) CountPaidForShare(ctx context.Context, shareID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&domain.Payment{}).
		Where("share_id = ? AND status = ?", shareID, domain.PaymentPaid).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("Failed to count payments: %v", err)
	}
	return count, nil
}

// CountForShare returns how many payment rows exist for a share, any status.
func (s *Service) CountForShare(ctx context.Context, shareID uuid.UUID) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&domain.Payment{}).
		Where("share_id = ?", shareID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("Failed to count payments: %v", err)
	}
	return count, nil
}
