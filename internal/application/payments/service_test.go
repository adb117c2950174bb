package payments

import (
	"context"
	"testing"
	"time"

	"shareledger-backend/internal/domain"
	"shareledger-backend/internal/schedule"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupPaymentsTest(t *testing.T) (*Service, *gorm.DB, *domain.Share) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Country{}, &domain.Shareholder{}, &domain.Share{}, &domain.Payment{},
	))

	holder := &domain.Shareholder{Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, db.Create(holder).Error)
	share := &domain.Share{
		ShareholderID:   holder.ID,
		AnnualAmount:    decimal.NewFromInt(12000),
		DurationYears:   1,
		StartDate:       time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		InstallmentType: schedule.Monthly,
	}
	require.NoError(t, db.Create(share).Error)
	return &Service{DB: db}, db, share
}

func seedPayment(t *testing.T, db *gorm.DB, share *domain.Share, due time.Time, amount string, status domain.PaymentStatus) *domain.Payment {
	d, err := decimal.NewFromString(amount)
	require.NoError(t, err)
	p := &domain.Payment{ShareID: share.ID, DueDate: due, Amount: d, Status: status}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestUpdatePayment_MarkPaidStampsDate(t *testing.T) {
	svc, db, share := setupPaymentsTest(t)
	p := seedPayment(t, db, share, share.StartDate, "1000.00", domain.PaymentPending)

	paid := domain.PaymentPaid
	updated, err := svc.UpdatePayment(context.Background(), p.ID, UpdatePaymentInput{Status: &paid})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, updated.Status)
	require.NotNil(t, updated.PaymentDate)
}

func TestUpdatePayment_InvalidStatus(t *testing.T) {
	svc, db, share := setupPaymentsTest(t)
	p := seedPayment(t, db, share, share.StartDate, "1000.00", domain.PaymentPending)

	bogus := domain.PaymentStatus("settled")
	_, err := svc.UpdatePayment(context.Background(), p.ID, UpdatePaymentInput{Status: &bogus})
	assert.Equal(t, ErrInvalidStatus, err)
}

func TestAggregates_OnlyCountPaidRows(t *testing.T) {
	svc, db, share := setupPaymentsTest(t)
	ctx := context.Background()

	seedPayment(t, db, share, share.StartDate, "1000.00", domain.PaymentPaid)
	seedPayment(t, db, share, share.StartDate.AddDate(0, 0, 30), "1000.00", domain.PaymentPaid)
	seedPayment(t, db, share, share.StartDate.AddDate(0, 0, 60), "1000.00", domain.PaymentPending)
	seedPayment(t, db, share, share.StartDate.AddDate(0, 0, 90), "1000.00", domain.PaymentCancelled)

	sum, err := svc.SumPaidForShare(ctx, share.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.NewFromInt(2000)), "sum %s", sum)

	paidCount, err := svc.CountPaidForShare(ctx, share.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, paidCount)

	total, err := svc.CountForShare(ctx, share.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
}

func TestAggregates_EmptyLedger(t *testing.T) {
	svc, _, share := setupPaymentsTest(t)
	sum, err := svc.SumPaidForShare(context.Background(), share.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestListPayments_FilterByShare(t *testing.T) {
	svc, db, share := setupPaymentsTest(t)
	seedPayment(t, db, share, share.StartDate, "1000.00", domain.PaymentPending)

	rows, err := svc.ListPayments(context.Background(), &share.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	other := share.ID
	other[0] ^= 0xff
	rows, err = svc.ListPayments(context.Background(), &other)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDeletePayment_NotFound(t *testing.T) {
	svc, _, share := setupPaymentsTest(t)
	missing := share.ID
	missing[0] ^= 0xff
	err := svc.DeletePayment(context.Background(), missing)
	assert.Equal(t, ErrNotFound, err)
}
