package shares

import (
	"context"
	"testing"
	"time"

	paysvc "shareledger-backend/internal/application/payments"
	"shareledger-backend/internal/domain"
	"shareledger-backend/internal/schedule"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupShareTest(t *testing.T) (*Service, *gorm.DB, *domain.Shareholder) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Country{}, &domain.Shareholder{}, &domain.Share{},
		&domain.Payment{}, &domain.AuditEvent{},
	))

	holder := &domain.Shareholder{Email: "owner@example.com", Name: "Owner"}
	require.NoError(t, db.Create(holder).Error)

	svc := &Service{DB: db, Payments: &paysvc.Service{DB: db}}
	return svc, db, holder
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func monthlyInput(shareholderID uuid.UUID) CreateShareInput {
	return CreateShareInput{
		ShareholderID:   shareholderID,
		AnnualAmount:    dec("12000.00"),
		DurationYears:   1,
		StartDate:       date(2024, time.January, 1),
		InstallmentType: schedule.Monthly,
	}
}

func TestCreateShare_MaterializesPendingPayments(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, monthlyInput(holder.ID))
	require.NoError(t, err)

	var rows []domain.Payment
	require.NoError(t, db.Where("share_id = ?", view.ID).Order("due_date").Find(&rows).Error)
	require.Len(t, rows, 12)
	for i, p := range rows {
		assert.Equal(t, domain.PaymentPending, p.Status)
		assert.True(t, p.Amount.Equal(dec("1000.00")), "amount %s", p.Amount)
		require.NotNil(t, p.AllocatedInstallment)
		assert.Equal(t, i+1, *p.AllocatedInstallment)
	}
	assert.Equal(t, "2024-01-01", rows[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-01-31", rows[1].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-11-26", rows[11].DueDate.Format("2006-01-02"))

	assert.Len(t, view.PaymentSchedule, 12)
	assert.Equal(t, 12, view.RemainingInstallments)
	assert.True(t, view.OutstandingAmount.Equal(dec("12000.00")), "outstanding %s", view.OutstandingAmount)
	assert.True(t, view.TotalInstallmentAmount.Equal(dec("1000.00")))
}

func TestCreateShare_CustomHasDueDates(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	period := 45
	amount := dec("400.00")

	view, err := svc.CreateShare(context.Background(), CreateShareInput{
		ShareholderID:           holder.ID,
		AnnualAmount:            dec("5000.00"),
		DurationYears:           3,
		StartDate:               date(2024, time.June, 1),
		InstallmentType:         schedule.Custom,
		CustomInstallmentPeriod: &period,
		CustomInstallmentAmount: &amount,
	})
	require.NoError(t, err)

	var rows []domain.Payment
	require.NoError(t, db.Where("share_id = ?", view.ID).Order("due_date").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, "2024-06-01", rows[0].DueDate.Format("2006-01-02"))
	assert.Equal(t, "2024-07-16", rows[1].DueDate.Format("2006-01-02"))
	for _, p := range rows {
		assert.True(t, p.Amount.Equal(dec("400.00")))
	}
}

func TestCreateShare_UnknownShareholder(t *testing.T) {
	svc, _, _ := setupShareTest(t)
	_, err := svc.CreateShare(context.Background(), monthlyInput(uuid.New()))
	assert.Equal(t, ErrShareholderNotFound, err)
}

func TestCreateShareInput_Validate(t *testing.T) {
	in := CreateShareInput{
		ShareholderID:   uuid.New(),
		AnnualAmount:    dec("1000.00"),
		DurationYears:   1,
		InstallmentType: schedule.Custom,
	}
	fields := in.Validate()
	require.NotNil(t, fields)
	assert.Contains(t, fields, "custom_installment_amount")

	in.InstallmentType = "weekly"
	fields = in.Validate()
	require.NotNil(t, fields)
	assert.Contains(t, fields, "installment_type")

	in.InstallmentType = schedule.Monthly
	in.DurationYears = 6
	fields = in.Validate()
	require.NotNil(t, fields)
	assert.Contains(t, fields, "duration")

	in.DurationYears = 3
	assert.Nil(t, in.Validate())
}

func TestOutstanding_ConvergesToZeroWhenAllPaid(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, monthlyInput(holder.ID))
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Payment{}).
		Where("share_id = ?", view.ID).
		Update("status", domain.PaymentPaid).Error)

	got, err := svc.GetShare(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, got.OutstandingAmount.IsZero(), "outstanding %s", got.OutstandingAmount)
	assert.Equal(t, 0, got.RemainingInstallments)
}

func TestOutstanding_OverpaymentGoesNegativeUnlessClamped(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, monthlyInput(holder.ID))
	require.NoError(t, err)

	// Overpay every installment.
	require.NoError(t, db.Model(&domain.Payment{}).
		Where("share_id = ?", view.ID).
		Updates(map[string]interface{}{"status": domain.PaymentPaid, "amount": "1100.00"}).Error)

	got, err := svc.GetShare(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, got.OutstandingAmount.Equal(dec("-1200.00")), "outstanding %s", got.OutstandingAmount)

	svc.ClampOutstanding = true
	got, err = svc.GetShare(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, got.OutstandingAmount.IsZero())
}

func TestUpdateShare_ShrinkingScheduleRemovesOrphans(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	in := monthlyInput(holder.ID)
	in.DurationYears = 2
	view, err := svc.CreateShare(ctx, in)
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Where("share_id = ?", view.ID).Count(&count).Error)
	assert.EqualValues(t, 24, count)

	one := 1
	_, err = svc.UpdateShare(ctx, view.ID, UpdateShareInput{DurationYears: &one})
	require.NoError(t, err)

	require.NoError(t, db.Model(&domain.Payment{}).Where("share_id = ?", view.ID).Count(&count).Error)
	assert.EqualValues(t, 12, count)
}

func TestUpdateShare_KeepsStatusOverwritesAmount(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, monthlyInput(holder.ID))
	require.NoError(t, err)

	// Pay the first installment before the policy changes.
	var first domain.Payment
	require.NoError(t, db.Where("share_id = ?", view.ID).Order("due_date").First(&first).Error)
	require.NoError(t, db.Model(&first).Update("status", domain.PaymentPaid).Error)

	newAmount := dec("24000.00")
	_, err = svc.UpdateShare(ctx, view.ID, UpdateShareInput{AnnualAmount: &newAmount})
	require.NoError(t, err)

	var after domain.Payment
	require.NoError(t, db.Where("payment_id = ?", first.ID).First(&after).Error)
	assert.Equal(t, domain.PaymentPaid, after.Status)
	assert.True(t, after.Amount.Equal(dec("2000.00")), "amount %s", after.Amount)
}

func TestUpdateShare_RejectsInvalidPolicy(t *testing.T) {
	svc, _, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, monthlyInput(holder.ID))
	require.NoError(t, err)

	custom := schedule.Custom
	_, err = svc.UpdateShare(ctx, view.ID, UpdateShareInput{InstallmentType: &custom})
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Fields, "custom_installment_amount")
}

func TestHalfYearly_UsesCanonicalEnum(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, CreateShareInput{
		ShareholderID:   holder.ID,
		AnnualAmount:    dec("9000.00"),
		DurationYears:   2,
		StartDate:       date(2024, time.January, 1),
		InstallmentType: schedule.HalfYearly,
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Where("share_id = ?", view.ID).Count(&count).Error)
	assert.EqualValues(t, 4, count)
	assert.Equal(t, 4, view.RemainingInstallments)
}

func TestDeleteShare_CascadesAndAudits(t *testing.T) {
	svc, db, holder := setupShareTest(t)
	ctx := context.Background()

	view, err := svc.CreateShare(ctx, monthlyInput(holder.ID))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteShare(ctx, view.ID))

	var count int64
	require.NoError(t, db.Model(&domain.Payment{}).Where("share_id = ?", view.ID).Count(&count).Error)
	assert.Zero(t, count)

	var events []domain.AuditEvent
	require.NoError(t, db.Where("entity_id = ?", view.ID).Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, "share", events[0].EntityType)
	assert.Equal(t, "cascade_delete", events[0].Action)
}
