package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paysvc "shareledger-backend/internal/application/payments"
	"shareledger-backend/internal/domain"
	"shareledger-backend/internal/schedule"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Service struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Payments *paysvc.Service
	CacheTTL time.Duration
}

// Summary aggregates the window: what was expected from shares starting in
// it versus what the filtered payments amount to.
type Summary struct {
	Month          string          `json:"month"`
	Year           string          `json:"year"`
	TotalCollected decimal.Decimal `json:"total_collected"`
	TotalExpected  decimal.Decimal `json:"total_expected"`
	DueAmount      decimal.Decimal `json:"due_amount"`
}

// DetailRow is one windowed payment enriched with shareholder contact data
// and the share's not-yet-paid installment balance.
type DetailRow struct {
	PaymentID       uuid.UUID            `json:"payment_id"`
	ShareID         uuid.UUID            `json:"share_id"`
	ShareholderName string               `json:"shareholder_name"`
	MobileNumber    string               `json:"mobile_number"`
	DueDate         string               `json:"due_date"`
	Amount          decimal.Decimal      `json:"amount"`
	Status          domain.PaymentStatus `json:"status"`
	PaidDate        *string              `json:"paid_date"`
	BalanceAmount   int                  `json:"balance_amount"`
}

type Report struct {
	Summary Summary     `json:"summary"`
	Details []DetailRow `json:"details"`
}

const dateLayout = "2006-01-02"

// SummaryAndDetails computes the windowed report. Shares are filtered by
// start_date and payments by due_date independently, as two separate sets,
// not a join. due_amount = total_expected - total_collected.
func (s *Service) SummaryAndDetails(ctx context.Context, month, year *int) (*Report, error) {
	if cached := s.fromCache(ctx, month, year); cached != nil {
		return cached, nil
	}

	var shares []domain.Share
	if err := s.DB.WithContext(ctx).Find(&shares).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch shares: %v", err)
	}
	var paymentRows []domain.Payment
	if err := s.DB.WithContext(ctx).Order("due_date").Find(&paymentRows).Error; err != nil {
		return nil, fmt.Errorf("Failed to fetch payments: %v", err)
	}

	shares = filterShares(shares, month, year)
	paymentRows = filterPayments(paymentRows, month, year)

	totalCollected := decimal.Zero
	for _, p := range paymentRows {
		totalCollected = totalCollected.Add(p.Amount)
	}
	totalExpected := decimal.Zero
	for _, sh := range shares {
		totalExpected = totalExpected.Add(sh.AnnualAmount)
	}

	monthName := ""
	if month != nil {
		monthName = time.Month(*month).String()
	}
	yearStr := ""
	if year != nil {
		yearStr = fmt.Sprintf("%d", *year)
	}

	details, err := s.buildDetails(ctx, paymentRows)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Summary: Summary{
			Month:          monthName,
			Year:           yearStr,
			TotalCollected: totalCollected.Round(2),
			TotalExpected:  totalExpected.Round(2),
			DueAmount:      totalExpected.Sub(totalCollected).Round(2),
		},
		Details: details,
	}
	s.toCache(ctx, month, year, report)
	return report, nil
}

func filterShares(shares []domain.Share, month, year *int) []domain.Share {
	out := shares[:0]
	for _, sh := range shares {
		if month != nil && sh.StartDate.Month() != time.Month(*month) {
			continue
		}
		if year != nil && sh.StartDate.Year() != *year {
			continue
		}
		out = append(out, sh)
	}
	return out
}

func filterPayments(payments []domain.Payment, month, year *int) []domain.Payment {
	out := payments[:0]
	for _, p := range payments {
		if month != nil && p.DueDate.Month() != time.Month(*month) {
			continue
		}
		if year != nil && p.DueDate.Year() != *year {
			continue
		}
		out = append(out, p)
	}
	return out
}

func (s *Service) buildDetails(ctx context.Context, paymentRows []domain.Payment) ([]DetailRow, error) {
	details := make([]DetailRow, 0, len(paymentRows))
	shareCache := map[uuid.UUID]*domain.Share{}
	balanceCache := map[uuid.UUID]int{}

	for _, p := range paymentRows {
		share, ok := shareCache[p.ShareID]
		if !ok {
			var sh domain.Share
			if err := s.DB.WithContext(ctx).Preload("Shareholder").Where("share_id = ?", p.ShareID).First(&sh).Error; err != nil {
				return nil, fmt.Errorf("Failed to fetch share for payment: %v", err)
			}
			share = &sh
			shareCache[p.ShareID] = share

			total, err := schedule.TotalInstallments(share.Policy())
			if err != nil {
				return nil, err
			}
			paid, err := s.Payments.CountPaidForShare(ctx, share.ID)
			if err != nil {
				return nil, err
			}
			balanceCache[p.ShareID] = total - int(paid)
		}

		var paidDate *string
		if p.PaymentDate != nil {
			d := p.PaymentDate.Format(dateLayout)
			paidDate = &d
		}
		name, phone := "", ""
		if share.Shareholder != nil {
			name = share.Shareholder.Name
			phone = share.Shareholder.PhoneNumber
		}
		details = append(details, DetailRow{
			PaymentID:       p.ID,
			ShareID:         p.ShareID,
			ShareholderName: name,
			MobileNumber:    phone,
			DueDate:         p.DueDate.Format(dateLayout),
			Amount:          p.Amount,
			Status:          p.Status,
			PaidDate:        paidDate,
			BalanceAmount:   balanceCache[p.ShareID],
		})
	}
	return details, nil
}

func cacheKey(month, year *int) string {
	m, y := 0, 0
	if month != nil {
		m = *month
	}
	if year != nil {
		y = *year
	}
	return fmt.Sprintf("reports:summary:m=%d:y=%d", m, y)
}

func (s *Service) fromCache(ctx context.Context, month, year *int) *Report {
	if s.Rdb == nil {
		return nil
	}
	raw, err := s.Rdb.Get(ctx, cacheKey(month, year)).Result()
	if err != nil {
		return nil
	}
	var report Report
	if err := json.Unmarshal([]byte(raw), &report); err != nil {
		return nil
	}
	return &report
}

func (s *Service) toCache(ctx context.Context, month, year *int, report *Report) {
	if s.Rdb == nil || s.CacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(report)
	if err != nil {
		return
	}
	// Cache failures only cost the next caller a recomputation.
	_ = s.Rdb.Set(ctx, cacheKey(month, year), raw, s.CacheTTL).Err()
}
