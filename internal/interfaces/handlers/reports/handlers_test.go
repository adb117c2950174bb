package reports

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	paysvc "shareledger-backend/internal/application/payments"
	repsvc "shareledger-backend/internal/application/reports"
	"shareledger-backend/internal/domain"
	"shareledger-backend/internal/schedule"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupReportsTest(t *testing.T, rdb *redis.Client, ttl time.Duration) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.Country{}, &domain.Shareholder{}, &domain.Share{},
		&domain.Payment{}, &domain.AuditEvent{},
	))

	svc := &repsvc.Service{DB: db, Rdb: rdb, Payments: &paysvc.Service{DB: db}, CacheTTL: ttl}
	h := &Handlers{Service: svc}
	app := fiber.New()
	app.Get("/reports/summary", h.SummaryAndDetails)
	return app, db
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func seedShare(t *testing.T, db *gorm.DB, start time.Time, annual string, dues []time.Time, amount string) *domain.Share {
	holder := &domain.Shareholder{Email: uuid.NewString() + "@example.com", Name: "Holder", PhoneNumber: "555"}
	require.NoError(t, db.Create(holder).Error)
	share := &domain.Share{
		ShareholderID:   holder.ID,
		AnnualAmount:    dec(annual),
		DurationYears:   1,
		StartDate:       start,
		InstallmentType: schedule.Monthly,
	}
	require.NoError(t, db.Create(share).Error)
	for _, due := range dues {
		require.NoError(t, db.Create(&domain.Payment{
			ShareID: share.ID,
			DueDate: due,
			Amount:  dec(amount),
			Status:  domain.PaymentPending,
		}).Error)
	}
	return share
}

func getReport(t *testing.T, app *fiber.App, path string) (map[string]interface{}, int) {
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	var result map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result, resp.StatusCode
}

func TestSummary_InvalidMonthRejected(t *testing.T) {
	app, _ := setupReportsTest(t, nil, 0)
	for _, raw := range []string{"13", "0", "abc", "1.5", "-2"} {
		result, code := getReport(t, app, "/reports/summary?month="+raw)
		assert.Equal(t, 400, code, "month=%s", raw)
		assert.Equal(t, "error", result["status"], "month=%s", raw)
	}
}

func TestSummary_WindowedAggregates(t *testing.T) {
	app, db := setupReportsTest(t, nil, 0)
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC)

	seedShare(t, db, jan, "12000.00", []time.Time{jan, feb}, "1000.00")
	seedShare(t, db, feb, "6000.00", []time.Time{feb}, "500.00")

	result, code := getReport(t, app, "/reports/summary?month=1&year=2024")
	require.Equal(t, 200, code)

	data := result["data"].(map[string]interface{})
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, "January", summary["month"])
	assert.Equal(t, "2024", summary["year"])
	assert.Equal(t, "12000", summary["total_expected"])
	assert.Equal(t, "1000", summary["total_collected"])
	assert.Equal(t, "11000", summary["due_amount"])

	details := data["details"].([]interface{})
	require.Len(t, details, 1)
	row := details[0].(map[string]interface{})
	assert.Equal(t, "Holder", row["shareholder_name"])
	assert.Equal(t, "555", row["mobile_number"])
	assert.Equal(t, "2024-01-01", row["due_date"])
}

func TestSummary_NoFiltersCoversEverything(t *testing.T) {
	app, db := setupReportsTest(t, nil, 0)
	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	seedShare(t, db, jan, "12000.00", []time.Time{jan}, "1000.00")

	result, code := getReport(t, app, "/reports/summary")
	require.Equal(t, 200, code)
	summary := result["data"].(map[string]interface{})["summary"].(map[string]interface{})
	assert.Equal(t, "", summary["month"])
	assert.Equal(t, "", summary["year"])
	assert.Equal(t, "11000", summary["due_amount"])
}

func TestSummary_CachedInRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app, db := setupReportsTest(t, rdb, time.Minute)

	jan := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	seedShare(t, db, jan, "12000.00", []time.Time{jan}, "1000.00")

	_, code := getReport(t, app, "/reports/summary?month=1&year=2024")
	require.Equal(t, 200, code)
	require.True(t, mr.Exists("reports:summary:m=1:y=2024"))

	// A write after caching is not visible until the TTL lapses.
	seedShare(t, db, jan, "4000.00", []time.Time{}, "0")
	result, code := getReport(t, app, "/reports/summary?month=1&year=2024")
	require.Equal(t, 200, code)
	summary := result["data"].(map[string]interface{})["summary"].(map[string]interface{})
	assert.Equal(t, "12000", summary["total_expected"])

	mr.FastForward(2 * time.Minute)
	result, code = getReport(t, app, "/reports/summary?month=1&year=2024")
	require.Equal(t, 200, code)
	summary = result["data"].(map[string]interface{})["summary"].(map[string]interface{})
	assert.Equal(t, "16000", summary["total_expected"])
}
