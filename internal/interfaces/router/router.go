package router

import (
	"time"

	ctysvc "shareledger-backend/internal/application/countries"
	paysvc "shareledger-backend/internal/application/payments"
	repsvc "shareledger-backend/internal/application/reports"
	shsvc "shareledger-backend/internal/application/shareholders"
	sharesvc "shareledger-backend/internal/application/shares"
	"shareledger-backend/internal/config"
	"shareledger-backend/internal/infrastructure/database"
	ctyhandler "shareledger-backend/internal/interfaces/handlers/countries"
	healthhandler "shareledger-backend/internal/interfaces/handlers/health"
	payhandler "shareledger-backend/internal/interfaces/handlers/payments"
	rephandler "shareledger-backend/internal/interfaces/handlers/reports"
	shhandler "shareledger-backend/internal/interfaces/handlers/shareholders"
	sharehandler "shareledger-backend/internal/interfaces/handlers/shares"
	"shareledger-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// CreateApp builds the Fiber app with global middleware and all routes.
func CreateApp(cfg *config.Config) (*fiber.App, *gorm.DB, *redis.Client, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	var db *gorm.DB
	if cfg.DatabaseURL != "" {
		var err error
		db, err = database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, nil, err
		}
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, nil, err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, nil, err
		}
		rdb = redis.NewClient(opts)
	}

	healthHandlers := &healthhandler.Handlers{Rdb: rdb}
	if db != nil {
		healthHandlers.DB = &gormDBPinger{db: db}
	}
	app.Get("/health/json", healthHandlers.JSON)

	if db != nil {
		paymentsService := &paysvc.Service{DB: db}
		countriesService := &ctysvc.Service{DB: db}
		shareholdersService := &shsvc.Service{DB: db}
		sharesService := &sharesvc.Service{
			DB:               db,
			Payments:         paymentsService,
			ClampOutstanding: cfg.ClampOutstanding,
		}
		reportsService := &repsvc.Service{
			DB:       db,
			Rdb:      rdb,
			Payments: paymentsService,
			CacheTTL: time.Duration(cfg.ReportCacheTTLSeconds) * time.Second,
		}

		countryHandlers := &ctyhandler.Handlers{Service: countriesService}
		countryGroup := app.Group("/api/v1/countries")
		countryGroup.Post("/", countryHandlers.CreateCountry)
		countryGroup.Get("/", countryHandlers.ListCountries)
		countryGroup.Get("/:id", countryHandlers.GetCountry)
		countryGroup.Delete("/:id", countryHandlers.DeleteCountry)

		shareholderHandlers := &shhandler.Handlers{Service: shareholdersService}
		shareholderGroup := app.Group("/api/v1/shareholders")
		shareholderGroup.Post("/", shareholderHandlers.CreateShareholder)
		shareholderGroup.Get("/", shareholderHandlers.ListShareholders)
		shareholderGroup.Get("/:id", shareholderHandlers.GetShareholder)
		shareholderGroup.Put("/:id", shareholderHandlers.UpdateShareholder)
		shareholderGroup.Delete("/:id", shareholderHandlers.DeleteShareholder)

		shareHandlers := &sharehandler.Handlers{Service: sharesService}
		shareGroup := app.Group("/api/v1/shares")
		shareGroup.Post("/", shareHandlers.CreateShare)
		shareGroup.Get("/", shareHandlers.ListShares)
		shareGroup.Get("/:id", shareHandlers.GetShare)
		shareGroup.Put("/:id", shareHandlers.UpdateShare)
		shareGroup.Delete("/:id", shareHandlers.DeleteShare)

		paymentHandlers := &payhandler.Handlers{Service: paymentsService}
		paymentGroup := app.Group("/api/v1/payments")
		paymentGroup.Get("/", paymentHandlers.ListPayments)
		paymentGroup.Get("/:id", paymentHandlers.GetPayment)
		paymentGroup.Put("/:id", paymentHandlers.UpdatePayment)
		paymentGroup.Delete("/:id", paymentHandlers.DeletePayment)

		reportHandlers := &rephandler.Handlers{Service: reportsService}
		app.Get("/api/v1/reports/summary", reportHandlers.SummaryAndDetails)
	}

	return app, db, rdb, nil
}
