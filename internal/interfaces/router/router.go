package router

import (
	"context"

	"pesaguru-backend/internal/application/allocation"
	authsvc "pesaguru-backend/internal/application/auth"
	emailsvc "pesaguru-backend/internal/application/emails"
	goalsvc "pesaguru-backend/internal/application/goals"
	loansvc "pesaguru-backend/internal/application/loans"
	"pesaguru-backend/internal/application/marketdata"
	portsvc "pesaguru-backend/internal/application/portfolios"
	rpsvc "pesaguru-backend/internal/application/riskprofiles"
	usersvc "pesaguru-backend/internal/application/user"
	"pesaguru-backend/internal/config"
	"pesaguru-backend/internal/constants"
	"pesaguru-backend/internal/infrastructure/database"
	adminhandler "pesaguru-backend/internal/interfaces/handlers/admin"
	authhandler "pesaguru-backend/internal/interfaces/handlers/auth"
	goalhandler "pesaguru-backend/internal/interfaces/handlers/goals"
	healthhandler "pesaguru-backend/internal/interfaces/handlers/health"
	loanhandler "pesaguru-backend/internal/interfaces/handlers/loans"
	porthandler "pesaguru-backend/internal/interfaces/handlers/portfolios"
	rphandler "pesaguru-backend/internal/interfaces/handlers/riskprofiles"
	userhandler "pesaguru-backend/internal/interfaces/handlers/user"
	"pesaguru-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
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

// Deps are the connections and services CreateApp built, for the caller to
// ping at startup and to hand to background workers.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Goals *goalsvc.Service
}

func sessionConfig(cfg *config.Config) middleware.SessionConfig {
	return middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		RedisURL:          cfg.RedisURL,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.Env == "production",
		CookieDomain:      cfg.CookieDomain,
	}
}

func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedSuffix: cfg.FrontendURLEndsWith,
		DevPassword:   cfg.DevPassword,
	}))

	sessionCfg := sessionConfig(cfg)
	sessionHandler, rdb, err := middleware.Session(sessionCfg)
	if err != nil {
		return nil, nil, err
	}
	app.Use(sessionHandler)
	app.Use(middleware.HealthMarker(rdb))
	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())

	deps := &Deps{Redis: rdb}

	market := marketdata.NewClient(cfg.InvestmentProviderURL, cfg.InvestmentProviderAPIKey, rdb, cfg.MarketDataCacheTTL)
	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		HealthAdminKey: cfg.HealthAdminKey,
	}
	if cfg.InvestmentProviderURL != "" {
		// Uncached so the dashboard sees outages the cache would hide.
		hh.Provider = marketdata.NewHTTPClient(cfg.InvestmentProviderURL, cfg.InvestmentProviderAPIKey)
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if cfg.AutoMigrate {
			if err := database.AutoMigrate(context.Background(), db); err != nil {
				return nil, nil, err
			}
		}
		deps.DB = db
		hh.DB = &gormDBPinger{db: db}
	}
	db := deps.DB

	// db may be nil when DATABASE_URL is unset; login then answers 500.
	var userFinder authsvc.UserFinder
	if db != nil {
		userFinder = &authsvc.GormUserFinder{DB: db}
	}
	ah := &authhandler.Handlers{
		UserFinder: userFinder,
		Rdb:        rdb,
		Config:     sessionCfg,
	}
	authGroup := app.Group("/api/v1/auth")
	authGroup.Post("/login", ah.Login)
	authGroup.Get("/me", ah.Me)
	authGroup.Delete("/logout", ah.Logout)

	if db == nil || rdb == nil {
		log.Warn().Msg("database or redis not configured; only health and auth routes are mounted")
		return app, deps, nil
	}

	var notifier emailsvc.Sender
	if cfg.BrevoAPIKey != "" {
		notifier = &emailsvc.BrevoClient{APIKey: cfg.BrevoAPIKey, MailFrom: cfg.MailFrom}
	}

	rs := &rpsvc.Service{DB: db}
	goals := &goalsvc.Service{
		DB:       db,
		Policy:   &allocation.Policy{Provider: &allocation.Advisor{Market: market, Risk: rs}},
		Notifier: notifier,
	}
	deps.Goals = goals

	// Users: registration is public.
	us := &usersvc.Service{DB: db, Rdb: rdb, Notifier: notifier}
	uh := &userhandler.Handlers{Service: us, RiskProfiles: rs, Config: sessionCfg}
	app.Post("/api/v1/users/register", uh.Register)
	ug := app.Group("/api/v1/users", middleware.RequireAuth())
	ug.Get("/me/profile", uh.Profile)
	ug.Patch("/me/risk-profile", uh.SetRiskCategory)
	ug.Patch("/role", middleware.AuthorizePermission(constants.AssignRole), uh.UpdateRole)

	// Goals
	gh := &goalhandler.Handlers{Service: goals}
	gg := app.Group("/api/v1/goals", middleware.RequireAuth())
	gg.Post("/", gh.Create)
	gg.Get("/", gh.List)
	gg.Get("/:id", gh.Get)
	gg.Post("/:id/contribute", gh.Contribute)
	gg.Put("/:id/progress", gh.SetProgress)
	gg.Get("/:id/feasibility", gh.Feasibility)
	gg.Post("/:id/review-allocation", gh.ReviewAllocation)
	gg.Get("/:id/events", gh.Events)

	// Loans
	lh := &loanhandler.Handlers{Service: &loansvc.Service{DB: db}}
	lg := app.Group("/api/v1/loans", middleware.RequireAuth())
	lg.Post("/", lh.Create)
	lg.Get("/", lh.List)
	lg.Get("/:id", lh.Get)

	// Portfolios
	ph := &porthandler.Handlers{Service: &portsvc.Service{DB: db}}
	pg := app.Group("/api/v1/portfolios", middleware.RequireAuth())
	pg.Post("/", ph.Create)
	pg.Get("/", ph.List)
	pg.Get("/:id", ph.Get)
	pg.Post("/:id/holdings", ph.AddHolding)
	pg.Put("/:id/holdings/:holding_id", ph.UpdateHolding)
	pg.Delete("/:id/holdings/:holding_id", ph.RemoveHolding)
	pg.Get("/:id/rebalancing", ph.Rebalancing)
	pg.Post("/:id/rebalance", ph.Rebalance)
	pg.Get("/:id/summary", ph.Summary)

	// Risk profiles and the product catalog
	rh := &rphandler.Handlers{Service: rs}
	rg := app.Group("/api/v1/risk-profiles", middleware.RequireAuth())
	rg.Get("/", rh.List)
	rg.Get("/:category", rh.Get)
	rg.Get("/:category/products", rh.Products)
	rg.Put("/:category/allocation", middleware.AuthorizePermission(constants.ManageRiskProfiles), rh.SetAllocation)

	// Operator actions
	adh := &adminhandler.Handlers{Goals: goals}
	adg := app.Group("/api/v1/admin", middleware.RequireAuth())
	adg.Post("/allocation-reviews/run", middleware.AuthorizePermission(constants.RunAllocationReview), adh.RunAllocationReviews)

	return app, deps, nil
}
