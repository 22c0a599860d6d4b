package database

import (
	"context"

	"pesaguru-backend/internal/application/riskprofiles"
	"pesaguru-backend/internal/domain"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open opens a GORM DB from DSN (Postgres or a pooler URL).
// PreferSimpleProtocol disables prepared statement caching to avoid 42P05
// ("prepared statement already exists") behind PgBouncer-style poolers.
func Open(dsn string) (*gorm.DB, error) {
	return gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
}

// Models lists every table the API owns, in dependency order.
var Models = []interface{}{
	&domain.User{},
	&domain.RiskProfile{},
	&domain.InvestmentProduct{},
	&domain.Loan{},
	&domain.FinancialGoal{},
	&domain.GoalEvent{},
	&domain.Portfolio{},
	&domain.Holding{},
}

// AutoMigrate creates or updates the schema and seeds the risk profiles and
// product catalog.
func AutoMigrate(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).AutoMigrate(Models...); err != nil {
		return err
	}
	if err := riskprofiles.Seed(ctx, db); err != nil {
		return err
	}
	log.Info().Int("models", len(Models)).Msg("database migrated")
	return nil
}
