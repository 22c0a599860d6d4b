package database

import (
	"context"
	"testing"

	"pesaguru-backend/internal/application/riskprofiles"
	"pesaguru-backend/internal/domain"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestAutoMigrate_SeedsOnce(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	require.NoError(t, AutoMigrate(ctx, db))
	require.NoError(t, AutoMigrate(ctx, db))

	var profiles, products int64
	require.NoError(t, db.Model(&domain.RiskProfile{}).Count(&profiles).Error)
	require.NoError(t, db.Model(&domain.InvestmentProduct{}).Count(&products).Error)
	assert.Equal(t, int64(len(riskprofiles.DefaultProfiles)), profiles)
	assert.Equal(t, int64(len(riskprofiles.DefaultProducts)), products)

	for _, m := range Models {
		assert.True(t, db.Migrator().HasTable(m))
	}
}
