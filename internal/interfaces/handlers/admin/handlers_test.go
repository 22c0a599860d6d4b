package admin

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"pesaguru-backend/internal/application/allocation"
	goalsvc "pesaguru-backend/internal/application/goals"
	"pesaguru-backend/internal/constants"
	"pesaguru-backend/internal/domain"
	"pesaguru-backend/internal/middleware"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedAdvice struct{}

func (fixedAdvice) AdviseAllocation(context.Context, *domain.FinancialGoal, time.Time) (*allocation.Advice, error) {
	return &allocation.Advice{
		Allocation: domain.Allocation{Equity: 55, Bonds: 30, MoneyMarket: 10, Alternative: 5},
		Summary:    "steady rates",
	}, nil
}

func TestRunAllocationReviews(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.FinancialGoal{}, &domain.GoalEvent{}, &domain.Loan{}))

	now := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	u := domain.User{Fullname: "Akinyi Otieno", UserName: "akinyi", Email: "akinyi@example.co.ke", PasswordHash: "x", RiskCategory: domain.RiskAggressive}
	require.NoError(t, db.Create(&u).Error)
	svc := &goalsvc.Service{DB: db, Policy: &allocation.Policy{Provider: fixedAdvice{}}, Now: func() time.Time { return now }}
	_, err = svc.Create(context.Background(), u.UserID, goalsvc.CreateInput{
		Name: "Retire in Nanyuki", Type: domain.GoalRetirement, TargetAmount: 5000000, TargetDate: now.AddDate(25, 0, 0),
	})
	require.NoError(t, err)

	h := &Handlers{Goals: svc}
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		middleware.SetSessionUser(c, middleware.SessionUser{UserID: uuid.NewString(), Role: c.Get("X-Test-Role")})
		return c.Next()
	})
	app.Post("/admin/allocation-reviews/run", middleware.RequireAuth(), middleware.AuthorizePermission(constants.RunAllocationReview), h.RunAllocationReviews)

	run := func(role string) (int, map[string]interface{}) {
		req := httptest.NewRequest("POST", "/admin/allocation-reviews/run", nil)
		req.Header.Set("X-Test-Role", role)
		resp, err := app.Test(req)
		require.NoError(t, err)
		b, _ := io.ReadAll(resp.Body)
		var out map[string]interface{}
		_ = json.Unmarshal(b, &out)
		return resp.StatusCode, out
	}

	status, _ := run(constants.User)
	assert.Equal(t, fiber.StatusForbidden, status)

	status, out := run(constants.Advisor)
	require.Equal(t, fiber.StatusOK, status)
	sweep := out["data"].(map[string]interface{})["sweep"].(map[string]interface{})
	assert.Equal(t, 1.0, sweep["candidates"])
	assert.Equal(t, 1.0, sweep["adjusted"])

	status, out = run(constants.Admin)
	require.Equal(t, fiber.StatusOK, status)
	sweep = out["data"].(map[string]interface{})["sweep"].(map[string]interface{})
	assert.Equal(t, 0.0, sweep["candidates"])
}
