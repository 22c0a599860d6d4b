package bootstrap

import (
	"pesaguru-backend/internal/config"
	"pesaguru-backend/internal/interfaces/router"
	"pesaguru-backend/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// New builds the Fiber app for Vercel serverless (the api handler imports this
// package, not internal). No background workers are started.
func New() (*fiber.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Setup(cfg.LogLevel, false)
	app, _, err := router.CreateApp(cfg)
	return app, err
}
