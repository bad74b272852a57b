package main

import (
	"go.uber.org/zap"

	"github.com/labstack/echo/v4"

	"github.com/audora-app/backend/internal/router"
	"github.com/audora-app/backend/pkg/config"
	"github.com/audora-app/backend/pkg/logger"
	"github.com/audora-app/backend/pkg/storage"
	"github.com/audora-app/backend/validators"
)

func main() {
	config.LoadDotenv()
	cfg := config.Load()

	logger.Init(cfg.Env)
	defer logger.Sync()

	if cfg.JWTSecret == "" {
		logger.Fatal("JWT_SECRET is not set")
	}

	db, err := config.InitDB(cfg.PostgresURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer config.CloseDB(db)

	media, err := storage.InitCloudinary(cfg.CloudinaryURL)
	if err != nil {
		logger.Fatal("cloudinary initialization failed", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()

	router.SetupMiddleware(e, cfg)
	if err := router.SetupRoutes(e, db, media, cfg); err != nil {
		logger.Fatal("route setup failed", zap.Error(err))
	}

	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := e.Start(":" + cfg.Port); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
