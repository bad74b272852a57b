package router

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/audora-app/backend/internal/handlers"
	"github.com/audora-app/backend/internal/middleware"
	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
	"github.com/audora-app/backend/pkg/config"
	"github.com/audora-app/backend/pkg/logger"
	"github.com/audora-app/backend/pkg/storage"
	"github.com/audora-app/backend/validators"
)

// SetupMiddleware attaches recovery, CORS and the error handler that
// renders every failure as a JSON body.
func SetupMiddleware(e *echo.Echo, cfg *config.Config) {
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowCredentials: true,
	}))
	e.HTTPErrorHandler = httpErrorHandler
}

// httpErrorHandler renders validation failures as a field map, echo
// errors with their own status, and anything else as an opaque 500.
func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var validationErr *validators.ValidationError
	if errors.As(err, &validationErr) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{
			"message": validationErr.Error(),
			"errors":  validationErr.Fields,
		})
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		message, ok := httpErr.Message.(string)
		if !ok {
			message = http.StatusText(httpErr.Code)
		}
		_ = c.JSON(httpErr.Code, echo.Map{"message": message})
		return
	}

	logger.Error("unhandled request error",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err))
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"message": "Internal server error"})
}

// SetupRoutes migrates the schema, wires repositories into handlers and
// registers every route group under /api.
func SetupRoutes(e *echo.Echo, db *gorm.DB, media storage.MediaStore, cfg *config.Config) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	); err != nil {
		return err
	}

	e.GET("/health", handlers.HealthCheck)

	userRepo := repositories.NewPostgresUserRepository(db)
	postRepo := repositories.NewPostgresPostRepository(db)
	followRepo := repositories.NewPostgresFollowRepository(db)
	likeRepo := repositories.NewPostgresLikeRepository(db)
	commentRepo := repositories.NewPostgresCommentRepository(db)
	notifRepo := repositories.NewPostgresNotificationRepository(db)

	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	postHandler := handlers.NewPostHandler(postRepo, followRepo, likeRepo, commentRepo, notifRepo, media, cfg.UploadDir)
	feedHandler := handlers.NewFeedHandler(postRepo, followRepo, likeRepo, commentRepo)
	interactionHandler := handlers.NewInteractionHandler(likeRepo, commentRepo, postRepo, userRepo)
	notificationHandler := handlers.NewNotificationHandler(notifRepo)
	userHandler := handlers.NewUserHandler(userRepo, postRepo, followRepo, media, cfg.UploadDir)

	authRequired := middleware.JWTAuth(cfg.JWTSecret)
	authOptional := middleware.OptionalJWTAuth(cfg.JWTSecret)

	api := e.Group("/api")
	authHandler.RegisterAuthRoutes(api.Group("/auth"))

	posts := api.Group("/posts")
	feedHandler.RegisterFeedRoutes(posts, authRequired, authOptional)
	postHandler.RegisterPostRoutes(posts, authRequired, authOptional)

	interactionHandler.RegisterInteractionRoutes(api.Group("/interactions"), authRequired)
	notificationHandler.RegisterNotificationRoutes(api.Group("/notifications"), authRequired)
	userHandler.RegisterUserRoutes(api.Group("/users"), authRequired, authOptional)

	return nil
}
