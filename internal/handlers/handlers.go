package handlers

import (
	"io"
	"math"
	"mime/multipart"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/audora-app/backend/internal/middleware"
	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/pkg/logger"
)

// getUserIDFromContext returns the authenticated user's id, or 0 when the
// request carries no verified claims.
func getUserIDFromContext(c echo.Context) uint {
	claims, ok := c.Get(middleware.ContextUserKey).(*models.JwtCustomClaims)
	if !ok || claims == nil {
		return 0
	}
	return claims.UserID
}

// Pagination is the shared pagination block of every paginated response
type Pagination struct {
	CurrentPage  int   `json:"currentPage"`
	TotalPages   int   `json:"totalPages"`
	TotalItems   int64 `json:"totalItems"`
	ItemsPerPage int   `json:"itemsPerPage"`
}

// getPaginationParams parses page/limit query params with the shared
// conventions: page >= 1, limit capped at 50, per-endpoint default.
func getPaginationParams(c echo.Context, defaultLimit int) (page, limit, offset int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	limit, _ = strconv.Atoi(c.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = defaultLimit
	}
	return page, limit, (page - 1) * limit
}

func newPagination(page, limit int, total int64) Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalItems:   total,
		ItemsPerPage: limit,
	}
}

// stageUpload copies a multipart file into dir under a unique name so it
// can be handed to the media store as a local path.
func stageUpload(file *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	path := filepath.Join(dir, uuid.NewString()+strings.ToLower(filepath.Ext(file.Filename)))
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

// removeStaged deletes a staged upload; used on every exit path so failed
// validation never leaves orphaned temp files behind.
func removeStaged(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("failed to remove staged upload", zap.String("path", path), zap.Error(err))
	}
}

func parseIDParam(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	return uint(id), err
}
