package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/audora-app/backend/internal/middleware"
	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/router"
	"github.com/audora-app/backend/pkg/config"
	"github.com/audora-app/backend/pkg/storage"
	"github.com/audora-app/backend/validators"
)

const testSecret = "test-secret"

// stubMediaStore records calls instead of talking to a CDN
type stubMediaStore struct {
	uploads   int
	destroyed []string
	uploadErr error
}

func (s *stubMediaStore) UploadAudio(_ context.Context, _ string, folder string) (*storage.UploadResult, error) {
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	s.uploads++
	return &storage.UploadResult{
		URL:      fmt.Sprintf("https://cdn.example.com/%s/%d", folder, s.uploads),
		PublicID: fmt.Sprintf("%s/asset-%d", folder, s.uploads),
	}, nil
}

func (s *stubMediaStore) UploadAvatar(ctx context.Context, path, folder string) (*storage.UploadResult, error) {
	return s.UploadAudio(ctx, path, folder)
}

func (s *stubMediaStore) Destroy(_ context.Context, publicID, _ string) error {
	s.destroyed = append(s.destroyed, publicID)
	return nil
}

type testApp struct {
	e     *echo.Echo
	db    *gorm.DB
	media *stubMediaStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see its own empty in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	cfg := &config.Config{
		Port:       "8080",
		Env:        "test",
		JWTSecret:  testSecret,
		CORSOrigin: "http://localhost:3000",
		UploadDir:  t.TempDir(),
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validators.NewValidator()
	router.SetupMiddleware(e, cfg)

	media := &stubMediaStore{}
	require.NoError(t, router.SetupRoutes(e, db, media, cfg))

	return &testApp{e: e, db: db, media: media}
}

func (a *testApp) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: string(hashed),
	}
	require.NoError(t, a.db.Create(user).Error)
	return user
}

func (a *testApp) createPost(t *testing.T, authorID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:         title,
		Subject:       "testing",
		AudioURL:      "https://cdn.example.com/audio/" + title,
		AudioPublicID: "audio_posts/" + title,
		AuthorID:      authorID,
	}
	require.NoError(t, a.db.Create(post).Error)
	return post
}

func (a *testApp) follow(t *testing.T, followerID, followingID uint) {
	t.Helper()
	require.NoError(t, a.db.Create(&models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}).Error)
}

// authCookie mints a signed token for the user, bypassing the login flow
func authCookie(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.AccessTokenCookie, Value: signed}
}

func (a *testApp) request(t *testing.T, method, target string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	contentType := ""
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
		contentType = echo.MIMEApplicationJSON
	}

	req := httptest.NewRequest(method, target, reader)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

// multipartBody builds a multipart form with text fields and optional files
func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)
	for name, value := range fields {
		require.NoError(t, writer.WriteField(name, value))
	}
	for field, filename := range files {
		part, err := writer.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write([]byte("binary-data"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return buf, writer.FormDataContentType()
}

func (a *testApp) multipartRequest(t *testing.T, method, target string, body *bytes.Buffer, contentType string, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	req.Header.Set(echo.HeaderContentType, contentType)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}
