package repositories

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/audora-app/backend/internal/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
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

	err = db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.Follow{},
		&models.Like{},
		&models.Comment{},
		&models.Notification{},
	)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    fmt.Sprintf("%s@example.com", username),
		Password: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedPost(t *testing.T, db *gorm.DB, authorID uint, title string) *models.Post {
	t.Helper()
	post := &models.Post{
		Title:    title,
		Subject:  "testing",
		AudioURL: "https://cdn.example.com/audio/" + title,
		AuthorID: authorID,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func seedFollow(t *testing.T, db *gorm.DB, followerID, followingID uint) {
	t.Helper()
	require.NoError(t, db.Create(&models.Follow{
		FollowerID:  followerID,
		FollowingID: followingID,
	}).Error)
}
