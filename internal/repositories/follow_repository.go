package repositories

import (
	"github.com/audora-app/backend/internal/models"
	"gorm.io/gorm"
)

// FollowRepository defines the interface for follow graph operations
type FollowRepository interface {
	CreateWithNotification(follow *models.Follow, notif *models.Notification) error
	DeleteFollow(followerID, followingID uint) error
	IsFollowing(followerID, followingID uint) (bool, error)
	GetFollowerIDs(userID uint) ([]uint, error)
	GetFollowingIDs(userID uint) ([]uint, error)
	GetFollowersPage(userID uint, offset, limit int) ([]models.User, int64, error)
	GetFollowingPage(userID uint, offset, limit int) ([]models.User, int64, error)
	GetFollowersCount(userID uint) (int64, error)
	GetFollowingCount(userID uint) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

// CreateWithNotification creates the follow edge and the NEW_FOLLOWER
// notification in one transaction, so the notification commits iff the
// edge does. A concurrent duplicate surfaces as gorm.ErrDuplicatedKey.
func (r *PostgresFollowRepository) CreateWithNotification(follow *models.Follow, notif *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(follow).Error; err != nil {
			return err
		}
		if notif != nil {
			if err := tx.Create(notif).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteFollow removes the edge; gorm.ErrRecordNotFound when it was absent
func (r *PostgresFollowRepository) DeleteFollow(followerID, followingID uint) error {
	res := r.db.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IsFollowing checks whether the directed edge exists
func (r *PostgresFollowRepository) IsFollowing(followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetFollowerIDs returns the ids of everyone following userID.
// Used for NEW_POST fan-out.
func (r *PostgresFollowRepository) GetFollowerIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, err
}

// GetFollowingIDs returns the ids of everyone userID follows.
// Used to scope the home feed.
func (r *PostgresFollowRepository) GetFollowingIDs(userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

// GetFollowersPage returns a newest-edge-first page of followers
func (r *PostgresFollowRepository) GetFollowersPage(userID uint, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := r.db.
		Joins("JOIN follows ON follows.follower_id = users.id").
		Where("follows.following_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}

// GetFollowingPage returns a newest-edge-first page of followed users
func (r *PostgresFollowRepository) GetFollowingPage(userID uint, offset, limit int) ([]models.User, int64, error) {
	var total int64
	if err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := r.db.
		Joins("JOIN follows ON follows.following_id = users.id").
		Where("follows.follower_id = ?", userID).
		Order("follows.created_at DESC").
		Offset(offset).Limit(limit).
		Find(&users).Error
	return users, total, err
}

// GetFollowersCount returns how many users follow userID
func (r *PostgresFollowRepository) GetFollowersCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

// GetFollowingCount returns how many users userID follows
func (r *PostgresFollowRepository) GetFollowingCount(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}
