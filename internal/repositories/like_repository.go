package repositories

import (
	"github.com/audora-app/backend/internal/models"
	"gorm.io/gorm"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	CreateWithNotification(like *models.Like, notif *models.Notification) error
	DeleteLike(userID, postID uint) error
	HasUserLikedPost(userID, postID uint) (bool, error)
	GetLikesCount(postID uint) (int64, error)
	CountByPostIDs(postIDs []uint) (map[uint]int64, error)
	GetLikedPostIDs(userID uint, postIDs []uint) (map[uint]bool, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

// CreateWithNotification creates the like and, when notif is non-nil, the
// LIKE notification for the post author in the same transaction. Two
// concurrent identical toggles both pass the existence check; the unique
// index rejects the loser with gorm.ErrDuplicatedKey.
func (r *PostgresLikeRepository) CreateWithNotification(like *models.Like, notif *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(like).Error; err != nil {
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

// DeleteLike removes the edge; gorm.ErrRecordNotFound when it was absent
func (r *PostgresLikeRepository) DeleteLike(userID, postID uint) error {
	res := r.db.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// HasUserLikedPost checks if a user has liked a specific post
func (r *PostgresLikeRepository) HasUserLikedPost(userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetLikesCount recomputes the like count for a post. Deliberately not
// denormalized; the count query runs on every toggle.
func (r *PostgresLikeRepository) GetLikesCount(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

// CountByPostIDs returns like counts for a page of posts in one query
func (r *PostgresLikeRepository) CountByPostIDs(postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		Total  int64
	}
	err := r.db.Model(&models.Like{}).
		Select("post_id, COUNT(*) AS total").
		Where("post_id IN ?", postIDs).
		Group("post_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.PostID] = row.Total
	}
	return counts, nil
}

// GetLikedPostIDs returns which of the given posts the user has liked,
// restricted to the page's ids to avoid a per-post query.
func (r *PostgresLikeRepository) GetLikedPostIDs(userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}

	var ids []uint
	err := r.db.Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}
