package repositories

import (
	"github.com/audora-app/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateWithNotification(comment *models.Comment, notif *models.Notification) error
	GetCommentsByPostID(postID uint) ([]models.Comment, error)
	CountByPostIDs(postIDs []uint) (map[uint]int64, error)
	GetCommentsCount(postID uint) (int64, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

// CreateWithNotification inserts the comment and, when notif is non-nil,
// the COMMENT notification for the post author in the same transaction.
func (r *PostgresCommentRepository) CreateWithNotification(comment *models.Comment, notif *models.Notification) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(comment).Error; err != nil {
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

// GetCommentsByPostID returns all comments for a post, oldest first, with
// each commenter preloaded. Unpaginated: this mirrors the existing API
// contract.
func (r *PostgresCommentRepository) GetCommentsByPostID(postID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.Preload("User").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

// CountByPostIDs returns comment counts for a page of posts in one query
func (r *PostgresCommentRepository) CountByPostIDs(postIDs []uint) (map[uint]int64, error) {
	counts := make(map[uint]int64, len(postIDs))
	if len(postIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		PostID uint
		Total  int64
	}
	err := r.db.Model(&models.Comment{}).
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

// GetCommentsCount returns the number of comments on a post
func (r *PostgresCommentRepository) GetCommentsCount(postID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Comment{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}
