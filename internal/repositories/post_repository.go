package repositories

import (
	"github.com/audora-app/backend/internal/models"
	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(post *models.Post) error
	GetPostByID(id uint) (*models.Post, error)
	GetPage(authorIDs []uint, offset, limit int) ([]models.Post, int64, error)
	GetRecentByAuthor(authorID uint, limit int) ([]models.Post, error)
	CountByAuthor(authorID uint) (int64, error)
	UpdatePost(post *models.Post) error
	DeletePost(id uint) error
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

// CreatePost creates a new post
func (r *PostgresPostRepository) CreatePost(post *models.Post) error {
	return r.db.Create(post).Error
}

// GetPostByID retrieves a post with its author preloaded
func (r *PostgresPostRepository) GetPostByID(id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPage returns a newest-first page of posts plus the total count.
// A nil authorIDs slice means all posts (explore); a non-nil slice
// restricts to those authors (home feed).
func (r *PostgresPostRepository) GetPage(authorIDs []uint, offset, limit int) ([]models.Post, int64, error) {
	countQuery := r.db.Model(&models.Post{})
	findQuery := r.db.Preload("Author")
	if authorIDs != nil {
		countQuery = countQuery.Where("author_id IN ?", authorIDs)
		findQuery = findQuery.Where("author_id IN ?", authorIDs)
	}

	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := findQuery.
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, total, err
}

// GetRecentByAuthor returns the author's most recent posts for profile pages
func (r *PostgresPostRepository) GetRecentByAuthor(authorID uint, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

// CountByAuthor returns the total number of posts by an author
func (r *PostgresPostRepository) CountByAuthor(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// UpdatePost updates an existing post
func (r *PostgresPostRepository) UpdatePost(post *models.Post) error {
	return r.db.Save(post).Error
}

// DeletePost deletes a post by ID
func (r *PostgresPostRepository) DeletePost(id uint) error {
	return r.db.Delete(&models.Post{}, id).Error
}
