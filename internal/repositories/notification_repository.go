package repositories

import (
	"github.com/audora-app/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(notification *models.Notification) error
	CreateBatch(notifications []models.Notification) error
	GetByRecipientID(recipientID uint, offset, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(recipientID uint) (int64, error)
	MarkAsRead(recipientID, notificationID uint) (updated bool, found bool, err error)
	MarkAllAsRead(recipientID uint) (int64, error)
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

// NewPostgresNotificationRepository creates a NotificationRepository for PostgreSQL
func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(notification *models.Notification) error {
	return r.db.Create(notification).Error
}

// CreateBatch inserts the whole fan-out in a single statement
func (r *postgresNotificationRepository) CreateBatch(notifications []models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return r.db.Create(&notifications).Error
}

// GetByRecipientID returns a newest-first page with the trigger user and
// related post preloaded, plus the total count for pagination.
func (r *postgresNotificationRepository) GetByRecipientID(recipientID uint, offset, limit int) ([]models.Notification, int64, error) {
	var total int64
	if err := r.db.Model(&models.Notification{}).Where("recipient_id = ?", recipientID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := r.db.Preload("TriggerUser").Preload("Post").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(recipientID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

// MarkAsRead flips the read flag only when the row belongs to the
// recipient and is still unread. The caller distinguishes "already read"
// (found, not updated) from "not found or not owned".
func (r *postgresNotificationRepository) MarkAsRead(recipientID, notificationID uint) (bool, bool, error) {
	res := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND read = ?", notificationID, recipientID, false).
		Update("read", true)
	if res.Error != nil {
		return false, false, res.Error
	}
	if res.RowsAffected > 0 {
		return true, true, nil
	}

	var count int64
	if err := r.db.Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Count(&count).Error; err != nil {
		return false, false, err
	}
	return false, count > 0, nil
}

// MarkAllAsRead flips every unread row for the recipient and reports how
// many were affected. Idempotent; a second call affects zero rows.
func (r *postgresNotificationRepository) MarkAllAsRead(recipientID uint) (int64, error) {
	res := r.db.Model(&models.Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true)
	return res.RowsAffected, res.Error
}
