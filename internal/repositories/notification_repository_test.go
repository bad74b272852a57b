package repositories

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/audora-app/backend/internal/models"
)

func seedNotification(t *testing.T, db *gorm.DB, recipientID, triggerID uint, typ string, createdAt time.Time) *models.Notification {
	t.Helper()
	notif := &models.Notification{
		RecipientID:   recipientID,
		TriggerUserID: triggerID,
		Type:          typ,
	}
	require.NoError(t, db.Create(notif).Error)
	require.NoError(t, db.Model(notif).Update("created_at", createdAt).Error)
	return notif
}

func TestGetByRecipientNewestFirst(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	recipient := seedUser(t, db, "recipient")
	trigger := seedUser(t, db, "trigger")

	base := time.Now().Add(-time.Hour)
	oldest := seedNotification(t, db, recipient.ID, trigger.ID, models.NotificationNewFollower, base)
	middle := seedNotification(t, db, recipient.ID, trigger.ID, models.NotificationLike, base.Add(time.Minute))
	newest := seedNotification(t, db, recipient.ID, trigger.ID, models.NotificationComment, base.Add(2*time.Minute))

	// Someone else's inbox must not leak in
	other := seedUser(t, db, "other")
	seedNotification(t, db, other.ID, trigger.ID, models.NotificationLike, base)

	notifications, total, err := repo.GetByRecipientID(recipient.ID, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, notifications, 3)
	assert.Equal(t, newest.ID, notifications[0].ID)
	assert.Equal(t, middle.ID, notifications[1].ID)
	assert.Equal(t, oldest.ID, notifications[2].ID)

	require.NotNil(t, notifications[0].TriggerUser)
	assert.Equal(t, trigger.Username, notifications[0].TriggerUser.Username)

	page, total, err := repo.GetByRecipientID(recipient.ID, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 1)
	assert.Equal(t, oldest.ID, page[0].ID)
}

func TestMarkAsReadSemantics(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	recipient := seedUser(t, db, "recipient")
	trigger := seedUser(t, db, "trigger")
	notif := seedNotification(t, db, recipient.ID, trigger.ID, models.NotificationLike, time.Now())

	updated, found, err := repo.MarkAsRead(recipient.ID, notif.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, updated)

	// Second call is a no-op, not an error
	updated, found, err = repo.MarkAsRead(recipient.ID, notif.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.False(t, updated)

	// Someone else's notification looks like it does not exist
	updated, found, err = repo.MarkAsRead(trigger.ID, notif.ID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.False(t, updated)

	_, found, err = repo.MarkAsRead(recipient.ID, 9999)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUnreadCountAndMarkAllAsRead(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	recipient := seedUser(t, db, "recipient")
	trigger := seedUser(t, db, "trigger")

	for i := 0; i < 3; i++ {
		seedNotification(t, db, recipient.ID, trigger.ID, models.NotificationLike, time.Now())
	}

	unread, err := repo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, unread)

	count, err := repo.MarkAllAsRead(recipient.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	unread, err = repo.GetUnreadCount(recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	count, err = repo.MarkAllAsRead(recipient.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCreateBatch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewPostgresNotificationRepository(db)
	author := seedUser(t, db, "author")
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, author.ID, "track-one")

	pid := post.ID
	batch := []models.Notification{
		{RecipientID: alice.ID, TriggerUserID: author.ID, Type: models.NotificationNewPost, PostID: &pid},
		{RecipientID: bob.ID, TriggerUserID: author.ID, Type: models.NotificationNewPost, PostID: &pid},
	}
	require.NoError(t, repo.CreateBatch(batch))

	var total int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&total).Error)
	assert.EqualValues(t, 2, total)

	require.NoError(t, repo.CreateBatch(nil))
}
