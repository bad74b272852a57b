package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/audora-app/backend/internal/models"
)

func TestLikeNotifiesAuthorAndUnlikeKeepsNotification(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	liker := app.createUser(t, "liker")
	post := app.createPost(t, author.ID, "track-one")
	cookie := authCookie(t, liker)
	target := fmt.Sprintf("/api/interactions/%d/like", post.ID)

	rec := app.request(t, http.MethodPost, target, nil, cookie)
	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["liked"])
	assert.EqualValues(t, 1, body["likeCount"])

	var notif models.Notification
	require.NoError(t, app.db.Where("recipient_id = ?", author.ID).First(&notif).Error)
	assert.Equal(t, models.NotificationLike, notif.Type)
	assert.Equal(t, liker.ID, notif.TriggerUserID)

	// Toggling off removes the like but the notification stays
	rec = app.request(t, http.MethodPost, target, nil, cookie)
	require.Equal(t, http.StatusOK, rec.Code)
	body = decodeBody(t, rec)
	assert.Equal(t, false, body["liked"])
	assert.EqualValues(t, 0, body["likeCount"])

	var notifCount int64
	require.NoError(t, app.db.Model(&models.Notification{}).Count(&notifCount).Error)
	assert.EqualValues(t, 1, notifCount)
}

func TestSelfLikeSkipsNotification(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "track-one")

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/like", post.ID), nil, authCookie(t, author))
	require.Equal(t, http.StatusCreated, rec.Code)

	var notifCount int64
	require.NoError(t, app.db.Model(&models.Notification{}).Count(&notifCount).Error)
	assert.Zero(t, notifCount)
}

func TestLikeRequiresAuthAndExistingPost(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "track-one")

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/like", post.ID), nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = app.request(t, http.MethodPost, "/api/interactions/9999/like", nil, authCookie(t, author))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateComment(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	commenter := app.createUser(t, "commenter")
	post := app.createPost(t, author.ID, "track-one")

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/comment", post.ID),
		map[string]string{"text": "great track"}, authCookie(t, commenter))
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "great track", body["text"])
	assert.Equal(t, "commenter", body["user"].(map[string]any)["username"])

	var notif models.Notification
	require.NoError(t, app.db.Where("recipient_id = ?", author.ID).First(&notif).Error)
	assert.Equal(t, models.NotificationComment, notif.Type)
}

func TestSelfCommentSkipsNotification(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "track-one")

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/comment", post.ID),
		map[string]string{"text": "my own note"}, authCookie(t, author))
	require.Equal(t, http.StatusCreated, rec.Code)

	var notifCount int64
	require.NoError(t, app.db.Model(&models.Notification{}).Count(&notifCount).Error)
	assert.Zero(t, notifCount)
}

func TestCommentValidation(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	post := app.createPost(t, author.ID, "track-one")

	rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/comment", post.ID),
		map[string]string{"text": ""}, authCookie(t, author))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody(t, rec)["errors"].(map[string]any), "text")
}

func TestGetCommentsIsPublicAndOldestFirst(t *testing.T) {
	app := newTestApp(t)
	author := app.createUser(t, "author")
	alice := app.createUser(t, "alice")
	post := app.createPost(t, author.ID, "track-one")

	for _, text := range []string{"first", "second"} {
		rec := app.request(t, http.MethodPost, fmt.Sprintf("/api/interactions/%d/comment", post.ID),
			map[string]string{"text": text}, authCookie(t, alice))
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := app.request(t, http.MethodGet, fmt.Sprintf("/api/interactions/%d/comments", post.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var comments []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &comments))
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0]["text"])
	assert.Equal(t, "alice", comments[0]["user"].(map[string]any)["username"])
}

func TestGetCommentsMissingPost(t *testing.T) {
	app := newTestApp(t)

	rec := app.request(t, http.MethodGet, "/api/interactions/9999/comments", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
