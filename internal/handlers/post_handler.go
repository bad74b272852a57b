package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
	"github.com/audora-app/backend/pkg/logger"
	"github.com/audora-app/backend/pkg/storage"
)

// Audio containers Cloudinary handles under the "video" resource type
var allowedAudioExt = map[string]bool{
	".mp3":  true,
	".wav":  true,
	".ogg":  true,
	".aac":  true,
	".m4a":  true,
	".mp4":  true,
	".webm": true,
}

// PostHandler handles HTTP requests related to audio posts
type PostHandler struct {
	postRepository         repositories.PostRepository
	followRepository       repositories.FollowRepository
	likeRepository         repositories.LikeRepository
	commentRepository      repositories.CommentRepository
	notificationRepository repositories.NotificationRepository
	media                  storage.MediaStore
	uploadDir              string
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	notifRepo repositories.NotificationRepository,
	media storage.MediaStore,
	uploadDir string,
) *PostHandler {
	return &PostHandler{
		postRepository:         postRepo,
		followRepository:       followRepo,
		likeRepository:         likeRepo,
		commentRepository:      commentRepo,
		notificationRepository: notifRepo,
		media:                  media,
		uploadDir:              uploadDir,
	}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	g.POST("", h.CreatePost, auth)
	g.GET("/:postId", h.GetPost, optionalAuth)
	g.PUT("/:postId", h.UpdatePost, auth)
	g.DELETE("/:postId", h.DeletePost, auth)
}

// CreatePost creates an audio post from a multipart form. The audio file
// is staged locally, pushed to the media store, and the staged copy is
// removed on every exit path. On success a NEW_POST notification is
// fanned out to every follower in one bulk insert.
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	file, err := c.FormFile("audioFile")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Audio file is required.")
	}
	if !allowedAudioExt[strings.ToLower(filepath.Ext(file.Filename))] {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type. Only audio files are allowed.")
	}

	stagedPath, err := stageUpload(file, h.uploadDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post. Please try again.")
	}
	defer removeStaged(stagedPath)

	req := models.CreatePostRequest{
		Title:       c.FormValue("title"),
		Subject:     c.FormValue("subject"),
		Description: c.FormValue("description"),
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	uploaded, err := h.media.UploadAudio(c.Request().Context(), stagedPath, fmt.Sprintf("audio_posts/%d", userID))
	if err != nil {
		logger.Error("audio upload failed", zap.Uint("user_id", userID), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post. Please try again.")
	}

	post := &models.Post{
		Title:         req.Title,
		Subject:       req.Subject,
		Description:   req.Description,
		AudioURL:      uploaded.URL,
		AudioPublicID: uploaded.PublicID,
		AuthorID:      userID,
	}
	if err := h.postRepository.CreatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post. Please try again.")
	}

	if err := h.fanOutNewPost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post. Please try again.")
	}

	created, err := h.postRepository.GetPostByID(post.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post. Please try again.")
	}
	view, err := h.buildView(created, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create post. Please try again.")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "Post created successfully",
		"post":    view,
	})
}

// fanOutNewPost writes one NEW_POST notification per follower of the author
func (h *PostHandler) fanOutNewPost(post *models.Post) error {
	followerIDs, err := h.followRepository.GetFollowerIDs(post.AuthorID)
	if err != nil {
		return err
	}
	if len(followerIDs) == 0 {
		return nil
	}

	postID := post.ID
	notifications := make([]models.Notification, len(followerIDs))
	for i, followerID := range followerIDs {
		notifications[i] = models.Notification{
			RecipientID:   followerID,
			TriggerUserID: post.AuthorID,
			Type:          models.NotificationNewPost,
			PostID:        &postID,
		}
	}
	return h.notificationRepository.CreateBatch(notifications)
}

// GetPost retrieves a single post by its ID. Publicly accessible; a
// signed-in viewer additionally gets their isLiked flag.
func (h *PostHandler) GetPost(c echo.Context) error {
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}

	view, err := h.buildView(post, getUserIDFromContext(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch post")
	}
	return c.JSON(http.StatusOK, view)
}

// UpdatePost applies a partial metadata update. Author-only; the audio
// asset itself is immutable after creation.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.IsEmpty() {
		return echo.NewHTTPError(http.StatusBadRequest, "At least one field must be provided for update")
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to update this post")
	}

	if req.Title != nil {
		post.Title = *req.Title
	}
	if req.Subject != nil {
		post.Subject = *req.Subject
	}
	if req.Description != nil {
		post.Description = *req.Description
	}

	if err := h.postRepository.UpdatePost(post); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}

	view, err := h.buildView(post, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update post")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Post updated",
		"post":    view,
	})
}

// DeletePost removes a post. Author-only. Remote asset deletion is
// best-effort: a failure is logged and the row is deleted anyway.
func (h *PostHandler) DeletePost(c echo.Context) error {
	userID := getUserIDFromContext(c)
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete post")
	}
	if post.AuthorID != userID {
		return echo.NewHTTPError(http.StatusForbidden, "You are not allowed to delete this post")
	}

	if post.AudioPublicID != "" {
		if err := h.media.Destroy(c.Request().Context(), post.AudioPublicID, storage.ResourceAudio); err != nil {
			logger.Warn("remote audio deletion failed",
				zap.String("public_id", post.AudioPublicID), zap.Error(err))
		}
	}

	if err := h.postRepository.DeletePost(post.ID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete post")
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "message": "Post deleted"})
}

func (h *PostHandler) buildView(post *models.Post, viewerID uint) (*PostView, error) {
	views, err := buildPostViews([]models.Post{*post}, viewerID, h.likeRepository, h.commentRepository)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}
