package handlers

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
)

// InteractionHandler handles likes and comments on posts
type InteractionHandler struct {
	likeRepository    repositories.LikeRepository
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	userRepository    repositories.UserRepository
}

// NewInteractionHandler creates a new InteractionHandler
func NewInteractionHandler(
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
	postRepo repositories.PostRepository,
	userRepo repositories.UserRepository,
) *InteractionHandler {
	return &InteractionHandler{
		likeRepository:    likeRepo,
		commentRepository: commentRepo,
		postRepository:    postRepo,
		userRepository:    userRepo,
	}
}

// RegisterInteractionRoutes registers like and comment routes
func (h *InteractionHandler) RegisterInteractionRoutes(g *echo.Group, auth echo.MiddlewareFunc) {
	g.POST("/:postId/like", h.ToggleLike, auth)
	g.POST("/:postId/comment", h.CreateComment, auth)
	g.GET("/:postId/comments", h.GetComments)
}

// ToggleLike creates the like edge if absent or removes it if present.
// The create path writes the LIKE notification for the post author in the
// same transaction, unless the liker is the author. The count is
// recomputed on every call, never cached.
func (h *InteractionHandler) ToggleLike(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred while processing your request.")
	}

	liked, err := h.likeRepository.HasUserLikedPost(userID, postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred while processing your request.")
	}

	if liked {
		err := h.likeRepository.DeleteLike(userID, postID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred while processing your request.")
		}
		likeCount, err := h.likeRepository.GetLikesCount(postID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred while processing your request.")
		}
		return c.JSON(http.StatusOK, echo.Map{
			"message":   "Post unliked successfully.",
			"liked":     false,
			"likeCount": likeCount,
		})
	}

	like := &models.Like{UserID: userID, PostID: postID}
	var notif *models.Notification
	if post.AuthorID != userID {
		pid := postID
		notif = &models.Notification{
			RecipientID:   post.AuthorID,
			TriggerUserID: userID,
			Type:          models.NotificationLike,
			PostID:        &pid,
		}
	}
	if err := h.likeRepository.CreateWithNotification(like, notif); err != nil {
		// A concurrent identical toggle lost the race to the unique
		// index; the edge exists, which is what the caller asked for.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "Post already liked.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred while processing your request.")
	}

	likeCount, err := h.likeRepository.GetLikesCount(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "An error occurred while processing your request.")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":   "Post liked successfully.",
		"liked":     true,
		"likeCount": likeCount,
	})
}

// CreateComment appends a comment and, in the same transaction, a COMMENT
// notification for the post author unless the commenter is the author.
func (h *InteractionHandler) CreateComment(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	post, err := h.postRepository.GetPostByID(postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment.")
	}

	comment := &models.Comment{Text: req.Text, UserID: userID, PostID: postID}
	var notif *models.Notification
	if post.AuthorID != userID {
		pid := postID
		notif = &models.Notification{
			RecipientID:   post.AuthorID,
			TriggerUserID: userID,
			Type:          models.NotificationComment,
			PostID:        &pid,
		}
	}
	if err := h.commentRepository.CreateWithNotification(comment, notif); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment.")
	}

	commenter, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create comment.")
	}

	return c.JSON(http.StatusCreated, models.CommentView{
		Comment: *comment,
		User:    commenter.ToSummary(),
	})
}

// GetComments returns all comments for a post, oldest first, with each
// commenter's compact details. Publicly accessible and unpaginated.
func (h *InteractionHandler) GetComments(c echo.Context) error {
	postID, err := parseIDParam(c, "postId")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid post ID")
	}

	if _, err := h.postRepository.GetPostByID(postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Post not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments.")
	}

	comments, err := h.commentRepository.GetCommentsByPostID(postID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch comments.")
	}

	views := make([]models.CommentView, len(comments))
	for i, comment := range comments {
		views[i] = models.CommentView{Comment: comment}
		if comment.User != nil {
			views[i].User = comment.User.ToSummary()
		}
	}
	return c.JSON(http.StatusOK, views)
}
