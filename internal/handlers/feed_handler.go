package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
)

const defaultFeedLimit = 10

// PostView is a post enriched with its author and viewer-specific flags
type PostView struct {
	models.Post
	Author       models.UserSummary `json:"author"`
	LikeCount    int64              `json:"likeCount"`
	CommentCount int64              `json:"commentCount"`
	IsLiked      bool               `json:"isLiked"`
}

// FeedHandler handles the explore and home feeds
type FeedHandler struct {
	postRepository    repositories.PostRepository
	followRepository  repositories.FollowRepository
	likeRepository    repositories.LikeRepository
	commentRepository repositories.CommentRepository
}

// NewFeedHandler creates a new FeedHandler
func NewFeedHandler(
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
) *FeedHandler {
	return &FeedHandler{
		postRepository:    postRepo,
		followRepository:  followRepo,
		likeRepository:    likeRepo,
		commentRepository: commentRepo,
	}
}

// RegisterFeedRoutes registers the feed routes on the posts group
func (h *FeedHandler) RegisterFeedRoutes(g *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/explore", h.GetExploreFeed, optionalAuth)
	g.GET("/home-feed", h.GetHomeFeed, auth)
}

// GetExploreFeed returns all posts newest-first. Anonymous viewers get
// isLiked false everywhere.
func (h *FeedHandler) GetExploreFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	page, limit, offset := getPaginationParams(c, defaultFeedLimit)

	posts, total, err := h.postRepository.GetPage(nil, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch explore feed")
	}

	views, err := buildPostViews(posts, viewerID, h.likeRepository, h.commentRepository)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch explore feed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       views,
		"pagination": newPagination(page, limit, total),
	})
}

// GetHomeFeed returns posts authored by the viewer or anyone they follow
func (h *FeedHandler) GetHomeFeed(c echo.Context) error {
	viewerID := getUserIDFromContext(c)
	if viewerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	page, limit, offset := getPaginationParams(c, defaultFeedLimit)

	followingIDs, err := h.followRepository.GetFollowingIDs(viewerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch home feed")
	}
	authorIDs := append(followingIDs, viewerID)

	posts, total, err := h.postRepository.GetPage(authorIDs, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch home feed")
	}

	views, err := buildPostViews(posts, viewerID, h.likeRepository, h.commentRepository)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch home feed")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       views,
		"pagination": newPagination(page, limit, total),
	})
}

// buildPostViews enriches a page of posts with author summaries, counts
// and per-viewer liked flags. The like lookup is restricted to the page's
// post ids: two round trips per page instead of one per post.
func buildPostViews(
	posts []models.Post,
	viewerID uint,
	likeRepo repositories.LikeRepository,
	commentRepo repositories.CommentRepository,
) ([]PostView, error) {
	postIDs := make([]uint, len(posts))
	for i, p := range posts {
		postIDs[i] = p.ID
	}

	likeCounts, err := likeRepo.CountByPostIDs(postIDs)
	if err != nil {
		return nil, err
	}
	commentCounts, err := commentRepo.CountByPostIDs(postIDs)
	if err != nil {
		return nil, err
	}

	likedSet := map[uint]bool{}
	if viewerID != 0 {
		likedSet, err = likeRepo.GetLikedPostIDs(viewerID, postIDs)
		if err != nil {
			return nil, err
		}
	}

	views := make([]PostView, len(posts))
	for i, p := range posts {
		views[i] = PostView{
			Post:         p,
			LikeCount:    likeCounts[p.ID],
			CommentCount: commentCounts[p.ID],
			IsLiked:      likedSet[p.ID],
		}
		if p.Author != nil {
			views[i].Author = p.Author.ToSummary()
		}
	}
	return views, nil
}
