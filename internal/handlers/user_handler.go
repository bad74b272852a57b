package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/audora-app/backend/internal/models"
	"github.com/audora-app/backend/internal/repositories"
	"github.com/audora-app/backend/pkg/logger"
	"github.com/audora-app/backend/pkg/storage"
)

const (
	defaultUserListLimit = 10
	profilePostsLimit    = 20
)

// Image types accepted for avatars
var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// profileCounts aggregates the relation counts shown on a profile
type profileCounts struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
	Posts     int64 `json:"posts"`
}

// recentPost is the trimmed post shape embedded in profiles
type recentPost struct {
	ID        uint      `json:"id"`
	Title     string    `json:"title"`
	Subject   string    `json:"subject"`
	AudioURL  string    `json:"audioUrl"`
	CreatedAt time.Time `json:"createdAt"`
}

// ProfileView is a user profile with counts and recent posts. Email is
// only populated on the owner's own profile; IsFollowing only on public
// profiles viewed by someone else.
type ProfileView struct {
	ID          uint          `json:"id"`
	Username    string        `json:"username"`
	Email       string        `json:"email,omitempty"`
	AvatarURL   string        `json:"avatarUrl"`
	Bio         string        `json:"bio"`
	CreatedAt   time.Time     `json:"createdAt"`
	Counts      profileCounts `json:"counts"`
	Posts       []recentPost  `json:"posts"`
	IsFollowing *bool         `json:"isFollowing,omitempty"`
}

// UserHandler handles profiles and the follow graph
type UserHandler struct {
	userRepository   repositories.UserRepository
	postRepository   repositories.PostRepository
	followRepository repositories.FollowRepository
	media            storage.MediaStore
	uploadDir        string
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(
	userRepo repositories.UserRepository,
	postRepo repositories.PostRepository,
	followRepo repositories.FollowRepository,
	media storage.MediaStore,
	uploadDir string,
) *UserHandler {
	return &UserHandler{
		userRepository:   userRepo,
		postRepository:   postRepo,
		followRepository: followRepo,
		media:            media,
		uploadDir:        uploadDir,
	}
}

// RegisterUserRoutes registers profile and follow-graph routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group, auth, optionalAuth echo.MiddlewareFunc) {
	g.GET("/profile/me", h.GetMyProfile, auth)
	g.PUT("/profile", h.UpdateProfile, auth)
	g.GET("/profile/:username", h.GetProfileByUsername, optionalAuth)
	g.POST("/:id/follow", h.Follow, auth)
	g.DELETE("/:id/follow", h.Unfollow, auth)
	g.GET("/:id/followers", h.GetFollowers)
	g.GET("/:id/following", h.GetFollowing)
	g.GET("/:id/is-following", h.IsFollowing, optionalAuth)
}

// GetMyProfile returns the authenticated user's own profile, including
// their email and relation counts.
func (h *UserHandler) GetMyProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while fetching profile.")
	}

	view, err := h.buildProfile(user, true)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Server error while fetching profile.")
	}
	return c.JSON(http.StatusOK, view)
}

// GetProfileByUsername returns a public profile. When the viewer is
// signed in the response says whether they follow this profile.
func (h *UserHandler) GetProfileByUsername(c echo.Context) error {
	username := strings.ToLower(c.Param("username"))
	viewerID := getUserIDFromContext(c)

	user, err := h.userRepository.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user profile")
	}

	view, err := h.buildProfile(user, false)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user profile")
	}

	isFollowing := false
	if viewerID != 0 && viewerID != user.ID {
		isFollowing, err = h.followRepository.IsFollowing(viewerID, user.ID)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch user profile")
		}
	}
	view.IsFollowing = &isFollowing

	return c.JSON(http.StatusOK, view)
}

// UpdateProfile updates the authenticated user's bio and/or avatar. A new
// avatar replaces the old remote asset; deleting the old one is
// best-effort since the new asset is already live.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID := getUserIDFromContext(c)
	if userID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.userRepository.GetUserByID(userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	changed := false

	if file, err := c.FormFile("avatarFile"); err == nil {
		if !allowedImageExt[strings.ToLower(filepath.Ext(file.Filename))] {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type. Only image files are allowed.")
		}

		stagedPath, err := stageUpload(file, h.uploadDir)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
		}
		defer removeStaged(stagedPath)

		uploaded, err := h.media.UploadAvatar(c.Request().Context(), stagedPath, fmt.Sprintf("avatars/%d", userID))
		if err != nil {
			logger.Error("avatar upload failed", zap.Uint("user_id", userID), zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
		}

		if user.AvatarPublicID != "" {
			if err := h.media.Destroy(c.Request().Context(), user.AvatarPublicID, storage.ResourceImage); err != nil {
				logger.Warn("old avatar deletion failed",
					zap.String("public_id", user.AvatarPublicID), zap.Error(err))
			}
		}

		user.AvatarURL = uploaded.URL
		user.AvatarPublicID = uploaded.PublicID
		changed = true
	}

	if values, err := c.FormParams(); err == nil {
		if _, ok := values["bio"]; ok {
			user.Bio = req.Bio
			changed = true
		}
	}

	if !changed {
		return c.JSON(http.StatusOK, echo.Map{"message": "No changes provided to update."})
	}

	if err := h.userRepository.UpdateUser(user); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update profile")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// Follow creates a follow edge and its NEW_FOLLOWER notification in one
// transaction. The pre-check gives the friendly 409; a concurrent
// duplicate is caught by the unique constraint and reported the same way.
func (h *UserHandler) Follow(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	if followerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if followerID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "You cannot follow yourself.")
	}

	target, err := h.userRepository.GetUserByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User to follow not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user.")
	}

	isFollowing, err := h.followRepository.IsFollowing(followerID, targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user.")
	}
	if isFollowing {
		return echo.NewHTTPError(http.StatusConflict, "You are already following this user.")
	}

	follow := &models.Follow{FollowerID: followerID, FollowingID: targetID}
	notif := &models.Notification{
		RecipientID:   targetID,
		TriggerUserID: followerID,
		Type:          models.NotificationNewFollower,
	}
	if err := h.followRepository.CreateWithNotification(follow, notif); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return echo.NewHTTPError(http.StatusConflict, "You are already following this user.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to follow user.")
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": fmt.Sprintf("Successfully followed user %s.", target.Username),
	})
}

// Unfollow deletes the follow edge; 404 when it never existed
func (h *UserHandler) Unfollow(c echo.Context) error {
	followerID := getUserIDFromContext(c)
	if followerID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required.")
	}
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if err := h.followRepository.DeleteFollow(followerID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "You are not following this user.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to unfollow user.")
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Successfully unfollowed user."})
}

// GetFollowers returns a paginated list of users following :id
func (h *UserHandler) GetFollowers(c echo.Context) error {
	return h.listEdgeUsers(c, h.followRepository.GetFollowersPage)
}

// GetFollowing returns a paginated list of users :id follows
func (h *UserHandler) GetFollowing(c echo.Context) error {
	return h.listEdgeUsers(c, h.followRepository.GetFollowingPage)
}

func (h *UserHandler) listEdgeUsers(c echo.Context, fetch func(uint, int, int) ([]models.User, int64, error)) error {
	userID, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}
	if _, err := h.userRepository.GetUserByID(userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "User not found.")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users.")
	}

	page, limit, offset := getPaginationParams(c, defaultUserListLimit)
	users, total, err := fetch(userID, offset, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch users.")
	}

	items := make([]models.UserListItem, len(users))
	for i, u := range users {
		items[i] = u.ToListItem()
	}

	return c.JSON(http.StatusOK, echo.Map{
		"data":       items,
		"pagination": newPagination(page, limit, total),
	})
}

// IsFollowing reports whether the viewer follows :id. An anonymous
// viewer, or a viewer asking about themselves, gets false rather than an
// error.
func (h *UserHandler) IsFollowing(c echo.Context) error {
	targetID, err := parseIDParam(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	viewerID := getUserIDFromContext(c)
	if viewerID == 0 || viewerID == targetID {
		return c.JSON(http.StatusOK, echo.Map{"isFollowing": false})
	}

	isFollowing, err := h.followRepository.IsFollowing(viewerID, targetID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check follow status")
	}
	return c.JSON(http.StatusOK, echo.Map{"isFollowing": isFollowing})
}

func (h *UserHandler) buildProfile(user *models.User, includeEmail bool) (*ProfileView, error) {
	followers, err := h.followRepository.GetFollowersCount(user.ID)
	if err != nil {
		return nil, err
	}
	following, err := h.followRepository.GetFollowingCount(user.ID)
	if err != nil {
		return nil, err
	}
	postCount, err := h.postRepository.CountByAuthor(user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := h.postRepository.GetRecentByAuthor(user.ID, profilePostsLimit)
	if err != nil {
		return nil, err
	}

	recent := make([]recentPost, len(posts))
	for i, p := range posts {
		recent[i] = recentPost{
			ID:        p.ID,
			Title:     p.Title,
			Subject:   p.Subject,
			AudioURL:  p.AudioURL,
			CreatedAt: p.CreatedAt,
		}
	}

	view := &ProfileView{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Bio:       user.Bio,
		CreatedAt: user.CreatedAt,
		Counts:    profileCounts{Followers: followers, Following: following, Posts: postCount},
		Posts:     recent,
	}
	if includeEmail {
		view.Email = user.Email
	}
	return view, nil
}
