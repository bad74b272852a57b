package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// User represents an Audora account. Username and email are stored
// lowercased so uniqueness is case-insensitive.
type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"size:30;uniqueIndex"`
	Email          string    `json:"email" gorm:"size:255;uniqueIndex"`
	Password       string    `json:"-"` // bcrypt hash, never serialized
	AvatarURL      string    `json:"avatarUrl"`
	AvatarPublicID string    `json:"-"` // remote asset id, needed for replacement
	Bio            string    `json:"bio" gorm:"size:250"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// UserSummary is the compact author/actor shape embedded in posts,
// comments and notifications.
type UserSummary struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
}

// UserListItem is the shape returned by follower/following listings.
type UserListItem struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatarUrl"`
	Bio       string `json:"bio"`
}

// ToSummary converts a User to its compact representation
func (u *User) ToSummary() UserSummary {
	return UserSummary{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
}

// ToListItem converts a User to the follower/following list shape
func (u *User) ToListItem() UserListItem {
	return UserListItem{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL, Bio: u.Bio}
}

// SignupRequest defines the request body for user registration
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30,username"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest defines the request body for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest defines the multipart form fields for a profile
// update. The avatar itself travels as the "avatarFile" form file.
type UpdateProfileRequest struct {
	Bio string `form:"bio" json:"bio" validate:"max=250"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	UserID   uint   `json:"userId"`
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}
