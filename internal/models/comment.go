package models

import "time"

// Comment is an append-only comment on a post. No edit or delete path
// is exposed.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"size:1000"`
	UserID    uint      `json:"userId" gorm:"index"`
	PostID    uint      `json:"postId" gorm:"index"`
	User      *User     `json:"-" gorm:"foreignKey:UserID"`
	CreatedAt time.Time `json:"createdAt"`
}

// CommentView is a comment with its author's compact details.
type CommentView struct {
	Comment
	User UserSummary `json:"user"`
}

// CreateCommentRequest defines the request body for creating a comment
type CreateCommentRequest struct {
	Text string `json:"text" validate:"required,min=1,max=1000"`
}
