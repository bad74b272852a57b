package models

import "time"

// Like is a toggle edge between a user and a post. The composite unique
// index rejects the losing side of concurrent identical toggles.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"userId" gorm:"index;uniqueIndex:idx_user_post_like"`
	PostID    uint      `json:"postId" gorm:"index;uniqueIndex:idx_user_post_like"`
	CreatedAt time.Time `json:"createdAt"`
}
