package models

import "time"

// Follow is a directed edge from follower to followed user. The composite
// unique index is the source of truth for "already following".
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"followerId" gorm:"index;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"followingId" gorm:"index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"createdAt"`
}
