package models

import "time"

// Notification types. A notification is only ever created as a side
// effect of another mutation.
const (
	NotificationNewFollower = "NEW_FOLLOWER"
	NotificationNewPost     = "NEW_POST"
	NotificationLike        = "LIKE"
	NotificationComment     = "COMMENT"
)

// Notification is an append-only event targeted at a recipient. The read
// flag is the only mutable attribute and moves false to true once.
type Notification struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	RecipientID   uint      `json:"recipientId" gorm:"index"`
	TriggerUserID uint      `json:"triggerUserId" gorm:"index"`
	Type          string    `json:"type" gorm:"size:20;index"`
	PostID        *uint     `json:"postId,omitempty"`
	Read          bool      `json:"read" gorm:"default:false;index"`
	TriggerUser   *User     `json:"-" gorm:"foreignKey:TriggerUserID"`
	Post          *Post     `json:"-" gorm:"foreignKey:PostID"`
	CreatedAt     time.Time `json:"createdAt" gorm:"index"`
}

// NotificationView is a notification with its trigger user and post
// references resolved to compact shapes.
type NotificationView struct {
	Notification
	TriggerUser *UserSummary `json:"triggerUser,omitempty"`
	Post        *PostSummary `json:"post,omitempty"`
}

// ToView resolves the preloaded relations to their compact shapes
func (n *Notification) ToView() NotificationView {
	view := NotificationView{Notification: *n}
	if n.TriggerUser != nil {
		summary := n.TriggerUser.ToSummary()
		view.TriggerUser = &summary
	}
	if n.Post != nil {
		summary := n.Post.ToSummary()
		view.Post = &summary
	}
	return view
}
