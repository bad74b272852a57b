package models

import "time"

// Post represents an audio post. The audio asset is immutable after
// creation; only the text metadata can change.
type Post struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:255"`
	Subject       string    `json:"subject" gorm:"size:100"`
	Description   string    `json:"description" gorm:"size:5000"`
	AudioURL      string    `json:"audioUrl"`
	AudioPublicID string    `json:"-"` // remote asset id, needed for deletion
	AuthorID      uint      `json:"authorId" gorm:"index"`
	Author        *User     `json:"-" gorm:"foreignKey:AuthorID"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// PostSummary is the compact post reference embedded in notifications.
type PostSummary struct {
	ID      uint   `json:"id"`
	Title   string `json:"title"`
	Subject string `json:"subject"`
}

// ToSummary converts a Post to its compact representation
func (p *Post) ToSummary() PostSummary {
	return PostSummary{ID: p.ID, Title: p.Title, Subject: p.Subject}
}

// CreatePostRequest defines the multipart form fields for creating a post.
// The audio itself travels as the "audioFile" form file.
type CreatePostRequest struct {
	Title       string `form:"title" json:"title" validate:"required,min=1,max=255"`
	Subject     string `form:"subject" json:"subject" validate:"required,min=1,max=100"`
	Description string `form:"description" json:"description" validate:"max=5000"`
}

// UpdatePostRequest defines the request body for updating post metadata.
// All fields are optional but at least one must be present.
type UpdatePostRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,min=1,max=255"`
	Subject     *string `json:"subject,omitempty" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
}

// IsEmpty reports whether the update carries no fields at all
func (r *UpdatePostRequest) IsEmpty() bool {
	return r.Title == nil && r.Subject == nil && r.Description == nil
}
