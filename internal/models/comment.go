package models

import "time"

type AlertComment struct {
	ID           string     `json:"id" db:"id"`
	AlertID      string     `json:"alert_id" db:"alert_id"`
	WorkspaceID  string     `json:"-" db:"owner_id"`
	Content      string     `json:"content" db:"content"`
	ParentID     *string    `json:"parent_id" db:"parent_id"`
	UserID       *string    `json:"user_id" db:"user_id"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	LastEditedAt *time.Time `json:"last_edited_at" db:"last_edited_at"`
}

// CommentAuthor is the slice of the external user directory needed to render
// a comment thread.
type CommentAuthor struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type AlertCommentRead struct {
	AlertComment
	User *CommentAuthor `json:"user"`
}

type AlertCommentCreate struct {
	Content  string  `json:"content" validate:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}

type AlertCommentUpdate struct {
	Content  string  `json:"content" validate:"required,min=1,max=5000"`
	ParentID *string `json:"parent_id" validate:"omitempty,uuid"`
}
