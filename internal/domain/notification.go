package domain

import "time"

// Tipos de notificación soportados.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
)

type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Type      string    `json:"type"`
	BlogID    string    `json:"blog_id"`
	CommentID string    `json:"comment_id,omitempty"`
	FromUser  string    `json:"from_user"`
	Actor     *User     `json:"actor,omitempty"`
	Blog      *Blog     `json:"blog,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
