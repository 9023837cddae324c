package domain

import "time"

type Blog struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Body               string    `json:"body"`
	CoverImageURL      string    `json:"cover_image_url,omitempty"`
	CoverImagePublicID string    `json:"-"`
	CreatedBy          string    `json:"created_by"`
	Author             *User     `json:"author,omitempty"`
	Likes              []string  `json:"likes"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

type Comment struct {
	ID            string    `json:"id"`
	Content       string    `json:"content"`
	BlogID        string    `json:"blog_id"`
	CreatedBy     string    `json:"created_by"`
	Author        *User     `json:"author,omitempty"`
	ParentComment string    `json:"parent_comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
