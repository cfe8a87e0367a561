package model

import "time"

// Story is one crowd-sourced rejection story on the Ego Dump page.
type Story struct {
	ID        int64     `json:"id"`
	Author    string    `json:"author"`
	Story     string    `json:"story"`
	Likes     int       `json:"likes"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateStoryRequest is the body for POST /api/stories.
type CreateStoryRequest struct {
	Author string `json:"author"`
	Story  string `json:"story" validate:"required,min=3,max=2000"`
}

// SignupRequest captures an email for the investor-feedback list.
type SignupRequest struct {
	Email string `json:"email" validate:"required,email"`
}
