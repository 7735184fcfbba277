package domain

import (
	"github.com/google/uuid"
)

type User struct {
	ID       string `json:"id"`
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
}

func NewUser(username, email string) *User {
	return &User{
		ID:       uuid.New().String(),
		Username: username,
		Email:    email,
	}
}

// Profile fixes a user's role. Employers publish tasks, employees take them;
// nobody holds both.
type Profile struct {
	UserID     string `json:"user"`
	IsEmployer bool   `json:"isEmployer"`
}

type UserInterest struct {
	UserID     string `json:"user"`
	PropertyID string `json:"property"`
	Interested bool   `json:"isInterested"`
}

// UserBehavior is a like or dislike, unique per (user, task).
type UserBehavior struct {
	UserID string `json:"user"`
	TaskID string `json:"task"`
	Like   bool   `json:"isLike"`
}
