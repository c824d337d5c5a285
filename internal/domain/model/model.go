package model

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// User is one registered account. PasswordHash never leaves the process:
// it is excluded from JSON and only the store layer reads or writes it.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	AboutMe      string     `json:"aboutMe"`
	Skills       string     `json:"skills"`
	Experience   string     `json:"experience"`
	Education    string     `json:"education"`
	Interests    string     `json:"interests"`
	ProfilePic   string     `json:"profilePic"`
	Visibility   Visibility `json:"visibility"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

type News struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Excerpt     string    `json:"excerpt"`
	Content     string    `json:"content"`
	AuthorID    uuid.UUID `json:"authorId"`
	Author      string    `json:"author"`
	Category    string    `json:"category"`
	ImageBase64 string    `json:"imageBase64"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Session is the result of a successful registration or login.
type Session struct {
	User      User
	Token     string
	ExpiresAt time.Time
}
