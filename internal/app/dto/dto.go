package dto

import (
	"encoding/json"
	"strings"
)

type RegisterDTO struct {
	Username string `json:"username" validate:"required,alphanum,min=3,max=30"`
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,strongpwd"`
}

type LoginDTO struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type UpdateDetailsDTO struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"    validate:"omitempty,email"`
	Password  string `json:"password" validate:"omitempty,strongpwd"`
}

type UpdateProfileDTO struct {
	FirstName  string    `json:"firstName" validate:"required"`
	LastName   string    `json:"lastName"  validate:"required"`
	AboutMe    string    `json:"aboutMe"`
	Skills     CommaList `json:"skills"`
	Experience string    `json:"experience"`
	Education  string    `json:"education"`
	Interests  CommaList `json:"interests"`
	Visibility string    `json:"visibility" validate:"omitempty,oneof=public private"`
}

type ProfilePictureDTO struct {
	Image string `json:"image" validate:"required"`
}

type NewsCreateDTO struct {
	Title       string `json:"title"   validate:"required"`
	Excerpt     string `json:"excerpt" validate:"required"`
	Content     string `json:"content" validate:"required"`
	Category    string `json:"category"`
	ImageBase64 string `json:"imageBase64"`
	IsFeatured  bool   `json:"isFeatured"`
}

type NewsUpdateDTO struct {
	Title       *string `json:"title"`
	Excerpt     *string `json:"excerpt"`
	Content     *string `json:"content"`
	Category    *string `json:"category"`
	ImageBase64 *string `json:"imageBase64"`
	IsFeatured  *bool   `json:"isFeatured"`
}

// UserResponse is the compact identity document returned by register/login.
type UserResponse struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	ProfilePic string `json:"profilePic"`
	Role       string `json:"role"`
}

// CommaList accepts either a JSON string or an array of strings; the array
// form is flattened to "a, b, c" so both client generations stay compatible.
type CommaList string

func (l *CommaList) UnmarshalJSON(b []byte) error {
	trimmed := strings.TrimSpace(string(b))
	if strings.HasPrefix(trimmed, "[") {
		var parts []string
		if err := json.Unmarshal(b, &parts); err != nil {
			return err
		}
		kept := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				kept = append(kept, p)
			}
		}
		*l = CommaList(strings.Join(kept, ", "))
		return nil
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*l = CommaList(strings.TrimSpace(s))
	return nil
}
