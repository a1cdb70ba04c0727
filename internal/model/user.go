package model

import "time"

type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:64;not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	DisplayName  string    `gorm:"size:128;not null" json:"displayName"`
	PhotoURL     *string   `gorm:"size:512" json:"photoURL"`
	Email        *string   `gorm:"size:128" json:"email"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AuthUser is the only user shape that crosses the HTTP boundary.
// The password hash is excluded by construction, not by tag.
type AuthUser struct {
	ID          uint    `json:"id"`
	Username    string  `json:"username"`
	DisplayName string  `json:"displayName"`
	PhotoURL    *string `json:"photoURL"`
	Email       *string `json:"email"`
}

func (u *User) AuthView() *AuthUser {
	return &AuthUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		PhotoURL:    u.PhotoURL,
		Email:       u.Email,
	}
}
