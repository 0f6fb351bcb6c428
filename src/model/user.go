package model

import "time"

// User is the owning identity for journal rows. Every query in the
// repositories filters on UserID; that filter is the whole tenant-isolation
// story.
type User struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Username     *string `gorm:"size:30;uniqueIndex" json:"username,omitempty"`
	Email        *string `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	PasswordHash string  `gorm:"size:255" json:"-"`

	// Set when the account was created (or linked) through OAuth.
	OAuthProvider *string `gorm:"column:oauth_provider;size:50;uniqueIndex:idx_users_oauth,priority:1" json:"-"`
	OAuthID       *string `gorm:"column:oauth_id;size:255;uniqueIndex:idx_users_oauth,priority:2" json:"-"`
	OAuthEmail    *string `gorm:"column:oauth_email;size:255" json:"-"`

	DisplayName string    `gorm:"size:255" json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

func (User) TableName() string {
	return "users"
}

// UserResponse is the profile shape returned to clients.
type UserResponse struct {
	ID          uint   `json:"id"`
	Username    string `json:"username,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	MemberSince string `json:"member_since"`
}

func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		MemberSince: u.CreatedAt.Format(time.RFC3339),
	}
	if u.Username != nil {
		resp.Username = *u.Username
	}
	if u.Email != nil {
		resp.Email = *u.Email
	} else if u.OAuthEmail != nil {
		resp.Email = *u.OAuthEmail
	}
	return resp
}

type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateUsernamePayload struct {
	Username string `json:"username"`
}
