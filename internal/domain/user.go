package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account that signs in with email + password
type User struct {
	ID        string    `gorm:"column:id;primaryKey;type:varchar(36)" json:"id"`
	Email     string    `gorm:"column:email;type:varchar(255);uniqueIndex;not null" json:"email"`
	Name      string    `gorm:"column:name;type:varchar(100)" json:"name"`
	Image     *string   `gorm:"column:image;type:varchar(1000)" json:"image,omitempty"`
	Password  string    `gorm:"column:password;type:varchar(255);not null" json:"-"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string { return "users" }

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserSummary is the public identity shown next to memories, comments and reactions
type UserSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// Summary returns the public part of the user. A nil user yields an empty summary.
func (u *User) Summary() UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{ID: u.ID, Name: u.Name, Image: u.Image}
}

// UserResponse is the authenticated user's own view (never includes the hash)
type UserResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  string  `json:"name"`
	Image *string `json:"image"`
}

// ToResponse converts User to UserResponse
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{ID: u.ID, Email: u.Email, Name: u.Name, Image: u.Image}
}

// CredentialsRequest is the multiplexed sign-in / sign-up body.
// isSignUp arrives as a string from HTML form posts ("true"/"false"),
// so both JSON strings and booleans are accepted.
type CredentialsRequest struct {
	Email    string   `json:"email" validate:"required,email,max=255"`
	Password string   `json:"password" validate:"required,min=1,max=72"`
	Name     string   `json:"name" validate:"max=100"`
	IsSignUp FlexBool `json:"isSignUp"`
}
