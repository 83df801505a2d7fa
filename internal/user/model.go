// File: internal/user/model.go
package user

import (
	"time"

	"marketplace_backend/internal/common"

	"github.com/google/uuid"
)

// User represents the user model in the database.
type User struct {
	common.BaseModel
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	DisplayName  string `gorm:"type:varchar(150);not null"`
	Role         string `gorm:"type:varchar(50);not null;default:'user'"`
	LastLoginAt  *time.Time
}

// TableName specifies the table name for the User model.
func (User) TableName() string {
	return "users"
}

func (u *User) GetID() uuid.UUID {
	return u.ID
}

func (u *User) GetEmail() string {
	return u.Email
}

func (u *User) GetRole() string {
	return u.Role
}

// --- DTOs ---

// RegisterRequest defines the structure for creating a new user.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=8,max=72"` // bcrypt max is 72 bytes
	DisplayName string `json:"display_name" binding:"required,min=2,max=150"`
}

// LoginRequest defines the structure for logging in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserResponse defines the structure for user data sent in API responses.
type UserResponse struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	CreatedAt   time.Time  `json:"created_at"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// ToUserResponse converts a User model to a UserResponse DTO.
func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}
