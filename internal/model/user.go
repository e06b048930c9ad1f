package model

import (
	"strings"
	"time"
)

// User represents a system user of any role
type User struct {
	ID           ID        `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	Phone        *string   `json:"phone,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Name returns the display name of the user.
func (u User) Name() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Clone returns a copy that shares no pointers with u.
func (u User) Clone() User {
	u.Phone = cloneString(u.Phone)
	return u
}

// CreateUserRequest represents user creation parameters
type CreateUserRequest struct {
	Username  string         `json:"username" binding:"required,min=3,max=64"`
	Password  string         `json:"password" binding:"required,min=8"`
	Email     string         `json:"email" binding:"required,email"`
	Role      Role           `json:"role" binding:"required,role"`
	FirstName string         `json:"first_name" binding:"required"`
	LastName  string         `json:"last_name" binding:"required"`
	Phone     *string        `json:"phone"`
	Doctor    *DoctorProfile `json:"doctor,omitempty"`
}
