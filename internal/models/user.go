package models

import "time"

// User represents a registered member of the quiz platform.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Provider  string    `gorm:"size:32" json:"provider"`
	Role      string    `gorm:"size:32;not null;default:user" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const (
	// RoleUser is the default role for registered members.
	RoleUser = "user"
	// RoleAdmin marks platform administrators.
	RoleAdmin = "admin"
)
