package models

import "time"

// Roles known to the plant.
const (
	RoleSupervisor = "SUPERVISOR"
	RoleManager    = "GERENTE"
	RoleSystems    = "SISTEMAS"
)

// User is an account able to sign in.
type User struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"size:64;not null;uniqueIndex"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Name         string    `json:"name" gorm:"size:128;not null"`
	Role         string    `json:"role" gorm:"size:32;not null"`
	Active       bool      `json:"active" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
}

// Identity is the authenticated caller, decoded once at the boundary.
type Identity struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}
