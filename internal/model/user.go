package model

import "time"

// User is an account allowed to operate the dashboard.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// RoleAdmin is the only role the dashboard currently issues.
const RoleAdmin = "admin"
