package model

import "time"

// Role is a backend account role.
type Role string

const (
	RoleClaimant   Role = "claimant"
	RoleAdmin      Role = "admin"
	RoleFinance    Role = "finance"
	RoleMLEngineer Role = "ml_engineer"
)

// User is an account as returned by the backend.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FirstName string    `json:"first_name,omitempty"`
	LastName  string    `json:"last_name,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ActivityLog is a single backend activity-log entry.
type ActivityLog struct {
	ID        string         `json:"id"`
	UserID    string         `json:"user_id"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
