package domain

import "time"

// Admin is a staff account allowed into the dashboard.
type Admin struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
}
