package entities

import "time"

const (
	RoleWholesaler = "wholesaler"
	RoleVendor     = "vendor"
	RoleAdmin      = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	PhotoURL     string    `json:"photo_url"`
	Role         string    `json:"role"` // wholesaler, vendor or admin
	CreatedAt    time.Time `json:"created_at"`
}
