package models

import (
	"time"
)

// Role defines allowed roles in the system
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// Account is a customer or admin identity. The phone number doubles as the
// login credential and only its bcrypt hash is kept in PasswordHash.
type Account struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Name         string    `json:"name" gorm:"not null;index"`
	Phone        string    `json:"phone" gorm:"uniqueIndex;not null"`
	Email        string    `json:"email"`
	Address      string    `json:"address"`
	Role         Role      `json:"role" gorm:"not null;default:'customer'"`
	PasswordHash string    `json:"-" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
