// Package models contains domain entities and business models for the identity system
package models

import (
	"time"
)

// User is the individual variant of an Account. Its primary key is the owning
// account's id; the row is removed when the account is removed.
type User struct {
	AccountID      uint    `gorm:"primaryKey" json:"account_id"`
	Name           string  `gorm:"size:120;not null" json:"name"`
	Email          *string `gorm:"size:120;uniqueIndex:uk_users_email" json:"email,omitempty"`
	AccountBalance float64 `gorm:"type:numeric(18,2);not null;default:0" json:"account_balance"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

// UserFilter represents filter criteria for user variant queries
type UserFilter struct {
	AccountID *uint
	Email     *string
}
