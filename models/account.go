// Package models contains domain entities and business models for the identity system
package models

import (
	"time"

	"github.com/google/uuid"
)

// Account is the base identity record shared by both variants. Exactly one
// variant row (User or Company) exists per account, joined on the primary key
// and discriminated by the account type.
type Account struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UUID          uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:uk_accounts_uuid" json:"uuid"`
	Username      string      `gorm:"size:80;not null;uniqueIndex:uk_accounts_username" json:"username"`
	AccountTypeID uint        `gorm:"not null;index:idx_accounts_account_type_id" json:"account_type_id"`
	AccountType   AccountType `gorm:"foreignKey:AccountTypeID;references:ID" json:"account_type,omitempty"`

	PasswordHash string `gorm:"size:255;not null" json:"-"` // Never serialize password hash

	IsActive *bool `gorm:"default:true;index:idx_accounts_is_active" json:"is_active"`

	CreatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC');index:idx_accounts_created_at" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
	LastLoginAt *time.Time `gorm:"index:idx_accounts_last_login_at" json:"last_login_at,omitempty"`

	// Variant rows. At most one of these is non-nil, matching AccountType.
	User    *User    `gorm:"foreignKey:AccountID" json:"user,omitempty"`
	Company *Company `gorm:"foreignKey:AccountID" json:"company,omitempty"`

	AuditLogs []AuditLog `gorm:"foreignKey:AccountID" json:"-"`
}

func (Account) TableName() string {
	return "accounts"
}

// AccountFilter represents filter criteria for account queries
type AccountFilter struct {
	ID              *uint
	UUID            *uuid.UUID
	Username        *string
	AccountTypeID   *uint
	AccountTypeName *string
	IsActive        *bool
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	LastLoginAfter  *time.Time
	LastLoginBefore *time.Time
}

func (a *Account) IsUser() bool {
	return a.AccountType.TypeName == AccountTypeUser
}

func (a *Account) IsCompany() bool {
	return a.AccountType.TypeName == AccountTypeCompany
}

// DisplayName returns the human-readable name of the variant owner.
func (a *Account) DisplayName() string {
	switch {
	case a.IsCompany() && a.Company != nil:
		return a.Company.CompanyName
	case a.IsUser() && a.User != nil:
		return a.User.Name
	default:
		return a.Username
	}
}
