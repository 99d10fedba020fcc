// Package models contains domain entities and business models for the identity system
package models

import (
	"time"
)

// Company is the corporate variant of an Account. Share counters are written
// at registration and owned by the trading system afterwards; this service
// never writes shares_available > total_shares_issued.
type Company struct {
	AccountID            uint    `gorm:"primaryKey" json:"account_id"`
	CompanyName          string  `gorm:"size:120;not null" json:"company_name"`
	BusinessRegistration *string `gorm:"size:50;uniqueIndex:uk_companies_business_registration" json:"business_registration,omitempty"`
	CompanyEmail         *string `gorm:"size:120;uniqueIndex:uk_companies_company_email" json:"company_email,omitempty"`
	ContactPhone         *string `gorm:"size:20" json:"contact_phone,omitempty"`
	Address              *string `gorm:"size:255" json:"address,omitempty"`
	Industry             *string `gorm:"size:50" json:"industry,omitempty"`
	TotalSharesIssued    int64   `gorm:"not null;default:0" json:"total_shares_issued"`
	SharesAvailable      int64   `gorm:"not null;default:0" json:"shares_available"`

	CreatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"created_at"`
	UpdatedAt time.Time `gorm:"default:(CURRENT_TIMESTAMP AT TIME ZONE 'UTC')" json:"updated_at"`
}

func (Company) TableName() string {
	return "companies"
}

// CompanyFilter represents filter criteria for company variant queries
type CompanyFilter struct {
	AccountID            *uint
	BusinessRegistration *string
	CompanyEmail         *string
}
