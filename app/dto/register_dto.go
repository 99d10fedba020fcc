// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"

	"github.com/sahmex/identity/models"
)

// RegisterRequest represents the registration form data
type RegisterRequest struct {
	// Account type selection
	AccountType string `json:"account_type" validate:"required,oneof=user company"`

	// Shared authentication fields
	Username string `json:"username" validate:"required,min=3,max=80,username_format"`
	Password string `json:"password" validate:"required,min=8,max=100"`

	// User fields (required for account_type=user)
	Name  *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Email *string `json:"email,omitempty" validate:"omitempty,email,max=120"`

	// Company fields (required for account_type=company)
	CompanyName          *string `json:"company_name,omitempty" validate:"omitempty,max=120"`
	BusinessRegistration *string `json:"business_registration,omitempty" validate:"omitempty,max=50"`
	CompanyEmail         *string `json:"company_email,omitempty" validate:"omitempty,email,max=120"`
	ContactPhone         *string `json:"contact_phone,omitempty" validate:"omitempty,max=20"`
	Address              *string `json:"address,omitempty" validate:"omitempty,max=255"`
	Industry             *string `json:"industry,omitempty" validate:"omitempty,max=50"`
	TotalSharesIssued    *int64  `json:"total_shares_issued,omitempty" validate:"omitempty,gte=0"`
	SharesAvailable      *int64  `json:"shares_available,omitempty" validate:"omitempty,gte=0"`
}

// RegisterResponse represents the public identity returned after registration.
// The password and its hash are never part of it.
type RegisterResponse struct {
	Message string     `json:"message"`
	Account AccountDTO `json:"account"`
}

// AccountDTO represents account data for API responses
type AccountDTO struct {
	ID          uint      `json:"id"`
	UUID        string    `json:"uuid"`
	Username    string    `json:"username"`
	AccountType string    `json:"account_type"`
	IsActive    *bool     `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt *string   `json:"last_login_at,omitempty"`

	// User variant fields
	Name           *string  `json:"name,omitempty"`
	Email          *string  `json:"email,omitempty"`
	AccountBalance *float64 `json:"account_balance,omitempty"`

	// Company variant fields
	CompanyName          *string `json:"company_name,omitempty"`
	BusinessRegistration *string `json:"business_registration,omitempty"`
	CompanyEmail         *string `json:"company_email,omitempty"`
	ContactPhone         *string `json:"contact_phone,omitempty"`
	Address              *string `json:"address,omitempty"`
	Industry             *string `json:"industry,omitempty"`
	TotalSharesIssued    *int64  `json:"total_shares_issued,omitempty"`
	SharesAvailable      *int64  `json:"shares_available,omitempty"`
}

// ToAccountDTO maps a domain account (with its variant row) to the public DTO
func ToAccountDTO(account models.Account) AccountDTO {
	out := AccountDTO{
		ID:          account.ID,
		UUID:        account.UUID.String(),
		Username:    account.Username,
		AccountType: account.AccountType.TypeName,
		IsActive:    account.IsActive,
		CreatedAt:   account.CreatedAt,
	}

	if account.LastLoginAt != nil {
		formatted := account.LastLoginAt.UTC().Format(time.RFC3339)
		out.LastLoginAt = &formatted
	}

	if account.User != nil {
		out.Name = &account.User.Name
		out.Email = account.User.Email
		out.AccountBalance = &account.User.AccountBalance
	}

	if account.Company != nil {
		out.CompanyName = &account.Company.CompanyName
		out.BusinessRegistration = account.Company.BusinessRegistration
		out.CompanyEmail = account.Company.CompanyEmail
		out.ContactPhone = account.Company.ContactPhone
		out.Address = account.Company.Address
		out.Industry = account.Company.Industry
		out.TotalSharesIssued = &account.Company.TotalSharesIssued
		out.SharesAvailable = &account.Company.SharesAvailable
	}

	return out
}
