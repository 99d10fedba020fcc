// Package dto contains Data Transfer Objects for API request and response structures
package dto

import (
	"time"
)

// LoginRequest represents the request payload for login
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=3,max=80" example:"alice"`
	Password string `json:"password" validate:"required,min=1,max=100" example:"Secret123"`
}

// LoginResponse represents the successful login response
type LoginResponse struct {
	Token     string     `json:"token" example:"eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9..."`
	TokenType string     `json:"token_type" example:"Bearer"`
	ExpiresIn int        `json:"expires_in" example:"3600"`
	ExpiresAt time.Time  `json:"expires_at" example:"2024-01-15T16:30:00Z"`
	Account   AccountDTO `json:"account"`
}
