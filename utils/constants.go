package utils

import (
	"time"
)

// Token time constants
const (
	// AccessTokenTTL is the default validity window for issued tokens (1 hour)
	AccessTokenTTL = 1 * time.Hour
)

// TokenTypeBearer is the token_type reported in login responses
const TokenTypeBearer = "Bearer"

// CORS constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)
