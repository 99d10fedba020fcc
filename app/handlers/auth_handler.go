// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"

	"github.com/sahmex/identity/app/dto"
	"github.com/sahmex/identity/app/middleware"
	businessflow "github.com/sahmex/identity/business_flow"
)

// AuthHandlerInterface defines the contract for authentication handlers
type AuthHandlerInterface interface {
	Register(c fiber.Ctx) error
	Login(c fiber.Ctx) error
	Me(c fiber.Ctx) error
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	registrationFlow businessflow.RegistrationFlow
	loginFlow        businessflow.LoginFlow
	validator        *validator.Validate
}

func (h *AuthHandler) ErrorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func (h *AuthHandler) SuccessResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(registrationFlow businessflow.RegistrationFlow, loginFlow businessflow.LoginFlow) *AuthHandler {
	handler := &AuthHandler{
		registrationFlow: registrationFlow,
		loginFlow:        loginFlow,
		validator:        validator.New(),
	}

	handler.setupCustomValidations()

	return handler
}

// Register handles new account registration for both variants
func (h *AuthHandler) Register(c fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	ipAddress := c.IP()
	userAgent := c.Get("User-Agent")
	metadata := businessflow.NewClientMetadata(ipAddress, userAgent)

	result, err := h.registrationFlow.Register(h.createRequestContext(c, "/api/auth/register"), &req, metadata)
	middleware.RecordAuthAttempt("register", err == nil)
	if err != nil {
		// Handle specific business errors
		if businessflow.IsUsernameAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Username already exists", "USERNAME_EXISTS", nil)
		}
		if businessflow.IsEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Email already exists", "EMAIL_EXISTS", nil)
		}
		if businessflow.IsCompanyEmailAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Company email already exists", "COMPANY_EMAIL_EXISTS", nil)
		}
		if businessflow.IsBusinessRegistrationAlreadyExists(err) {
			return h.ErrorResponse(c, fiber.StatusConflict, "Business registration number already exists", "BUSINESS_REGISTRATION_EXISTS", nil)
		}
		if businessflow.IsAccountTypeNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Account type not found", "ACCOUNT_TYPE_NOT_FOUND", nil)
		}
		if businessflow.IsUserFieldsRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "User fields are required for user accounts", "USER_FIELDS_REQUIRED", nil)
		}
		if businessflow.IsCompanyFieldsRequired(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Company fields are required for company accounts", "COMPANY_FIELDS_REQUIRED", nil)
		}
		if businessflow.IsPasswordTooShort(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Password is too short", "PASSWORD_TOO_SHORT", nil)
		}
		if businessflow.IsSharesOutOfRange(err) {
			return h.ErrorResponse(c, fiber.StatusBadRequest, "Shares available cannot exceed total shares issued", "SHARES_OUT_OF_RANGE", nil)
		}

		log.Println("Registration failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Registration failed", "REGISTRATION_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusCreated, result.Message, result.Account)
}

// Login handles credential verification and token issuance
func (h *AuthHandler) Login(c fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.Bind().JSON(&req); err != nil {
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", "INVALID_REQUEST", err.Error())
	}

	// Validate request
	if err := h.validator.Struct(&req); err != nil {
		var validationErrors []string
		for _, err := range err.(validator.ValidationErrors) {
			validationErrors = append(validationErrors, getValidationErrorMessage(err))
		}
		return h.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", "VALIDATION_ERROR", validationErrors)
	}

	// Get client information
	ipAddress := c.IP()
	userAgent := c.Get("User-Agent")
	metadata := businessflow.NewClientMetadata(ipAddress, userAgent)

	result, err := h.loginFlow.Login(h.createRequestContext(c, "/api/auth/login"), &req, metadata)
	middleware.RecordAuthAttempt("login", err == nil)
	if err != nil {
		// Unknown usernames and wrong passwords answer identically.
		if businessflow.IsInvalidCredentials(err) || businessflow.IsAccountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusUnauthorized, "Invalid credentials", "INVALID_CREDENTIALS", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Login failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Login failed", "LOGIN_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Login successful", result)
}

// Me returns the authenticated account's public identity
func (h *AuthHandler) Me(c fiber.Ctx) error {
	accountID, ok := middleware.AccountIDFromContext(c)
	if !ok {
		return h.ErrorResponse(c, fiber.StatusUnauthorized, "Authentication required", "UNAUTHORIZED", nil)
	}

	result, err := h.loginFlow.GetAccount(h.createRequestContext(c, "/api/auth/me"), accountID)
	if err != nil {
		if businessflow.IsAccountNotFound(err) {
			return h.ErrorResponse(c, fiber.StatusNotFound, "Account not found", "ACCOUNT_NOT_FOUND", nil)
		}
		if businessflow.IsAccountInactive(err) {
			return h.ErrorResponse(c, fiber.StatusForbidden, "Account is inactive", "ACCOUNT_INACTIVE", nil)
		}

		log.Println("Fetching account failed", err)
		return h.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch account", "ACCOUNT_FETCH_FAILED", nil)
	}

	return h.SuccessResponse(c, fiber.StatusOK, "Account retrieved successfully", result)
}

// createRequestContext creates a context with timeout and request-scoped values
func (h *AuthHandler) createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return h.createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

// createRequestContextWithTimeout creates a context with custom timeout and request-scoped values
func (h *AuthHandler) createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Add request-scoped values for observability
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get(businessflow.RequestIDKey))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel) // Store cancel function for cleanup

	return ctx
}

// Custom validation setup
func (h *AuthHandler) setupCustomValidations() {
	// Usernames start with a letter; the rest is letters, digits, '.', '-', '_'.
	h.validator.RegisterValidation("username_format", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) == 0 {
			return false
		}
		first := value[0]
		if !((first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z')) {
			return false
		}
		for _, char := range value[1:] {
			if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
				(char >= '0' && char <= '9') || char == '.' || char == '-' || char == '_') {
				return false
			}
		}
		return true
	})
}
