// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"errors"
	"fmt"
)

// Business flow error constants
var (
	// Account-related errors
	ErrAccountNotFound     = errors.New("account not found")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrAccountTypeNotFound = errors.New("account type not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")

	// Registration errors
	ErrUsernameAlreadyExists             = errors.New("username already exists")
	ErrEmailAlreadyExists                = errors.New("email already exists")
	ErrCompanyEmailAlreadyExists         = errors.New("company email already exists")
	ErrBusinessRegistrationAlreadyExists = errors.New("business registration number already exists")
	ErrUserFieldsRequired                = errors.New("user fields are required for user accounts")
	ErrCompanyFieldsRequired             = errors.New("company fields are required for company accounts")
	ErrPasswordTooShort                  = errors.New("password is too short")
	ErrSharesOutOfRange                  = errors.New("shares available cannot exceed total shares issued")
)

type BusinessError struct {
	Code    string
	Message string
	Err     error
}

func (e *BusinessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *BusinessError) Unwrap() error {
	return e.Err
}

func NewBusinessError(code, message string, err error) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func NewBusinessErrorf(code, message string, err error, args ...any) *BusinessError {
	return &BusinessError{
		Code:    code,
		Message: fmt.Sprintf(message, args...),
		Err:     err,
	}
}

func IsAccountNotFound(err error) bool {
	return errors.Is(err, ErrAccountNotFound)
}

func IsAccountInactive(err error) bool {
	return errors.Is(err, ErrAccountInactive)
}

func IsAccountTypeNotFound(err error) bool {
	return errors.Is(err, ErrAccountTypeNotFound)
}

func IsInvalidCredentials(err error) bool {
	return errors.Is(err, ErrInvalidCredentials)
}

func IsUsernameAlreadyExists(err error) bool {
	return errors.Is(err, ErrUsernameAlreadyExists)
}

func IsEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrEmailAlreadyExists)
}

func IsCompanyEmailAlreadyExists(err error) bool {
	return errors.Is(err, ErrCompanyEmailAlreadyExists)
}

func IsBusinessRegistrationAlreadyExists(err error) bool {
	return errors.Is(err, ErrBusinessRegistrationAlreadyExists)
}

func IsUserFieldsRequired(err error) bool {
	return errors.Is(err, ErrUserFieldsRequired)
}

func IsCompanyFieldsRequired(err error) bool {
	return errors.Is(err, ErrCompanyFieldsRequired)
}

func IsPasswordTooShort(err error) bool {
	return errors.Is(err, ErrPasswordTooShort)
}

func IsSharesOutOfRange(err error) bool {
	return errors.Is(err, ErrSharesOutOfRange)
}
