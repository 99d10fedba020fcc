// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sahmex/identity/app/dto"
	"github.com/sahmex/identity/app/services"
	"github.com/sahmex/identity/models"
	"github.com/sahmex/identity/repository"
	"github.com/sahmex/identity/utils"
)

// RegistrationFlow handles new account creation for both variants
type RegistrationFlow interface {
	Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error)
}

// RegistrationFlowImpl implements the registration business flow
type RegistrationFlowImpl struct {
	accountRepo       repository.AccountRepository
	accountTypeRepo   repository.AccountTypeRepository
	auditRepo         repository.AuditLogRepository
	passwordService   services.PasswordService
	db                *gorm.DB
	passwordMinLength int
}

// NewRegistrationFlow creates a new registration flow instance
func NewRegistrationFlow(
	accountRepo repository.AccountRepository,
	accountTypeRepo repository.AccountTypeRepository,
	auditRepo repository.AuditLogRepository,
	passwordService services.PasswordService,
	db *gorm.DB,
	passwordMinLength int,
) RegistrationFlow {
	return &RegistrationFlowImpl{
		accountRepo:       accountRepo,
		accountTypeRepo:   accountTypeRepo,
		auditRepo:         auditRepo,
		passwordService:   passwordService,
		db:                db,
		passwordMinLength: passwordMinLength,
	}
}

// Register creates a new account with its variant row. The base row and the
// variant row are written in one transaction; a failure leaves no partial
// account behind.
func (rf *RegistrationFlowImpl) Register(ctx context.Context, request *dto.RegisterRequest, metadata *ClientMetadata) (*dto.RegisterResponse, error) {
	if err := rf.validateRegisterRequest(request); err != nil {
		_ = rf.LogRegistrationAttempt(ctx, nil, models.AuditActionRegistrationFailed, err.Error(), false, metadata)
		return nil, NewBusinessError("REGISTRATION_VALIDATION_FAILED", "Registration validation failed", err)
	}

	var account *models.Account

	resp, err := rf.WithRegistrationTransaction(ctx, func(ctx context.Context) (*dto.RegisterResponse, error) {
		if err := rf.checkUniqueness(ctx, request); err != nil {
			return nil, err
		}

		accountType, err := rf.accountTypeRepo.ByTypeName(ctx, request.AccountType)
		if err != nil {
			return nil, err
		}
		if accountType == nil {
			return nil, ErrAccountTypeNotFound
		}

		passwordHash, err := rf.passwordService.Hash(request.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}

		now := utils.UTCNow()
		account = &models.Account{
			UUID:          uuid.New(),
			Username:      request.Username,
			AccountTypeID: accountType.ID,
			AccountType:   *accountType,
			PasswordHash:  passwordHash,
			IsActive:      utils.ToPtr(true),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		switch request.AccountType {
		case models.AccountTypeUser:
			account.User = &models.User{
				Name:      *request.Name,
				Email:     request.Email,
				CreatedAt: now,
				UpdatedAt: now,
			}
		case models.AccountTypeCompany:
			company := &models.Company{
				CompanyName:          *request.CompanyName,
				BusinessRegistration: request.BusinessRegistration,
				CompanyEmail:         request.CompanyEmail,
				ContactPhone:         request.ContactPhone,
				Address:              request.Address,
				Industry:             request.Industry,
				CreatedAt:            now,
				UpdatedAt:            now,
			}
			if request.TotalSharesIssued != nil {
				company.TotalSharesIssued = *request.TotalSharesIssued
			}
			if request.SharesAvailable != nil {
				company.SharesAvailable = *request.SharesAvailable
			}
			account.Company = company
		}

		if err := rf.accountRepo.CreateAccount(ctx, account); err != nil {
			// A concurrent registration can slip past the uniqueness
			// pre-checks; the unique constraint is the arbiter.
			if repository.IsDuplicateKey(err) {
				return nil, ErrUsernameAlreadyExists
			}
			return nil, err
		}

		return &dto.RegisterResponse{
			Message: "Account registered successfully",
			Account: dto.ToAccountDTO(*account),
		}, nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Registration failed: %s", err.Error())
		_ = rf.LogRegistrationAttempt(ctx, account, models.AuditActionRegistrationFailed, errMsg, false, metadata)

		return nil, NewBusinessErrorf("REGISTRATION_FAILED", "Registration failed for username %s", err, request.Username)
	}

	msg := fmt.Sprintf("Account registered: %s (%s)", resp.Account.Username, resp.Account.AccountType)
	_ = rf.LogRegistrationAttempt(ctx, account, models.AuditActionRegistrationCompleted, msg, true, metadata)

	return resp, nil
}

// validateRegisterRequest enforces variant field rules the struct tags cannot express
func (rf *RegistrationFlowImpl) validateRegisterRequest(request *dto.RegisterRequest) error {
	if len(request.Password) < rf.passwordMinLength {
		return ErrPasswordTooShort
	}

	if !models.ValidAccountType(request.AccountType) {
		return ErrAccountTypeNotFound
	}

	switch request.AccountType {
	case models.AccountTypeUser:
		if request.Name == nil || *request.Name == "" {
			return ErrUserFieldsRequired
		}
	case models.AccountTypeCompany:
		if request.CompanyName == nil || *request.CompanyName == "" {
			return ErrCompanyFieldsRequired
		}
		if request.TotalSharesIssued != nil && request.SharesAvailable != nil &&
			*request.SharesAvailable > *request.TotalSharesIssued {
			return ErrSharesOutOfRange
		}
	}

	return nil
}

// checkUniqueness verifies the request does not collide with existing identities
func (rf *RegistrationFlowImpl) checkUniqueness(ctx context.Context, request *dto.RegisterRequest) error {
	exists, err := rf.accountRepo.ExistsByUsername(ctx, request.Username)
	if err != nil {
		return err
	}
	if exists {
		return ErrUsernameAlreadyExists
	}

	if request.AccountType == models.AccountTypeUser && request.Email != nil && *request.Email != "" {
		exists, err = rf.accountRepo.ExistsUserEmail(ctx, *request.Email)
		if err != nil {
			return err
		}
		if exists {
			return ErrEmailAlreadyExists
		}
	}

	if request.AccountType == models.AccountTypeCompany {
		if request.CompanyEmail != nil && *request.CompanyEmail != "" {
			exists, err = rf.accountRepo.ExistsCompanyEmail(ctx, *request.CompanyEmail)
			if err != nil {
				return err
			}
			if exists {
				return ErrCompanyEmailAlreadyExists
			}
		}
		if request.BusinessRegistration != nil && *request.BusinessRegistration != "" {
			exists, err = rf.accountRepo.ExistsBusinessRegistration(ctx, *request.BusinessRegistration)
			if err != nil {
				return err
			}
			if exists {
				return ErrBusinessRegistrationAlreadyExists
			}
		}
	}

	return nil
}

func (rf *RegistrationFlowImpl) WithRegistrationTransaction(ctx context.Context, fn func(context.Context) (*dto.RegisterResponse, error)) (*dto.RegisterResponse, error) {
	var result *dto.RegisterResponse
	var fnErr error

	err := repository.WithTransaction(ctx, rf.db, func(ctx context.Context) error {
		result, fnErr = fn(ctx)
		return fnErr
	})

	if err != nil {
		return nil, err
	}
	return result, fnErr
}

// LogRegistrationAttempt writes an audit record for the attempt. Failures are
// swallowed by callers; auditing never blocks registration itself.
func (rf *RegistrationFlowImpl) LogRegistrationAttempt(ctx context.Context, account *models.Account, action string, description string, success bool, metadata *ClientMetadata) error {
	var accountID *uint
	if account != nil && account.ID != 0 {
		accountID = &account.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:   accountID,
		Action:      action,
		Description: &description,
		Success:     utils.ToPtr(success),
		IPAddress:   &ipAddress,
		UserAgent:   &userAgent,
	}
	if !success {
		audit.ErrorMessage = &description
	}

	audit.RequestID = requestIDFromContext(ctx)

	return rf.auditRepo.Save(ctx, audit)
}
