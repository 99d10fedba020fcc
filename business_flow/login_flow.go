// Package businessflow contains the core business logic and use cases for authentication workflows
package businessflow

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sahmex/identity/app/dto"
	"github.com/sahmex/identity/app/services"
	"github.com/sahmex/identity/models"
	"github.com/sahmex/identity/repository"
	"github.com/sahmex/identity/utils"
)

// LoginFlow handles account authentication and token issuance
type LoginFlow interface {
	Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error)
	GetAccount(ctx context.Context, accountID uint) (*dto.AccountDTO, error)
}

// LoginFlowImpl implements the login business flow
type LoginFlowImpl struct {
	accountRepo     repository.AccountRepository
	auditRepo       repository.AuditLogRepository
	passwordService services.PasswordService
	tokenService    services.TokenService
	db              *gorm.DB

	// When set, a disabled account answers with the same error as bad
	// credentials so callers cannot probe which accounts exist.
	uniformDisabledAccountError bool
}

// NewLoginFlow creates a new login flow instance
func NewLoginFlow(
	accountRepo repository.AccountRepository,
	auditRepo repository.AuditLogRepository,
	passwordService services.PasswordService,
	tokenService services.TokenService,
	db *gorm.DB,
	uniformDisabledAccountError bool,
) LoginFlow {
	return &LoginFlowImpl{
		accountRepo:                 accountRepo,
		auditRepo:                   auditRepo,
		passwordService:             passwordService,
		tokenService:                tokenService,
		db:                          db,
		uniformDisabledAccountError: uniformDisabledAccountError,
	}
}

// Login authenticates an account by username and password and issues a signed
// access token. Unknown usernames and wrong passwords are indistinguishable to
// the caller.
func (lf *LoginFlowImpl) Login(ctx context.Context, request *dto.LoginRequest, metadata *ClientMetadata) (*dto.LoginResponse, error) {
	var account *models.Account
	var token string
	var expiresAt time.Time

	err := lf.WithLoginTransaction(ctx, func(ctx context.Context) error {
		var err error
		account, err = lf.accountRepo.ByUsername(ctx, request.Username)
		if err != nil {
			return err
		}
		if account == nil {
			return ErrInvalidCredentials
		}

		if !utils.IsTrue(account.IsActive) {
			if lf.uniformDisabledAccountError {
				return ErrInvalidCredentials
			}
			return ErrAccountInactive
		}

		ok, err := lf.passwordService.Verify(request.Password, account.PasswordHash)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidCredentials
		}

		token, expiresAt, err = lf.tokenService.IssueToken(account.ID, account.UUID.String(), account.AccountType.TypeName)
		if err != nil {
			return fmt.Errorf("failed to issue token: %w", err)
		}

		return nil
	})

	if err != nil {
		errMsg := fmt.Sprintf("Login failed: %s", err.Error())
		_ = lf.LogLoginAttempt(ctx, account, models.AuditActionLoginFailed, errMsg, false, &errMsg, metadata)

		return nil, NewBusinessError("LOGIN_FAILED", "Login failed", err)
	}

	// Best effort, on its own connection after the transaction has committed:
	// a failed timestamp update never blocks token issuance.
	now := utils.UTCNow()
	if touchErr := lf.accountRepo.TouchLogin(ctx, account.ID, now); touchErr == nil {
		account.LastLoginAt = &now
	}

	resp := &dto.LoginResponse{
		Token:     token,
		TokenType: utils.TokenTypeBearer,
		ExpiresIn: int(expiresAt.Sub(now).Seconds()),
		ExpiresAt: expiresAt,
		Account:   dto.ToAccountDTO(*account),
	}

	msg := fmt.Sprintf("Account logged in successfully: %d", resp.Account.ID)
	_ = lf.LogLoginAttempt(ctx, account, models.AuditActionLoginSuccess, msg, true, nil, metadata)

	return resp, nil
}

// GetAccount returns the public identity of an already-authenticated account.
func (lf *LoginFlowImpl) GetAccount(ctx context.Context, accountID uint) (*dto.AccountDTO, error) {
	account, err := lf.accountRepo.ByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, ErrAccountNotFound
	}
	if !utils.IsTrue(account.IsActive) {
		return nil, ErrAccountInactive
	}

	out := dto.ToAccountDTO(*account)
	return &out, nil
}

func (lf *LoginFlowImpl) WithLoginTransaction(ctx context.Context, fn func(context.Context) error) error {
	return repository.WithTransaction(ctx, lf.db, fn)
}

func (lf *LoginFlowImpl) LogLoginAttempt(ctx context.Context, account *models.Account, action string, description string, success bool, errMsg *string, metadata *ClientMetadata) error {
	var accountID *uint
	if account != nil {
		accountID = &account.ID
	}

	ipAddress := "127.0.0.1"
	userAgent := ""
	if metadata != nil {
		ipAddress = metadata.IPAddress
		userAgent = metadata.UserAgent
	}

	audit := &models.AuditLog{
		AccountID:    accountID,
		Action:       action,
		Description:  &description,
		Success:      utils.ToPtr(success),
		IPAddress:    &ipAddress,
		UserAgent:    &userAgent,
		ErrorMessage: errMsg,
	}

	audit.RequestID = requestIDFromContext(ctx)

	return lf.auditRepo.Save(ctx, audit)
}
