// Package tests contains integration tests for the login flow
package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahmex/identity/app/dto"
	"github.com/sahmex/identity/app/services"
	businessflow "github.com/sahmex/identity/business_flow"
	"github.com/sahmex/identity/models"
	"github.com/sahmex/identity/repository"
	testingutil "github.com/sahmex/identity/testing"
	"github.com/sahmex/identity/utils"
)

func newTestTokenService(t *testing.T) services.TokenService {
	t.Helper()
	tokenService, err := services.NewTokenService(
		1*time.Hour, "test-issuer", "test-audience",
		false, "", "", "test-secret-key-with-enough-entropy")
	require.NoError(t, err)
	return tokenService
}

func newTestPasswordService(t *testing.T) services.PasswordService {
	t.Helper()
	passwordService, err := services.NewPasswordService(4)
	require.NoError(t, err)
	return passwordService
}

func TestLoginFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		fixtures := testingutil.NewTestFixtures(testDB)

		accountRepo := repository.NewAccountRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		tokenService := newTestTokenService(t)
		passwordService := newTestPasswordService(t)

		loginFlow := businessflow.NewLoginFlow(
			accountRepo,
			auditRepo,
			passwordService,
			tokenService,
			testDB.DB,
			true,
		)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("SuccessfulUserLogin", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: testingutil.DefaultTestPassword,
			}

			result, err := loginFlow.Login(context.Background(), loginReq, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.NotEmpty(t, result.Token)
			assert.Equal(t, "Bearer", result.TokenType)
			assert.InDelta(t, 3600, result.ExpiresIn, 5)
			assert.True(t, result.ExpiresAt.After(time.Now()))

			assert.Equal(t, account.ID, result.Account.ID)
			assert.Equal(t, account.Username, result.Account.Username)
			assert.Equal(t, models.AccountTypeUser, result.Account.AccountType)
			assert.True(t, utils.IsTrue(result.Account.IsActive))
			require.NotNil(t, result.Account.Name)
			assert.Equal(t, "Jane Doe", *result.Account.Name)

			// Issued token verifies and carries the right identity
			claims, err := tokenService.ValidateToken(result.Token)
			require.NoError(t, err)
			assert.Equal(t, account.ID, claims.AccountID)
			assert.Equal(t, account.UUID.String(), claims.AccountUUID)
			assert.Equal(t, models.AccountTypeUser, claims.AccountType)
		})

		t.Run("SuccessfulCompanyLogin", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeCompany)
			require.NoError(t, err)

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: testingutil.DefaultTestPassword,
			}

			result, err := loginFlow.Login(context.Background(), loginReq, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, models.AccountTypeCompany, result.Account.AccountType)
			require.NotNil(t, result.Account.CompanyName)
			assert.Equal(t, "Test Company Ltd", *result.Account.CompanyName)

			claims, err := tokenService.ValidateToken(result.Token)
			require.NoError(t, err)
			assert.Equal(t, models.AccountTypeCompany, claims.AccountType)
		})

		t.Run("LoginUpdatesLastLogin", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)
			require.Nil(t, account.LastLoginAt)

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: testingutil.DefaultTestPassword,
			}

			_, err = loginFlow.Login(context.Background(), loginReq, metadata)
			require.NoError(t, err)

			reloaded, err := accountRepo.ByID(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			require.NotNil(t, reloaded.LastLoginAt)
			assert.WithinDuration(t, time.Now().UTC(), *reloaded.LastLoginAt, time.Minute)
		})

		t.Run("UnknownUsername", func(t *testing.T) {
			loginReq := &dto.LoginRequest{
				Username: "nobody_here",
				Password: testingutil.DefaultTestPassword,
			}

			result, err := loginFlow.Login(context.Background(), loginReq, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsInvalidCredentials(err))
		})

		t.Run("WrongPassword", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: "not-the-password",
			}

			result, err := loginFlow.Login(context.Background(), loginReq, metadata)
			require.Error(t, err)
			assert.Nil(t, result)

			// Wrong password is indistinguishable from an unknown username
			assert.True(t, businessflow.IsInvalidCredentials(err))
			assert.False(t, businessflow.IsAccountNotFound(err))
		})

		t.Run("DisabledAccountUniformError", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)
			require.NoError(t, fixtures.DeactivateAccount(account.ID))

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: testingutil.DefaultTestPassword,
			}

			result, err := loginFlow.Login(context.Background(), loginReq, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsInvalidCredentials(err))
			assert.False(t, businessflow.IsAccountInactive(err))
		})

		t.Run("DisabledAccountDistinctError", func(t *testing.T) {
			distinctFlow := businessflow.NewLoginFlow(
				accountRepo,
				auditRepo,
				passwordService,
				tokenService,
				testDB.DB,
				false,
			)

			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)
			require.NoError(t, fixtures.DeactivateAccount(account.ID))

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: testingutil.DefaultTestPassword,
			}

			result, err := distinctFlow.Login(context.Background(), loginReq, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountInactive(err))
		})

		t.Run("DisabledAccountCheckedBeforePassword", func(t *testing.T) {
			distinctFlow := businessflow.NewLoginFlow(
				accountRepo,
				auditRepo,
				passwordService,
				tokenService,
				testDB.DB,
				false,
			)

			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)
			require.NoError(t, fixtures.DeactivateAccount(account.ID))

			// Even with a wrong password the inactive state is reported first.
			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: "not-the-password",
			}

			result, err := distinctFlow.Login(context.Background(), loginReq, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsAccountInactive(err))
			assert.False(t, businessflow.IsInvalidCredentials(err))
		})

		t.Run("TouchLoginFailureDoesNotBlockLogin", func(t *testing.T) {
			touchyFlow := businessflow.NewLoginFlow(
				&failingTouchAccountRepository{AccountRepository: accountRepo},
				auditRepo,
				passwordService,
				tokenService,
				testDB.DB,
				true,
			)

			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: testingutil.DefaultTestPassword,
			}

			result, err := touchyFlow.Login(context.Background(), loginReq, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			claims, err := tokenService.ValidateToken(result.Token)
			require.NoError(t, err)
			assert.Equal(t, account.ID, claims.AccountID)

			// The timestamp write was lost but nothing else was rolled back.
			reloaded, err := accountRepo.ByID(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, reloaded)
			assert.Nil(t, reloaded.LastLoginAt)
		})

		t.Run("FailedLoginWritesAuditTrail", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)

			loginReq := &dto.LoginRequest{
				Username: account.Username,
				Password: "not-the-password",
			}

			_, err = loginFlow.Login(context.Background(), loginReq, metadata)
			require.Error(t, err)

			logs, err := auditRepo.ListByAccount(context.Background(), account.ID, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
			assert.Equal(t, models.AuditActionLoginFailed, logs[0].Action)
			assert.True(t, logs[0].IsFailed())
			assert.True(t, logs[0].IsSecurityEvent())
		})

		t.Run("GetAccount", func(t *testing.T) {
			account, err := fixtures.CreateTestAccount(models.AccountTypeUser)
			require.NoError(t, err)

			dtoAccount, err := loginFlow.GetAccount(context.Background(), account.ID)
			require.NoError(t, err)
			require.NotNil(t, dtoAccount)
			assert.Equal(t, account.Username, dtoAccount.Username)
			assert.Equal(t, account.UUID.String(), dtoAccount.UUID)
		})

		t.Run("GetAccountUnknownID", func(t *testing.T) {
			dtoAccount, err := loginFlow.GetAccount(context.Background(), 999999)
			require.Error(t, err)
			assert.Nil(t, dtoAccount)
			assert.True(t, businessflow.IsAccountNotFound(err))
		})

		return nil
	})
	require.NoError(t, err)
}

// failingTouchAccountRepository simulates a last_login_at update that the
// database rejects.
type failingTouchAccountRepository struct {
	repository.AccountRepository
}

func (r *failingTouchAccountRepository) TouchLogin(ctx context.Context, accountID uint, loginAt time.Time) error {
	return errors.New("last_login_at update rejected")
}
