// Package tests contains integration tests for the registration flow
package tests

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahmex/identity/app/dto"
	businessflow "github.com/sahmex/identity/business_flow"
	"github.com/sahmex/identity/models"
	"github.com/sahmex/identity/repository"
	testingutil "github.com/sahmex/identity/testing"
	"github.com/sahmex/identity/utils"
)

func TestRegistrationFlow(t *testing.T) {
	err := testingutil.TestWithDB(func(testDB *testingutil.TestDB) error {
		accountRepo := repository.NewAccountRepository(testDB.DB)
		accountTypeRepo := repository.NewAccountTypeRepository(testDB.DB)
		auditRepo := repository.NewAuditLogRepository(testDB.DB)

		passwordService := newTestPasswordService(t)

		registrationFlow := businessflow.NewRegistrationFlow(
			accountRepo,
			accountTypeRepo,
			auditRepo,
			passwordService,
			testDB.DB,
			8,
		)

		metadata := businessflow.NewClientMetadata("127.0.0.1", "Test User Agent")

		t.Run("RegisterUser", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "alice",
				Password:    "Secret123!",
				Name:        utils.ToPtr("Alice Smith"),
				Email:       utils.ToPtr("alice@example.com"),
			}

			result, err := registrationFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.NotZero(t, result.Account.ID)
			assert.NotEmpty(t, result.Account.UUID)
			assert.Equal(t, "alice", result.Account.Username)
			assert.Equal(t, models.AccountTypeUser, result.Account.AccountType)
			assert.True(t, utils.IsTrue(result.Account.IsActive))
			require.NotNil(t, result.Account.Name)
			assert.Equal(t, "Alice Smith", *result.Account.Name)
			require.NotNil(t, result.Account.AccountBalance)
			assert.Zero(t, *result.Account.AccountBalance)

			// Stored hash verifies against the plaintext and is not the plaintext
			stored, err := accountRepo.ByUsername(context.Background(), "alice")
			require.NoError(t, err)
			require.NotNil(t, stored)
			assert.NotEqual(t, "Secret123!", stored.PasswordHash)

			ok, err := passwordService.Verify("Secret123!", stored.PasswordHash)
			require.NoError(t, err)
			assert.True(t, ok)

			require.NotNil(t, stored.User)
			assert.Equal(t, "Alice Smith", stored.User.Name)

			// The public UUID resolves to the same account
			byUUID, err := accountRepo.ByUUID(context.Background(), uuid.MustParse(result.Account.UUID))
			require.NoError(t, err)
			require.NotNil(t, byUUID)
			assert.Equal(t, stored.ID, byUUID.ID)
		})

		t.Run("RegisterCompany", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType:          models.AccountTypeCompany,
				Username:             "acme-corp",
				Password:             "Secret123!",
				CompanyName:          utils.ToPtr("Acme Corporation"),
				BusinessRegistration: utils.ToPtr("REG-000001"),
				CompanyEmail:         utils.ToPtr("ir@acme.example.com"),
				ContactPhone:         utils.ToPtr("02112345678"),
				Industry:             utils.ToPtr("manufacturing"),
				TotalSharesIssued:    utils.ToPtr(int64(1000000)),
				SharesAvailable:      utils.ToPtr(int64(400000)),
			}

			result, err := registrationFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Equal(t, models.AccountTypeCompany, result.Account.AccountType)
			require.NotNil(t, result.Account.CompanyName)
			assert.Equal(t, "Acme Corporation", *result.Account.CompanyName)
			require.NotNil(t, result.Account.TotalSharesIssued)
			assert.Equal(t, int64(1000000), *result.Account.TotalSharesIssued)

			stored, err := accountRepo.ByUsername(context.Background(), "acme-corp")
			require.NoError(t, err)
			require.NotNil(t, stored)
			require.NotNil(t, stored.Company)
			assert.Equal(t, int64(400000), stored.Company.SharesAvailable)
			assert.Nil(t, stored.User)
		})

		t.Run("DuplicateUsername", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "bob",
				Password:    "Secret123!",
				Name:        utils.ToPtr("Bob One"),
			}
			_, err := registrationFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)

			dup := &dto.RegisterRequest{
				AccountType: models.AccountTypeCompany,
				Username:    "bob",
				Password:    "Secret123!",
				CompanyName: utils.ToPtr("Bob Industries"),
			}
			result, err := registrationFlow.Register(context.Background(), dup, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsUsernameAlreadyExists(err))

			// The losing attempt left no partial state
			accounts, err := accountRepo.ByFilter(context.Background(),
				models.AccountFilter{Username: utils.ToPtr("bob")}, "id ASC", 10, 0)
			require.NoError(t, err)
			assert.Len(t, accounts, 1)
			assert.Equal(t, models.AccountTypeUser, accounts[0].AccountType.TypeName)
		})

		t.Run("DuplicateUserEmail", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "carol",
				Password:    "Secret123!",
				Name:        utils.ToPtr("Carol"),
				Email:       utils.ToPtr("carol@example.com"),
			}
			_, err := registrationFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)

			dup := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "carol2",
				Password:    "Secret123!",
				Name:        utils.ToPtr("Carol Two"),
				Email:       utils.ToPtr("carol@example.com"),
			}
			result, err := registrationFlow.Register(context.Background(), dup, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsEmailAlreadyExists(err))
		})

		t.Run("DuplicateBusinessRegistration", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType:          models.AccountTypeCompany,
				Username:             "first-co",
				Password:             "Secret123!",
				CompanyName:          utils.ToPtr("First Co"),
				BusinessRegistration: utils.ToPtr("REG-SAME"),
			}
			_, err := registrationFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)

			dup := &dto.RegisterRequest{
				AccountType:          models.AccountTypeCompany,
				Username:             "second-co",
				Password:             "Secret123!",
				CompanyName:          utils.ToPtr("Second Co"),
				BusinessRegistration: utils.ToPtr("REG-SAME"),
			}
			result, err := registrationFlow.Register(context.Background(), dup, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsBusinessRegistrationAlreadyExists(err))
		})

		t.Run("MissingVariantFields", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "dave",
				Password:    "Secret123!",
			}
			result, err := registrationFlow.Register(context.Background(), req, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsUserFieldsRequired(err))

			req = &dto.RegisterRequest{
				AccountType: models.AccountTypeCompany,
				Username:    "dave-co",
				Password:    "Secret123!",
			}
			result, err = registrationFlow.Register(context.Background(), req, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsCompanyFieldsRequired(err))
		})

		t.Run("PasswordBelowMinLength", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "frank",
				Password:    "short",
				Name:        utils.ToPtr("Frank"),
			}
			result, err := registrationFlow.Register(context.Background(), req, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsPasswordTooShort(err))
		})

		t.Run("SharesAvailableAboveIssued", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType:       models.AccountTypeCompany,
				Username:          "greedy-co",
				Password:          "Secret123!",
				CompanyName:       utils.ToPtr("Greedy Co"),
				TotalSharesIssued: utils.ToPtr(int64(100)),
				SharesAvailable:   utils.ToPtr(int64(200)),
			}
			result, err := registrationFlow.Register(context.Background(), req, metadata)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, businessflow.IsSharesOutOfRange(err))
		})

		t.Run("RegistrationWritesAuditTrail", func(t *testing.T) {
			req := &dto.RegisterRequest{
				AccountType: models.AccountTypeUser,
				Username:    "erin",
				Password:    "Secret123!",
				Name:        utils.ToPtr("Erin"),
			}
			result, err := registrationFlow.Register(context.Background(), req, metadata)
			require.NoError(t, err)

			logs, err := auditRepo.ListByAccount(context.Background(), result.Account.ID, 10, 0)
			require.NoError(t, err)
			require.NotEmpty(t, logs)
			assert.Equal(t, models.AuditActionRegistrationCompleted, logs[0].Action)
			assert.False(t, logs[0].IsFailed())
		})

		return nil
	})
	require.NoError(t, err)
}
