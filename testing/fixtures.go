// Package testing provides test utilities and database setup for testing the identity service
package testing

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/sahmex/identity/models"
	"github.com/sahmex/identity/utils"
)

// DefaultTestPassword is the plaintext behind every fixture account's hash
const DefaultTestPassword = "TestPass123!"

// TestFixtures provides helper methods for creating test data
type TestFixtures struct {
	DB *TestDB
}

// NewTestFixtures creates a new test fixtures instance
func NewTestFixtures(db *TestDB) *TestFixtures {
	return &TestFixtures{DB: db}
}

// CreateTestAccount creates a test account of the given variant with a random
// username and DefaultTestPassword as its password.
func (tf *TestFixtures) CreateTestAccount(accountTypeName string) (*models.Account, error) {
	var accountType models.AccountType
	err := tf.DB.DB.Where("type_name = ?", accountTypeName).Last(&accountType).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find account type %s: %w", accountTypeName, err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(DefaultTestPassword), bcrypt.MinCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	randomDigits := fmt.Sprintf("%09d", rand.Intn(900000000)+100000000)

	account := &models.Account{
		UUID:          uuid.New(),
		Username:      fmt.Sprintf("acct%s", randomDigits),
		AccountTypeID: accountType.ID,
		PasswordHash:  string(hashedPassword),
		IsActive:      utils.ToPtr(true),
	}

	switch accountTypeName {
	case models.AccountTypeUser:
		email := fmt.Sprintf("user.%s@example.com", randomDigits)
		account.User = &models.User{
			Name:  "Jane Doe",
			Email: &email,
		}
	case models.AccountTypeCompany:
		registration := fmt.Sprintf("REG-%s", randomDigits)
		companyEmail := fmt.Sprintf("contact.%s@example.com", randomDigits)
		phone := "02112345678"
		address := "123 Exchange Plaza"
		industry := "technology"
		account.Company = &models.Company{
			CompanyName:          "Test Company Ltd",
			BusinessRegistration: &registration,
			CompanyEmail:         &companyEmail,
			ContactPhone:         &phone,
			Address:              &address,
			Industry:             &industry,
			TotalSharesIssued:    1000000,
			SharesAvailable:      250000,
		}
	default:
		return nil, fmt.Errorf("unknown account type %s", accountTypeName)
	}

	err = tf.DB.DB.Create(account).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create test account: %w", err)
	}

	account.AccountType = accountType
	return account, nil
}

// DeactivateAccount flips the account's is_active flag off
func (tf *TestFixtures) DeactivateAccount(accountID uint) error {
	return tf.DB.DB.Model(&models.Account{}).
		Where("id = ?", accountID).
		Update("is_active", false).Error
}
