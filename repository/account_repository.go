// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sahmex/identity/models"
	"gorm.io/gorm"
)

// AccountRepositoryImpl implements AccountRepository interface
type AccountRepositoryImpl struct {
	*BaseRepository[models.Account, models.AccountFilter]
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &AccountRepositoryImpl{
		BaseRepository: NewBaseRepository[models.Account, models.AccountFilter](db),
	}
}

// ByID retrieves an account with its type and variant row
func (r *AccountRepositoryImpl) ByID(ctx context.Context, id uint) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Preload("AccountType").Preload("User").Preload("Company").
		Last(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by ID %d: %w", id, err)
	}

	return &account, nil
}

// ByUsername retrieves an account by username with its type and variant row.
// Returns nil (not an error) when absent.
func (r *AccountRepositoryImpl) ByUsername(ctx context.Context, username string) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Preload("AccountType").Preload("User").Preload("Company").
		Where("username = ?", username).
		Last(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by username: %w", err)
	}

	return &account, nil
}

// ByUUID retrieves an account by its public UUID
func (r *AccountRepositoryImpl) ByUUID(ctx context.Context, accountUUID uuid.UUID) (*models.Account, error) {
	db := r.getDB(ctx)

	var account models.Account
	err := db.Preload("AccountType").Preload("User").Preload("Company").
		Where("uuid = ?", accountUUID).
		Last(&account).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find account by UUID: %w", err)
	}

	return &account, nil
}

// ByFilter retrieves accounts matching the filter criteria
func (r *AccountRepositoryImpl) ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error) {
	db := r.getDB(ctx).Model(&models.Account{})

	if filter.ID != nil {
		db = db.Where("accounts.id = ?", *filter.ID)
	}
	if filter.UUID != nil {
		db = db.Where("accounts.uuid = ?", *filter.UUID)
	}
	if filter.Username != nil {
		db = db.Where("accounts.username = ?", *filter.Username)
	}
	if filter.AccountTypeID != nil {
		db = db.Where("accounts.account_type_id = ?", *filter.AccountTypeID)
	}
	if filter.AccountTypeName != nil {
		db = db.Joins("JOIN account_types ON accounts.account_type_id = account_types.id").
			Where("account_types.type_name = ?", *filter.AccountTypeName)
	}
	if filter.IsActive != nil {
		db = db.Where("accounts.is_active = ?", *filter.IsActive)
	}
	if filter.CreatedAfter != nil {
		db = db.Where("accounts.created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		db = db.Where("accounts.created_at <= ?", *filter.CreatedBefore)
	}
	if filter.LastLoginAfter != nil {
		db = db.Where("accounts.last_login_at >= ?", *filter.LastLoginAfter)
	}
	if filter.LastLoginBefore != nil {
		db = db.Where("accounts.last_login_at <= ?", *filter.LastLoginBefore)
	}

	if orderBy == "" {
		orderBy = "accounts.id DESC"
	}
	db = db.Order(orderBy)

	if limit > 0 {
		db = db.Limit(limit)
	}
	if offset > 0 {
		db = db.Offset(offset)
	}

	var accounts []*models.Account
	err := db.Preload("AccountType").Preload("User").Preload("Company").
		Find(&accounts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by filter: %w", err)
	}

	return accounts, nil
}

// ExistsByUsername checks whether any account holds the username
func (r *AccountRepositoryImpl) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Account{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check username existence: %w", err)
	}

	return count > 0, nil
}

// ExistsUserEmail checks whether any user variant holds the email
func (r *AccountRepositoryImpl) ExistsUserEmail(ctx context.Context, email string) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check user email existence: %w", err)
	}

	return count > 0, nil
}

// ExistsCompanyEmail checks whether any company variant holds the email
func (r *AccountRepositoryImpl) ExistsCompanyEmail(ctx context.Context, email string) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Company{}).Where("company_email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check company email existence: %w", err)
	}

	return count > 0, nil
}

// ExistsBusinessRegistration checks whether any company variant holds the registration number
func (r *AccountRepositoryImpl) ExistsBusinessRegistration(ctx context.Context, registration string) (bool, error) {
	db := r.getDB(ctx)

	var count int64
	err := db.Model(&models.Company{}).Where("business_registration = ?", registration).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check business registration existence: %w", err)
	}

	return count > 0, nil
}

// CreateAccount inserts the base account row and its variant row in one
// transaction. On a unique constraint violation no partial state remains.
func (r *AccountRepositoryImpl) CreateAccount(ctx context.Context, account *models.Account) error {
	db, shouldCommit, err := r.getDBForWrite(ctx)
	if err != nil {
		return err
	}

	if shouldCommit {
		defer func() {
			if err != nil {
				db.Rollback()
			} else {
				db.Commit()
			}
		}()
	}

	// FullSaveAssociations is unnecessary: gorm inserts the set variant
	// relation together with the base row inside the same transaction.
	err = db.Create(account).Error
	if err != nil {
		if IsDuplicateKey(err) {
			return fmt.Errorf("account creation hit unique constraint: %w", err)
		}
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// TouchLogin records a successful login timestamp. A single independent
// write; callers treat failures as non-fatal.
func (r *AccountRepositoryImpl) TouchLogin(ctx context.Context, accountID uint, loginAt time.Time) error {
	db := r.getDB(ctx)

	err := db.Model(&models.Account{}).
		Where("id = ?", accountID).
		Updates(map[string]any{
			"last_login_at": loginAt,
			"updated_at":    loginAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to touch login for account %d: %w", accountID, err)
	}

	return nil
}
