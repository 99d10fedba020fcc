// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sahmex/identity/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any, F any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
}

// AccountTypeRepository defines operations for account types
type AccountTypeRepository interface {
	Repository[models.AccountType, models.AccountTypeFilter]
	ByTypeName(ctx context.Context, typeName string) (*models.AccountType, error)
}

// AccountRepository defines operations for accounts and their variant rows.
// CreateAccount inserts the base row and the matching variant row atomically;
// TouchLogin is a single independent write the callers treat as best-effort.
type AccountRepository interface {
	Repository[models.Account, models.AccountFilter]
	ByUsername(ctx context.Context, username string) (*models.Account, error)
	ByUUID(ctx context.Context, accountUUID uuid.UUID) (*models.Account, error)
	ByFilter(ctx context.Context, filter models.AccountFilter, orderBy string, limit, offset int) ([]*models.Account, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsUserEmail(ctx context.Context, email string) (bool, error)
	ExistsCompanyEmail(ctx context.Context, email string) (bool, error)
	ExistsBusinessRegistration(ctx context.Context, registration string) (bool, error)
	CreateAccount(ctx context.Context, account *models.Account) error
	TouchLogin(ctx context.Context, accountID uint, loginAt time.Time) error
}

// AuditLogRepository defines operations for audit logs
type AuditLogRepository interface {
	Repository[models.AuditLog, models.AuditLogFilter]
	ListByAccount(ctx context.Context, accountID uint, limit, offset int) ([]*models.AuditLog, error)
	ListByAction(ctx context.Context, action string, limit, offset int) ([]*models.AuditLog, error)
	ListFailedActions(ctx context.Context, limit, offset int) ([]*models.AuditLog, error)
}
