package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wheelhouse/src/database"
	"wheelhouse/src/model"
)

// AccountRepository handles read/write operations for brokerage accounts.
// Every lookup is scoped to the owning user so a foreign account reads the
// same as an absent one.
type AccountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a repository backed by the main database.
func NewAccountRepository() *AccountRepository {
	return &AccountRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *AccountRepository) WithDB(db *gorm.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create inserts a new account. The given account is updated with the
// generated ID and timestamps.
func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	logger.WithFields(map[string]interface{}{
		"repo":    "AccountRepository",
		"op":      "Create",
		"user_id": account.UserID,
		"broker":  account.Broker,
	}).Debug("Creating new account")

	if err := r.db.WithContext(ctx).Create(account).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "AccountRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create account")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":       "AccountRepository",
		"op":         "Create",
		"account_id": account.ID,
	}).Info("Account created successfully")

	return nil
}

// FindByIDAndUser fetches an account by ID scoped to its owner.
// Returns (nil, nil) if no such account exists for that user.
func (r *AccountRepository) FindByIDAndUser(
	ctx context.Context,
	id uuid.UUID,
	userID uuid.UUID,
) (*model.Account, error) {

	var account model.Account

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&account).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":       "AccountRepository",
				"op":         "FindByIDAndUser",
				"account_id": id,
				"user_id":    userID,
			}).Info("Account not found for user")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":       "AccountRepository",
			"op":         "FindByIDAndUser",
			"account_id": id,
			"user_id":    userID,
		}).WithError(err).Error("Failed to fetch account")
		return nil, err
	}

	return &account, nil
}

// ListByUser returns every account owned by the user, oldest first.
func (r *AccountRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
) ([]model.Account, error) {

	var accounts []model.Account

	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&accounts).Error

	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "AccountRepository",
			"op":      "ListByUser",
			"user_id": userID,
		}).WithError(err).Error("Failed to list accounts")
		return nil, err
	}

	return accounts, nil
}

// Save persists every field of an existing account.
func (r *AccountRepository) Save(ctx context.Context, account *model.Account) error {
	if err := r.db.WithContext(ctx).Save(account).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":       "AccountRepository",
			"op":         "Save",
			"account_id": account.ID,
		}).WithError(err).Error("Failed to save account")
		return err
	}
	return nil
}
