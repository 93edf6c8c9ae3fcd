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

// PositionSearchOptions filters and orders a user's position listing.
// Nil pointer fields are skipped.
type PositionSearchOptions struct {
	UserID          uuid.UUID
	Status          *string
	Ticker          *string
	Type            *string
	AccountID       *uuid.UUID
	ExpirationStart *model.Date
	ExpirationEnd   *model.Date
	OpenedFrom      *model.Date
	OpenedTo        *model.Date
	SortBy          string
	SortOrder       string
}

// sortableColumns whitelists the columns a client may sort by. Anything
// else falls back to open_date.
var sortableColumns = map[string]bool{
	"open_date":         true,
	"expiration_date":   true,
	"ticker":            true,
	"strike_price":      true,
	"contracts":         true,
	"premium_per_share": true,
	"status":            true,
	"type":              true,
	"created_at":        true,
	"updated_at":        true,
}

// PositionRepository handles read/write operations for option positions.
type PositionRepository struct {
	db *gorm.DB
}

// NewPositionRepository creates a repository backed by the main database.
func NewPositionRepository() *PositionRepository {
	return &PositionRepository{db: database.MainDB}
}

// WithDB allows overriding the underlying *gorm.DB instance.
// Useful for tests or when using a specific session/transaction.
func (r *PositionRepository) WithDB(db *gorm.DB) *PositionRepository {
	return &PositionRepository{db: db}
}

// Create inserts a new position. The given position is updated with the
// generated ID and timestamps.
func (r *PositionRepository) Create(ctx context.Context, position *model.Position) error {
	logger.WithFields(map[string]interface{}{
		"repo":    "PositionRepository",
		"op":      "Create",
		"user_id": position.UserID,
		"ticker":  position.Ticker,
		"type":    position.Type,
	}).Debug("Creating new position")

	if err := r.db.WithContext(ctx).Create(position).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo": "PositionRepository",
			"op":   "Create",
		}).WithError(err).Error("Failed to create position")
		return err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Create",
		"position_id": position.ID,
	}).Info("Position created successfully")

	return nil
}

// FindByIDAndUser fetches a position by ID scoped to its owner.
// Returns (nil, nil) if no such position exists for that user.
func (r *PositionRepository) FindByIDAndUser(
	ctx context.Context,
	id uuid.UUID,
	userID uuid.UUID,
) (*model.Position, error) {

	var position model.Position

	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&position).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithFields(map[string]interface{}{
				"repo":        "PositionRepository",
				"op":          "FindByIDAndUser",
				"position_id": id,
				"user_id":     userID,
			}).Info("Position not found for user")
			return nil, nil
		}

		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "FindByIDAndUser",
			"position_id": id,
			"user_id":     userID,
		}).WithError(err).Error("Failed to fetch position")
		return nil, err
	}

	return &position, nil
}

// Search lists a user's positions with the given filters and ordering.
func (r *PositionRepository) Search(
	ctx context.Context,
	options PositionSearchOptions,
) ([]model.Position, error) {

	query := r.db.WithContext(ctx).
		Model(&model.Position{}).
		Where("user_id = ?", options.UserID)

	if options.Status != nil {
		query = query.Where("status = ?", *options.Status)
	}
	if options.Ticker != nil {
		query = query.Where("ticker = ?", *options.Ticker)
	}
	if options.Type != nil {
		query = query.Where("type = ?", *options.Type)
	}
	if options.AccountID != nil {
		query = query.Where("account_id = ?", *options.AccountID)
	}
	if options.ExpirationStart != nil {
		query = query.Where("expiration_date >= ?", *options.ExpirationStart)
	}
	if options.ExpirationEnd != nil {
		query = query.Where("expiration_date <= ?", *options.ExpirationEnd)
	}
	if options.OpenedFrom != nil {
		query = query.Where("open_date >= ?", *options.OpenedFrom)
	}
	if options.OpenedTo != nil {
		query = query.Where("open_date <= ?", *options.OpenedTo)
	}

	sortBy := options.SortBy
	if !sortableColumns[sortBy] {
		sortBy = "open_date"
	}
	direction := "DESC"
	if options.SortOrder == "asc" {
		direction = "ASC"
	}

	var positions []model.Position
	err := query.Order(sortBy + " " + direction).Find(&positions).Error
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":    "PositionRepository",
			"op":      "Search",
			"user_id": options.UserID,
		}).WithError(err).Error("Failed to search positions")
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"repo":        "PositionRepository",
		"op":          "Search",
		"user_id":     options.UserID,
		"rows_return": len(positions),
	}).Debug("Positions fetched")

	return positions, nil
}

// Save persists every field of an existing position.
func (r *PositionRepository) Save(ctx context.Context, position *model.Position) error {
	if err := r.db.WithContext(ctx).Save(position).Error; err != nil {
		logger.WithFields(map[string]interface{}{
			"repo":        "PositionRepository",
			"op":          "Save",
			"position_id": position.ID,
		}).WithError(err).Error("Failed to save position")
		return err
	}
	return nil
}
