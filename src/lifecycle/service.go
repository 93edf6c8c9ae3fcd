// Package lifecycle enforces the position state machine: OPEN is the
// initial status, CLOSED is terminal for a record, and a roll closes one
// record while opening its replacement inside a single transaction.
package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	logger "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"wheelhouse/src/database"
	"wheelhouse/src/model"
	"wheelhouse/src/repository"
)

// RollResult carries both legs of a completed roll.
type RollResult struct {
	Closed *model.Position
	Opened *model.Position
}

// Service mutates positions on behalf of an authenticated user. Every
// account reference is ownership-verified before any write.
type Service struct {
	db        *gorm.DB
	accounts  *repository.AccountRepository
	positions *repository.PositionRepository
}

// NewService creates a service backed by the main database.
func NewService() *Service {
	return newService(database.MainDB)
}

// NewServiceWithDB creates a service on a specific *gorm.DB, used by tests.
func NewServiceWithDB(db *gorm.DB) *Service {
	return newService(db)
}

func newService(db *gorm.DB) *Service {
	return &Service{
		db:        db,
		accounts:  repository.NewAccountRepository().WithDB(db),
		positions: repository.NewPositionRepository().WithDB(db),
	}
}

// verifyAccountOwnership resolves the account scoped to the acting user.
func (s *Service) verifyAccountOwnership(
	ctx context.Context,
	accountID uuid.UUID,
	userID uuid.UUID,
) error {
	account, err := s.accounts.FindByIDAndUser(ctx, accountID, userID)
	if err != nil {
		return err
	}
	if account == nil {
		return ErrAccountNotOwned
	}
	return nil
}

// Create opens a new position. Status is forced to OPEN and the ticker is
// normalized to uppercase regardless of input.
func (s *Service) Create(
	ctx context.Context,
	userID uuid.UUID,
	input model.PositionCreate,
) (*model.Position, error) {

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}
	if err := s.verifyAccountOwnership(ctx, input.AccountID, userID); err != nil {
		return nil, err
	}

	position := input.NewPosition(userID)
	if err := s.positions.Create(ctx, position); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":   "lifecycle",
		"op":          "Create",
		"position_id": position.ID,
		"ticker":      position.Ticker,
	}).Info("Position opened")

	return position, nil
}

// Update applies a partial update. Only fields present in the payload are
// touched. a new account reference is ownership-verified first. Update never
// transitions status.
func (s *Service) Update(
	ctx context.Context,
	userID uuid.UUID,
	positionID uuid.UUID,
	input model.PositionUpdate,
) (*model.Position, error) {

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	position, err := s.positions.FindByIDAndUser(ctx, positionID, userID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrPositionNotFound
	}

	if input.AccountID != nil {
		if err := s.verifyAccountOwnership(ctx, *input.AccountID, userID); err != nil {
			return nil, err
		}
	}

	input.Apply(position)
	if err := s.positions.Save(ctx, position); err != nil {
		return nil, err
	}

	return position, nil
}

// Close transitions an OPEN position to CLOSED with the given outcome.
// Close price and fees are only written when explicitly supplied.
func (s *Service) Close(
	ctx context.Context,
	userID uuid.UUID,
	positionID uuid.UUID,
	input model.PositionClose,
) (*model.Position, error) {

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	position, err := s.positions.FindByIDAndUser(ctx, positionID, userID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrPositionNotFound
	}
	if position.IsClosed() {
		return nil, ErrAlreadyClosed
	}

	applyClose(position, input.Outcome, input.CloseDate, input.ClosePricePerShare, input.CloseFees, nil)

	if err := s.positions.Save(ctx, position); err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":   "lifecycle",
		"op":          "Close",
		"position_id": position.ID,
		"outcome":     input.Outcome,
	}).Info("Position closed")

	return position, nil
}

// Roll closes the position with outcome ROLLED and opens a replacement in
// one transaction. Both legs share a freshly generated roll group ID, so
// either both mutations commit or neither does.
func (s *Service) Roll(
	ctx context.Context,
	userID uuid.UUID,
	positionID uuid.UUID,
	input model.PositionRoll,
) (*RollResult, error) {

	if err := input.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err)
	}

	position, err := s.positions.FindByIDAndUser(ctx, positionID, userID)
	if err != nil {
		return nil, err
	}
	if position == nil {
		return nil, ErrPositionNotFound
	}
	if position.IsClosed() {
		return nil, ErrAlreadyClosed
	}
	if err := s.verifyAccountOwnership(ctx, input.Open.AccountID, userID); err != nil {
		return nil, err
	}

	rollGroupID := uuid.New()
	opened := input.Open.NewPosition(userID)
	opened.RollGroupID = &rollGroupID

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txPositions := s.positions.WithDB(tx)

		applyClose(position, model.OutcomeRolled, input.Close.CloseDate,
			input.Close.ClosePricePerShare, input.Close.CloseFees, &rollGroupID)

		if err := txPositions.Save(ctx, position); err != nil {
			return err
		}
		return txPositions.Create(ctx, opened)
	})
	if err != nil {
		return nil, err
	}

	logger.WithFields(map[string]interface{}{
		"component":     "lifecycle",
		"op":            "Roll",
		"closed_id":     position.ID,
		"opened_id":     opened.ID,
		"roll_group_id": rollGroupID,
	}).Info("Position rolled")

	return &RollResult{Closed: position, Opened: opened}, nil
}

func applyClose(
	p *model.Position,
	outcome string,
	closeDate model.Date,
	closePricePerShare *decimal.Decimal,
	closeFees *decimal.Decimal,
	rollGroupID *uuid.UUID,
) {
	p.Status = model.PositionStatusClosed
	p.Outcome = &outcome
	p.CloseDate = &closeDate
	if closePricePerShare != nil {
		p.ClosePricePerShare = closePricePerShare
	}
	if closeFees != nil {
		p.CloseFees = *closeFees
	}
	if rollGroupID != nil {
		p.RollGroupID = rollGroupID
	}
}
