package lifecycle

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wheelhouse/src/model"
	"wheelhouse/src/repository"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// a single connection keeps every query on the same in-memory database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&model.Account{}, &model.Position{}))
	return db
}

func seedAccount(t *testing.T, db *gorm.DB, userID uuid.UUID) *model.Account {
	t.Helper()

	account := &model.Account{
		UserID: userID,
		Name:   "Taxable",
		Broker: model.BrokerRobinhood,
	}
	require.NoError(t, db.Create(account).Error)
	return account
}

func createPayload(accountID uuid.UUID) model.PositionCreate {
	return model.PositionCreate{
		AccountID:       accountID,
		Ticker:          "aapl",
		Type:            model.PositionTypeCashSecuredPut,
		OpenDate:        model.NewDate(2025, time.March, 3),
		ExpirationDate:  model.NewDate(2025, time.April, 17),
		StrikePrice:     decimal.RequireFromString("150"),
		Contracts:       1,
		PremiumPerShare: decimal.RequireFromString("3.50"),
	}
}

func TestCreateNormalizesAndDefaults(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	assert.Equal(t, "AAPL", position.Ticker)
	assert.Equal(t, model.PositionStatusOpen, position.Status)
	assert.Equal(t, 100, position.Multiplier)
	assert.True(t, position.OpenFees.IsZero())
	assert.NotEqual(t, uuid.Nil, position.ID)
}

func TestCreateRejectsForeignAccount(t *testing.T) {
	db := newTestDB(t)
	owner := uuid.New()
	intruder := uuid.New()
	account := seedAccount(t, db, owner)
	svc := NewServiceWithDB(db)

	_, err := svc.Create(context.Background(), intruder, createPayload(account.ID))
	assert.ErrorIs(t, err, ErrAccountNotOwned)

	var count int64
	require.NoError(t, db.Model(&model.Position{}).Count(&count).Error)
	assert.EqualValues(t, 0, count, "no position should have been written")
}

func TestCreateRejectsMalformedTerms(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	payload := createPayload(account.ID)
	payload.StrikePrice = decimal.Zero

	_, err := svc.Create(context.Background(), userID, payload)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateAppliesOnlyProvidedFields(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	newTicker := "msft"
	updated, err := svc.Update(context.Background(), userID, position.ID, model.PositionUpdate{
		Ticker: &newTicker,
	})
	require.NoError(t, err)

	assert.Equal(t, "MSFT", updated.Ticker)
	assert.True(t, updated.StrikePrice.Equal(position.StrikePrice))
	assert.Equal(t, position.Contracts, updated.Contracts)
	assert.Equal(t, model.PositionStatusOpen, updated.Status)
}

func TestUpdateWithEmptyChangeSetMutatesNothing(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), userID, position.ID, model.PositionUpdate{})
	require.NoError(t, err)

	assert.Equal(t, position.Ticker, updated.Ticker)
	assert.Equal(t, position.AccountID, updated.AccountID)
	assert.True(t, updated.PremiumPerShare.Equal(position.PremiumPerShare))
	assert.Equal(t, position.OpenDate.String(), updated.OpenDate.String())
}

func TestUpdateUnknownPositionFails(t *testing.T) {
	db := newTestDB(t)
	svc := NewServiceWithDB(db)

	_, err := svc.Update(context.Background(), uuid.New(), uuid.New(), model.PositionUpdate{})
	assert.ErrorIs(t, err, ErrPositionNotFound)
}

func TestUpdateAccountReferenceIsOwnershipChecked(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	foreign := seedAccount(t, db, uuid.New())
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), userID, position.ID, model.PositionUpdate{
		AccountID: &foreign.ID,
	})
	assert.ErrorIs(t, err, ErrAccountNotOwned)

	var stored model.Position
	require.NoError(t, db.First(&stored, "id = ?", position.ID).Error)
	assert.Equal(t, account.ID, stored.AccountID, "account reference must be unchanged")
}

func TestCloseSetsTerminalState(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	closeFees := decimal.RequireFromString("0.65")
	closed, err := svc.Close(context.Background(), userID, position.ID, model.PositionClose{
		Outcome:   model.OutcomeExpired,
		CloseDate: model.NewDate(2025, time.April, 17),
		CloseFees: &closeFees,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PositionStatusClosed, closed.Status)
	require.NotNil(t, closed.Outcome)
	assert.Equal(t, model.OutcomeExpired, *closed.Outcome)
	require.NotNil(t, closed.CloseDate)
	assert.Equal(t, "2025-04-17", closed.CloseDate.String())
	assert.True(t, closed.CloseFees.Equal(closeFees))
}

func TestCloseWithoutOptionalTermsKeepsDefaults(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	closed, err := svc.Close(context.Background(), userID, position.ID, model.PositionClose{
		Outcome:   model.OutcomeAssigned,
		CloseDate: model.NewDate(2025, time.April, 17),
	})
	require.NoError(t, err)

	assert.True(t, closed.CloseFees.IsZero())
	assert.Nil(t, closed.ClosePricePerShare)
}

func TestCloseAlreadyClosedFailsAndLeavesStateUnchanged(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), userID, position.ID, model.PositionClose{
		Outcome:   model.OutcomeExpired,
		CloseDate: model.NewDate(2025, time.April, 17),
	})
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), userID, position.ID, model.PositionClose{
		Outcome:   model.OutcomeClosedEarly,
		CloseDate: model.NewDate(2025, time.April, 20),
	})
	assert.ErrorIs(t, err, ErrAlreadyClosed)

	var stored model.Position
	require.NoError(t, db.First(&stored, "id = ?", position.ID).Error)
	require.NotNil(t, stored.Outcome)
	assert.Equal(t, model.OutcomeExpired, *stored.Outcome)
	assert.Equal(t, "2025-04-17", stored.CloseDate.String())
}

func TestRollLinksBothLegs(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	open := createPayload(account.ID)
	open.ExpirationDate = model.NewDate(2025, time.May, 16)
	open.PremiumPerShare = decimal.RequireFromString("2.80")

	result, err := svc.Roll(context.Background(), userID, position.ID, model.PositionRoll{
		Close: model.RollClose{CloseDate: model.NewDate(2025, time.April, 10)},
		Open:  open,
	})
	require.NoError(t, err)

	assert.Equal(t, model.PositionStatusClosed, result.Closed.Status)
	require.NotNil(t, result.Closed.Outcome)
	assert.Equal(t, model.OutcomeRolled, *result.Closed.Outcome)
	assert.Equal(t, model.PositionStatusOpen, result.Opened.Status)

	require.NotNil(t, result.Closed.RollGroupID)
	require.NotNil(t, result.Opened.RollGroupID)
	assert.Equal(t, *result.Closed.RollGroupID, *result.Opened.RollGroupID)

	var linked []model.Position
	require.NoError(t, db.Where("roll_group_id = ?", *result.Closed.RollGroupID).Find(&linked).Error)
	assert.Len(t, linked, 2, "exactly two positions share the roll group")
}

func TestRollRejectsForeignOpenAccountWithoutMutating(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	foreign := seedAccount(t, db, uuid.New())
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	_, err = svc.Roll(context.Background(), userID, position.ID, model.PositionRoll{
		Close: model.RollClose{CloseDate: model.NewDate(2025, time.April, 10)},
		Open:  createPayload(foreign.ID),
	})
	assert.ErrorIs(t, err, ErrAccountNotOwned)

	var stored model.Position
	require.NoError(t, db.First(&stored, "id = ?", position.ID).Error)
	assert.Equal(t, model.PositionStatusOpen, stored.Status)

	var count int64
	require.NoError(t, db.Model(&model.Position{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "no second leg may exist")
}

func TestRollAlreadyClosedFails(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	_, err = svc.Close(context.Background(), userID, position.ID, model.PositionClose{
		Outcome:   model.OutcomeExpired,
		CloseDate: model.NewDate(2025, time.April, 17),
	})
	require.NoError(t, err)

	_, err = svc.Roll(context.Background(), userID, position.ID, model.PositionRoll{
		Close: model.RollClose{CloseDate: model.NewDate(2025, time.April, 18)},
		Open:  createPayload(account.ID),
	})
	assert.ErrorIs(t, err, ErrAlreadyClosed)
}

func TestPositionsAreScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	userID := uuid.New()
	account := seedAccount(t, db, userID)
	svc := NewServiceWithDB(db)

	position, err := svc.Create(context.Background(), userID, createPayload(account.ID))
	require.NoError(t, err)

	repo := repository.NewPositionRepository().WithDB(db)
	found, err := repo.FindByIDAndUser(context.Background(), position.ID, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, found, "foreign user must see the position as absent")
}
