package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"wheelhouse/src/auth"
	"wheelhouse/src/model"
	"wheelhouse/src/repository"
)

type accountStore interface {
	Create(ctx context.Context, account *model.Account) error
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*model.Account, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Account, error)
	Save(ctx context.Context, account *model.Account) error
}

// ListAccountsHandler returns every account owned by the authenticated user.
func ListAccountsHandler(store accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		accounts, err := store.ListByUser(r.Context(), userID)
		if err != nil {
			logger.WithError(err).Error("failed to list accounts")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusOK, accounts)
	}
}

// CreateAccountHandler creates a brokerage account for the authenticated user.
func CreateAccountHandler(store accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var payload model.AccountCreate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid account create payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := payload.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		account := &model.Account{
			UserID:       userID,
			Name:         payload.Name,
			Broker:       payload.Broker,
			TaxTreatment: payload.TaxTreatment,
		}
		if err := store.Create(r.Context(), account); err != nil {
			logger.WithError(err).Error("failed to create account")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusCreated, account)
	}
}

// UpdateAccountHandler applies a partial update to an owned account.
func UpdateAccountHandler(store accountStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		accountID, err := uuid.Parse(chi.URLParam(r, "accountID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid account id")
			return
		}

		var payload model.AccountUpdate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid account update payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}
		if err := payload.Validate(); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}

		account, err := store.FindByIDAndUser(r.Context(), accountID, userID)
		if err != nil {
			logger.WithError(err).Error("failed to fetch account")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		if account == nil {
			writeError(w, http.StatusNotFound, "Account not found")
			return
		}

		payload.Apply(account)
		account.UpdatedAt = time.Now()
		if err := store.Save(r.Context(), account); err != nil {
			logger.WithError(err).Error("failed to save account")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusOK, account)
	}
}

// DefaultAccountHandlers wires the handlers to the production repository.
func DefaultAccountHandlers() (list, create, update http.HandlerFunc) {
	store := repository.NewAccountRepository()
	return ListAccountsHandler(store), CreateAccountHandler(store), UpdateAccountHandler(store)
}
