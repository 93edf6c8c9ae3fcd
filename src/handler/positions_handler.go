package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"wheelhouse/src/auth"
	"wheelhouse/src/lifecycle"
	"wheelhouse/src/metrics"
	"wheelhouse/src/model"
	"wheelhouse/src/repository"
)

type positionSearcher interface {
	Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
}

type positionLifecycle interface {
	Create(ctx context.Context, userID uuid.UUID, input model.PositionCreate) (*model.Position, error)
	Update(ctx context.Context, userID, positionID uuid.UUID, input model.PositionUpdate) (*model.Position, error)
	Close(ctx context.Context, userID, positionID uuid.UUID, input model.PositionClose) (*model.Position, error)
	Roll(ctx context.Context, userID, positionID uuid.UUID, input model.PositionRoll) (*lifecycle.RollResult, error)
}

// searchOptionsFromQuery translates the listing query string into repository
// filters. The bool result reports whether every parameter parsed.
func searchOptionsFromQuery(r *http.Request, userID uuid.UUID) (repository.PositionSearchOptions, bool) {
	options := repository.PositionSearchOptions{
		UserID:    userID,
		SortBy:    r.URL.Query().Get("sort"),
		SortOrder: strings.ToLower(r.URL.Query().Get("order")),
	}

	if status := r.URL.Query().Get("status"); status != "" {
		if status != model.PositionStatusOpen && status != model.PositionStatusClosed {
			return options, false
		}
		options.Status = &status
	}
	if ticker := r.URL.Query().Get("ticker"); ticker != "" {
		upper := strings.ToUpper(ticker)
		options.Ticker = &upper
	}
	if positionType := r.URL.Query().Get("type"); positionType != "" {
		if !model.IsValidPositionType(positionType) {
			return options, false
		}
		options.Type = &positionType
	}
	if accountParam := r.URL.Query().Get("account_id"); accountParam != "" {
		accountID, err := uuid.Parse(accountParam)
		if err != nil {
			return options, false
		}
		options.AccountID = &accountID
	}

	var ok bool
	if options.ExpirationStart, ok = parseDateParam(r, "expiration_start"); !ok {
		return options, false
	}
	if options.ExpirationEnd, ok = parseDateParam(r, "expiration_end"); !ok {
		return options, false
	}
	return options, true
}

// ListPositionsHandler lists the authenticated user's positions with their
// derived metrics.
func ListPositionsHandler(repo positionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		options, ok := searchOptionsFromQuery(r, userID)
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid query parameter")
			return
		}

		positions, err := repo.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search positions")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		now := time.Now()
		responses := make([]model.PositionResponse, 0, len(positions))
		for i := range positions {
			responses = append(responses, metrics.NewPositionResponse(&positions[i], now))
		}
		writeJSON(w, http.StatusOK, responses)
	}
}

// CreatePositionHandler opens a new position.
func CreatePositionHandler(svc positionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		var payload model.PositionCreate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid position create payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		position, err := svc.Create(r.Context(), userID, payload)
		if err != nil {
			writeLifecycleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, metrics.NewPositionResponse(position, time.Now()))
	}
}

// UpdatePositionHandler applies a partial update to an owned position.
func UpdatePositionHandler(svc positionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		positionID, err := uuid.Parse(chi.URLParam(r, "positionID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid position id")
			return
		}

		var payload model.PositionUpdate
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid position update payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		position, err := svc.Update(r.Context(), userID, positionID, payload)
		if err != nil {
			writeLifecycleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, metrics.NewPositionResponse(position, time.Now()))
	}
}

// ClosePositionHandler closes an open position with a terminal outcome.
func ClosePositionHandler(svc positionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		positionID, err := uuid.Parse(chi.URLParam(r, "positionID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid position id")
			return
		}

		var payload model.PositionClose
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid position close payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		position, err := svc.Close(r.Context(), userID, positionID, payload)
		if err != nil {
			writeLifecycleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, metrics.NewPositionResponse(position, time.Now()))
	}
}

// RollPositionHandler closes a position and opens its replacement atomically.
func RollPositionHandler(svc positionLifecycle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		positionID, err := uuid.Parse(chi.URLParam(r, "positionID"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid position id")
			return
		}

		var payload model.PositionRoll
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			logger.WithError(err).Warn("invalid position roll payload")
			writeError(w, http.StatusBadRequest, "Invalid payload")
			return
		}

		result, err := svc.Roll(r.Context(), userID, positionID, payload)
		if err != nil {
			writeLifecycleError(w, err)
			return
		}

		now := time.Now()
		writeJSON(w, http.StatusOK, model.RollResponse{
			Closed: metrics.NewPositionResponse(result.Closed, now),
			Opened: metrics.NewPositionResponse(result.Opened, now),
		})
	}
}

// DefaultPositionHandlers wires the handlers to the production repository
// and lifecycle service.
func DefaultPositionHandlers() (list, create, update, close, roll http.HandlerFunc) {
	repo := repository.NewPositionRepository()
	svc := lifecycle.NewService()
	return ListPositionsHandler(repo),
		CreatePositionHandler(svc),
		UpdatePositionHandler(svc),
		ClosePositionHandler(svc),
		RollPositionHandler(svc)
}
