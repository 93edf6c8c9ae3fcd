package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	logger "github.com/sirupsen/logrus"

	"wheelhouse/src/lifecycle"
	"wheelhouse/src/model"
)

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// writeLifecycleError maps the core's sentinel errors onto HTTP statuses.
// Anything unrecognized is a storage failure and reads as a 500.
func writeLifecycleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, lifecycle.ErrAccountNotOwned):
		writeError(w, http.StatusBadRequest, "Account not found or does not belong to you")
	case errors.Is(err, lifecycle.ErrPositionNotFound):
		writeError(w, http.StatusNotFound, "Position not found")
	case errors.Is(err, lifecycle.ErrAlreadyClosed):
		writeError(w, http.StatusConflict, "Position is already closed")
	case errors.Is(err, lifecycle.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		logger.WithError(err).Error("position mutation failed")
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

// parseDateParam reads an optional "YYYY-MM-DD" query parameter.
// The bool result reports whether the parameter was malformed.
func parseDateParam(r *http.Request, name string) (*model.Date, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, true
	}
	date, err := model.ParseDate(raw)
	if err != nil {
		return nil, false
	}
	return &date, true
}
