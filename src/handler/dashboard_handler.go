package handler

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	logger "github.com/sirupsen/logrus"

	"wheelhouse/src/auth"
	"wheelhouse/src/dashboard"
	"wheelhouse/src/model"
)

type dashboardService interface {
	Summary(ctx context.Context, userID uuid.UUID, start, end *model.Date) (*model.DashboardSummary, error)
	ByTicker(ctx context.Context, userID uuid.UUID, start, end *model.Date) ([]model.TickerSummary, error)
}

// DashboardSummaryHandler serves the aggregate dashboard figures.
func DashboardSummaryHandler(svc dashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		start, ok := parseDateParam(r, "start")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid start")
			return
		}
		end, ok := parseDateParam(r, "end")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid end")
			return
		}

		summary, err := svc.Summary(r.Context(), userID, start, end)
		if err != nil {
			logger.WithError(err).Error("failed to compute dashboard summary")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusOK, summary)
	}
}

// DashboardByTickerHandler serves the per-ticker premium rollup.
func DashboardByTickerHandler(svc dashboardService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		start, ok := parseDateParam(r, "start")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid start")
			return
		}
		end, ok := parseDateParam(r, "end")
		if !ok {
			writeError(w, http.StatusBadRequest, "invalid end")
			return
		}

		summaries, err := svc.ByTicker(r.Context(), userID, start, end)
		if err != nil {
			logger.WithError(err).Error("failed to compute by-ticker rollup")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		writeJSON(w, http.StatusOK, summaries)
	}
}

// DefaultDashboardHandlers wires the handlers to the production service.
func DefaultDashboardHandlers() (summary, byTicker http.HandlerFunc) {
	svc := dashboard.NewService()
	return DashboardSummaryHandler(svc), DashboardByTickerHandler(svc)
}
