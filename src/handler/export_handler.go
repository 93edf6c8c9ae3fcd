package handler

import (
	"encoding/csv"
	"net/http"
	"strconv"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"wheelhouse/src/auth"
	"wheelhouse/src/metrics"
	"wheelhouse/src/model"
	"wheelhouse/src/repository"
)

// csvColumns is the export's compatibility surface: stored fields first,
// derived metrics last.
var csvColumns = []string{
	"id",
	"user_id",
	"account_id",
	"ticker",
	"type",
	"status",
	"open_date",
	"expiration_date",
	"close_date",
	"strike_price",
	"contracts",
	"multiplier",
	"premium_per_share",
	"open_fees",
	"close_fees",
	"close_price_per_share",
	"outcome",
	"roll_group_id",
	"notes",
	"tags",
	"created_at",
	"updated_at",
	"premium_total",
	"premium_net",
	"collateral",
	"roc_period",
	"dte",
	"annualized_roc",
}

func csvRow(resp model.PositionResponse) []string {
	closeDate := ""
	if resp.CloseDate != nil {
		closeDate = resp.CloseDate.String()
	}
	closePrice := ""
	if resp.ClosePricePerShare != nil {
		closePrice = resp.ClosePricePerShare.String()
	}
	outcome := ""
	if resp.Outcome != nil {
		outcome = *resp.Outcome
	}
	rollGroupID := ""
	if resp.RollGroupID != nil {
		rollGroupID = resp.RollGroupID.String()
	}
	notes := ""
	if resp.Notes != nil {
		notes = *resp.Notes
	}

	return []string{
		resp.ID.String(),
		resp.UserID.String(),
		resp.AccountID.String(),
		resp.Ticker,
		resp.Type,
		resp.Status,
		resp.OpenDate.String(),
		resp.ExpirationDate.String(),
		closeDate,
		resp.StrikePrice.String(),
		strconv.Itoa(resp.Contracts),
		strconv.Itoa(resp.Multiplier),
		resp.PremiumPerShare.String(),
		resp.OpenFees.String(),
		resp.CloseFees.String(),
		closePrice,
		outcome,
		rollGroupID,
		notes,
		strings.Join(resp.Tags, ";"),
		resp.CreatedAt.Format(time.RFC3339),
		resp.UpdatedAt.Format(time.RFC3339),
		resp.PremiumTotal.String(),
		resp.PremiumNet.String(),
		resp.Collateral.String(),
		resp.RocPeriod.String(),
		strconv.Itoa(resp.DTE),
		resp.AnnualizedRoc.String(),
	}
}

// ExportPositionsHandler streams the user's positions as CSV, derived
// metrics included.
func ExportPositionsHandler(repo positionSearcher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		options := repository.PositionSearchOptions{UserID: userID}
		var paramOK bool
		if options.OpenedFrom, paramOK = parseDateParam(r, "start"); !paramOK {
			writeError(w, http.StatusBadRequest, "invalid start")
			return
		}
		if options.OpenedTo, paramOK = parseDateParam(r, "end"); !paramOK {
			writeError(w, http.StatusBadRequest, "invalid end")
			return
		}
		if status := r.URL.Query().Get("status"); status != "" {
			if status != model.PositionStatusOpen && status != model.PositionStatusClosed {
				writeError(w, http.StatusBadRequest, "invalid status")
				return
			}
			options.Status = &status
		}
		if ticker := r.URL.Query().Get("ticker"); ticker != "" {
			upper := strings.ToUpper(ticker)
			options.Ticker = &upper
		}

		positions, err := repo.Search(r.Context(), options)
		if err != nil {
			logger.WithError(err).Error("failed to search positions for export")
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		now := time.Now()
		filename := "positions_" + model.DateOf(now).String() + ".csv"
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

		writer := csv.NewWriter(w)
		if err := writer.Write(csvColumns); err != nil {
			logger.WithError(err).Error("failed to write csv header")
			return
		}
		for i := range positions {
			resp := metrics.NewPositionResponse(&positions[i], now)
			if err := writer.Write(csvRow(resp)); err != nil {
				logger.WithError(err).Error("failed to write csv row")
				return
			}
		}
		writer.Flush()
		if err := writer.Error(); err != nil {
			logger.WithError(err).Error("failed to flush csv export")
		}
	}
}

// DefaultExportHandler wires the handler to the production repository.
func DefaultExportHandler() http.HandlerFunc {
	return ExportPositionsHandler(repository.NewPositionRepository())
}
