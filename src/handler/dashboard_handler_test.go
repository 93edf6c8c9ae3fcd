package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"wheelhouse/src/model"
)

type mockDashboardService struct {
	summary   *model.DashboardSummary
	summaries []model.TickerSummary
	err       error
	userID    uuid.UUID
	start     *model.Date
	end       *model.Date
}

func (m *mockDashboardService) Summary(ctx context.Context, userID uuid.UUID, start, end *model.Date) (*model.DashboardSummary, error) {
	m.userID = userID
	m.start = start
	m.end = end
	return m.summary, m.err
}

func (m *mockDashboardService) ByTicker(ctx context.Context, userID uuid.UUID, start, end *model.Date) ([]model.TickerSummary, error) {
	m.userID = userID
	m.start = start
	m.end = end
	return m.summaries, m.err
}

func TestDashboardSummaryHandler_Unauthorized(t *testing.T) {
	handler := DashboardSummaryHandler(&mockDashboardService{})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/summary", nil)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestDashboardSummaryHandler_InvalidWindow(t *testing.T) {
	handler := DashboardSummaryHandler(&mockDashboardService{})

	req := authenticated(httptest.NewRequest(http.MethodGet, "/dashboard/summary?start=last-tuesday", nil), uuid.New())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestDashboardSummaryHandler_Success(t *testing.T) {
	userID := uuid.New()
	mockSvc := &mockDashboardService{summary: &model.DashboardSummary{
		TotalPremiumCollected: decimal.RequireFromString("848.50"),
		PremiumMTD:            decimal.RequireFromString("200"),
		OpenPositionCount:     2,
		UpcomingExpirations:   []model.PositionResponse{},
	}}
	handler := DashboardSummaryHandler(mockSvc)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/dashboard/summary?start=2025-01-01&end=2025-03-31", nil), userID)
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mockSvc.userID != userID {
		t.Fatalf("summary not scoped to the authenticated user")
	}
	if mockSvc.start == nil || mockSvc.start.String() != "2025-01-01" {
		t.Fatalf("start window not forwarded, got %v", mockSvc.start)
	}
	if mockSvc.end == nil || mockSvc.end.String() != "2025-03-31" {
		t.Fatalf("end window not forwarded, got %v", mockSvc.end)
	}

	var summary model.DashboardSummary
	if err := json.NewDecoder(rr.Body).Decode(&summary); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !summary.TotalPremiumCollected.Equal(decimal.RequireFromString("848.50")) {
		t.Fatalf("unexpected total premium %s", summary.TotalPremiumCollected)
	}
}

func TestDashboardByTickerHandler_ServiceError(t *testing.T) {
	handler := DashboardByTickerHandler(&mockDashboardService{err: assert.AnError})

	req := authenticated(httptest.NewRequest(http.MethodGet, "/dashboard/by-ticker", nil), uuid.New())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestDashboardByTickerHandler_Success(t *testing.T) {
	mockSvc := &mockDashboardService{summaries: []model.TickerSummary{
		{Ticker: "AAPL", TotalPremium: decimal.RequireFromString("1000"), TradeCount: 2},
		{Ticker: "MSFT", TotalPremium: decimal.RequireFromString("200"), TradeCount: 1},
	}}
	handler := DashboardByTickerHandler(mockSvc)

	req := authenticated(httptest.NewRequest(http.MethodGet, "/dashboard/by-ticker", nil), uuid.New())
	rr := httptest.NewRecorder()

	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if mockSvc.start != nil || mockSvc.end != nil {
		t.Fatalf("absent window parameters must be forwarded as nil")
	}

	var summaries []model.TickerSummary
	if err := json.NewDecoder(rr.Body).Decode(&summaries); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(summaries) != 2 || summaries[0].Ticker != "AAPL" {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}
