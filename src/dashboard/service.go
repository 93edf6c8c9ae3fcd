// Package dashboard folds per-position metrics into user-level summaries.
// All aggregation is read-only and derives from the metrics package.
package dashboard

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"wheelhouse/src/metrics"
	"wheelhouse/src/model"
	"wheelhouse/src/repository"
)

const upcomingExpirationWindowDays = 7

type positionSearcher interface {
	Search(ctx context.Context, options repository.PositionSearchOptions) ([]model.Position, error)
}

// Service computes dashboard aggregates. The clock is injectable so tests
// can pin "now".
type Service struct {
	positions positionSearcher
	now       func() time.Time
}

// NewService wires the service to the production position repository.
func NewService() *Service {
	return &Service{
		positions: repository.NewPositionRepository(),
		now:       time.Now,
	}
}

// NewServiceWith builds a service on explicit dependencies, used by tests.
func NewServiceWith(positions positionSearcher, now func() time.Time) *Service {
	return &Service{positions: positions, now: now}
}

// Summary aggregates the user's positions. The start/end window scopes
// total_premium_collected only. premium_mtd is always anchored to the first
// of the current month, and the open-position figures ignore the window.
func (s *Service) Summary(
	ctx context.Context,
	userID uuid.UUID,
	start *model.Date,
	end *model.Date,
) (*model.DashboardSummary, error) {

	windowed, err := s.positions.Search(ctx, repository.PositionSearchOptions{
		UserID:     userID,
		OpenedFrom: start,
		OpenedTo:   end,
	})
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i := range windowed {
		total = total.Add(metrics.ContributedPremium(&windowed[i]))
	}

	today := model.DateOf(s.now())
	mtdStart := model.NewDate(s.now().Year(), s.now().Month(), 1)
	mtdPositions, err := s.positions.Search(ctx, repository.PositionSearchOptions{
		UserID:     userID,
		OpenedFrom: &mtdStart,
	})
	if err != nil {
		return nil, err
	}

	premiumMTD := decimal.Zero
	for i := range mtdPositions {
		premiumMTD = premiumMTD.Add(metrics.ContributedPremium(&mtdPositions[i]))
	}

	openStatus := model.PositionStatusOpen
	openPositions, err := s.positions.Search(ctx, repository.PositionSearchOptions{
		UserID: userID,
		Status: &openStatus,
	})
	if err != nil {
		return nil, err
	}

	cutoff := today.AddDays(upcomingExpirationWindowDays)
	upcoming := make([]model.PositionResponse, 0)
	for i := range openPositions {
		if !openPositions[i].ExpirationDate.After(cutoff) {
			upcoming = append(upcoming, metrics.NewPositionResponse(&openPositions[i], s.now()))
		}
	}

	return &model.DashboardSummary{
		TotalPremiumCollected: total,
		PremiumMTD:            premiumMTD,
		OpenPositionCount:     len(openPositions),
		UpcomingExpirations:   upcoming,
	}, nil
}

// ByTicker groups the window-filtered positions by ticker. Positions with
// zero collateral or a non-positive trade span are skipped in the ROC
// average but still counted as trades. Output is sorted by total premium
// descending. ties keep the first-seen grouping order.
func (s *Service) ByTicker(
	ctx context.Context,
	userID uuid.UUID,
	start *model.Date,
	end *model.Date,
) ([]model.TickerSummary, error) {

	positions, err := s.positions.Search(ctx, repository.PositionSearchOptions{
		UserID:     userID,
		OpenedFrom: start,
		OpenedTo:   end,
	})
	if err != nil {
		return nil, err
	}

	type group struct {
		total  decimal.Decimal
		count  int
		rocSum decimal.Decimal
	}

	order := make([]string, 0)
	groups := make(map[string]*group)
	now := s.now()

	for i := range positions {
		p := &positions[i]
		g, ok := groups[p.Ticker]
		if !ok {
			g = &group{total: decimal.Zero, rocSum: decimal.Zero}
			groups[p.Ticker] = g
			order = append(order, p.Ticker)
		}

		g.total = g.total.Add(metrics.ContributedPremium(p))
		g.count++

		snapshot := metrics.Compute(p, now)
		if snapshot.Collateral.IsZero() || snapshot.DaysInTrade <= 0 {
			continue
		}
		g.rocSum = g.rocSum.Add(snapshot.AnnualizedRoc)
	}

	summaries := make([]model.TickerSummary, 0, len(order))
	for _, ticker := range order {
		g := groups[ticker]
		avg := decimal.Zero
		if g.count > 0 {
			avg = g.rocSum.Div(decimal.NewFromInt(int64(g.count)))
		}
		summaries = append(summaries, model.TickerSummary{
			Ticker:           ticker,
			TotalPremium:     g.total,
			TradeCount:       g.count,
			AvgAnnualizedRoc: avg,
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].TotalPremium.GreaterThan(summaries[j].TotalPremium)
	})

	return summaries, nil
}
