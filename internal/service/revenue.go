package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/iliyamo/marketplace-api/internal/apperr"
	"github.com/iliyamo/marketplace-api/internal/model"
	"github.com/iliyamo/marketplace-api/internal/policy"
)

const dateLayout = "2006-01-02"

// RevenueService reports paid revenue.  All amounts are in cents; handlers
// convert to major units.
type RevenueService struct {
	revenue RevenueStore
	logger  *slog.Logger
	now     Clock
}

func NewRevenueService(revenue RevenueStore, logger *slog.Logger) *RevenueService {
	return &RevenueService{revenue: revenue, logger: logger, now: systemClock}
}

// SellerTotal returns the calling seller's paid revenue.
func (s *RevenueService) SellerTotal(ctx context.Context, p *model.Principal) (int64, error) {
	if err := policy.Authorize(p, policy.ViewOwnRevenue, policy.Resource{}); err != nil {
		return 0, err
	}
	total, err := s.revenue.SellerTotal(ctx, p.ID)
	if err != nil {
		return 0, apperr.Internal("seller revenue", err)
	}
	return total, nil
}

// PlatformTotal returns all paid revenue.
func (s *RevenueService) PlatformTotal(ctx context.Context, p *model.Principal) (int64, error) {
	if err := policy.Authorize(p, policy.ViewAllRevenue, policy.Resource{}); err != nil {
		return 0, err
	}
	total, err := s.revenue.PlatformTotal(ctx)
	if err != nil {
		return 0, apperr.Internal("platform revenue", err)
	}
	return total, nil
}

// Current returns revenue for the period of granularity g that contains
// now: today, this ISO week, this month or this year (UTC).
func (s *RevenueService) Current(ctx context.Context, p *model.Principal, g model.Granularity) ([]model.PeriodTotal, error) {
	if err := policy.Authorize(p, policy.ViewAllRevenue, policy.Resource{}); err != nil {
		return nil, err
	}
	from, to, err := PeriodWindow(g, s.now())
	if err != nil {
		return nil, err
	}
	return s.buckets(ctx, g, from, to)
}

// Range returns daily revenue for every day from startDate to endDate,
// both inclusive.  Dates are YYYY-MM-DD; RFC 3339 timestamps are accepted
// and truncated to their UTC day.
func (s *RevenueService) Range(ctx context.Context, p *model.Principal, startDate, endDate string) ([]model.PeriodTotal, error) {
	if err := policy.Authorize(p, policy.ViewAllRevenue, policy.Resource{}); err != nil {
		return nil, err
	}
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return nil, apperr.BadRequest("startDate and endDate are required")
	}
	from, errFrom := parseDay(startDate)
	to, errTo := parseDay(endDate)
	if errFrom != nil || errTo != nil {
		return nil, apperr.BadRequest("Invalid date format for startDate or endDate")
	}
	if from.After(to) {
		return nil, apperr.BadRequest("startDate must not be after endDate")
	}
	return s.buckets(ctx, model.Daily, from, to.AddDate(0, 0, 1))
}

// PerSeller returns every seller's paid revenue, highest first.
func (s *RevenueService) PerSeller(ctx context.Context, p *model.Principal) ([]model.SellerRevenue, error) {
	if err := policy.Authorize(p, policy.ViewAllRevenue, policy.Resource{}); err != nil {
		return nil, err
	}
	out, err := s.revenue.PerSeller(ctx)
	if err != nil {
		return nil, apperr.Internal("revenue per seller", err)
	}
	return out, nil
}

func (s *RevenueService) buckets(ctx context.Context, g model.Granularity, from, to time.Time) ([]model.PeriodTotal, error) {
	out, err := s.revenue.Buckets(ctx, g, from, to)
	if err != nil {
		return nil, apperr.Internal("revenue buckets", err)
	}
	return out, nil
}

// PeriodWindow returns the half-open UTC interval [from, to) of the period
// of granularity g containing now.  Weeks start on Monday.
func PeriodWindow(g model.Granularity, now time.Time) (time.Time, time.Time, error) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch g {
	case model.Daily:
		return day, day.AddDate(0, 0, 1), nil
	case model.Weekly:
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case model.Monthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), nil
	case model.Yearly:
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), nil
	}
	return time.Time{}, time.Time{}, apperr.BadRequest("unknown revenue period")
}

func parseDay(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
}
