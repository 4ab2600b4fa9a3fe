package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cbaclube/portal/internal/domain/finance"
)

type FinanceService struct {
	feed    FeedFetcher
	feedURL string
	backend AdminBackend
}

func NewFinanceService(feed FeedFetcher, feedURL string, backend AdminBackend) *FinanceService {
	return &FinanceService{
		feed:    feed,
		feedURL: strings.TrimSpace(feedURL),
		backend: backend,
	}
}

// Report projects the finance feed, optionally narrowed to one Portuguese
// month name. Summary-only feeds ignore the filter.
func (s *FinanceService) Report(ctx context.Context, month string) (finance.Report, error) {
	ctx, span := startUsecaseSpan(ctx, "FinanceService.Report")
	defer span.End()

	month = strings.TrimSpace(month)
	if month != "" && finance.MonthIndex(month) < 0 {
		return finance.Report{}, fmt.Errorf("%w: unknown month %q", ErrInvalidInput, month)
	}

	records, err := s.feed.Fetch(ctx, s.feedURL)
	if err != nil {
		return finance.Report{}, fmt.Errorf("fetch finance feed: %w", err)
	}

	report, err := finance.BuildReport(records)
	if err != nil {
		if errors.Is(err, finance.ErrNoData) {
			return finance.Report{}, fmt.Errorf("%w: %v", ErrDataShape, err)
		}
		return finance.Report{}, err
	}
	return report.FilterMonth(month), nil
}

// Totals is the aggregate view the dashboard header shows.
func (s *FinanceService) Totals(ctx context.Context, month string) (finance.Summary, error) {
	report, err := s.Report(ctx, "")
	if err != nil {
		return finance.Summary{}, err
	}
	if month != "" && finance.MonthIndex(month) < 0 {
		return finance.Summary{}, fmt.Errorf("%w: unknown month %q", ErrInvalidInput, month)
	}
	return report.Totals(month), nil
}

// SendReports asks the script to mail the treasurer reports out.
func (s *FinanceService) SendReports(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "FinanceService.SendReports")
	defer span.End()

	if s.backend == nil {
		return fmt.Errorf("%w: reports backend is not configured", ErrDependencyUnavailable)
	}
	if err := s.backend.SendFinanceReports(ctx); err != nil {
		return fmt.Errorf("send finance reports: %w", err)
	}
	return nil
}
