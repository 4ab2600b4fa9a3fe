package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cbaclube/portal/internal/domain/attendance"
)

// AttendanceOverview is the full projection served to the portal in one
// shot: board, highlights, compliance window and chart series.
type AttendanceOverview struct {
	Board       attendance.Board            `json:"board"`
	HallOfFame  attendance.HallOfFame       `json:"hallOfFame"`
	Performance []attendance.PerformanceRow `json:"performance"`
	Trend       []attendance.TrendPoint     `json:"trend"`
	Months      []string                    `json:"months"`
}

type AttendanceService struct {
	feed       FeedFetcher
	feedURL    string
	windowDays int
	now        func() time.Time
}

func NewAttendanceService(feed FeedFetcher, feedURL string, windowDays int) *AttendanceService {
	if windowDays <= 0 {
		windowDays = attendance.ComplianceWindowDays
	}
	return &AttendanceService{
		feed:       feed,
		feedURL:    strings.TrimSpace(feedURL),
		windowDays: windowDays,
		now:        time.Now,
	}
}

func (s *AttendanceService) Overview(ctx context.Context) (AttendanceOverview, error) {
	ctx, span := startUsecaseSpan(ctx, "AttendanceService.Overview")
	defer span.End()

	board, err := s.board(ctx)
	if err != nil {
		return AttendanceOverview{}, err
	}

	return AttendanceOverview{
		Board:       board,
		HallOfFame:  board.HallOfFame(),
		Performance: board.Performance(s.now(), s.windowDays),
		Trend:       board.Trend(),
		Months:      board.AvailableMonths(),
	}, nil
}

// PeriodReport counts presences between two YYYY-MM months inclusive.
func (s *AttendanceService) PeriodReport(ctx context.Context, startMonth, endMonth string) ([]attendance.PeriodRow, error) {
	ctx, span := startUsecaseSpan(ctx, "AttendanceService.PeriodReport")
	defer span.End()

	startMonth = strings.TrimSpace(startMonth)
	endMonth = strings.TrimSpace(endMonth)
	if startMonth == "" || endMonth == "" {
		return nil, fmt.Errorf("%w: start and end months are required", ErrInvalidInput)
	}

	board, err := s.board(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := board.PeriodReport(startMonth, endMonth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return rows, nil
}

func (s *AttendanceService) board(ctx context.Context) (attendance.Board, error) {
	records, err := s.feed.Fetch(ctx, s.feedURL)
	if err != nil {
		return attendance.Board{}, fmt.Errorf("fetch attendance feed: %w", err)
	}

	board, err := attendance.BuildBoard(records)
	if err != nil {
		if errors.Is(err, attendance.ErrNoData) {
			return attendance.Board{}, fmt.Errorf("%w: %v", ErrDataShape, err)
		}
		return attendance.Board{}, err
	}
	return board, nil
}
