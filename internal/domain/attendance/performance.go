package attendance

import (
	"sort"
	"time"
)

const (
	// ComplianceWindowDays bounds the rolling window the compliance check
	// looks at.
	ComplianceWindowDays = 60
	// ComplianceThreshold is the minimum presence percentage inside the
	// window for a player to count as compliant.
	ComplianceThreshold = 50.0
)

// PerformanceRow is one player's standing inside the rolling window.
type PerformanceRow struct {
	Name       string  `json:"name"`
	Games      int     `json:"games"`
	Presences  int     `json:"presences"`
	Percentage float64 `json:"percentage"`
	Compliant  bool    `json:"compliant"`
}

// Performance evaluates every player over the window ending at reference.
// Every game date inside the window counts against the percentage, blank
// cells included; a window with no game dates yields zero percentages and
// non-compliant rows, never a division error.
func (b Board) Performance(reference time.Time, windowDays int) []PerformanceRow {
	if windowDays <= 0 {
		windowDays = ComplianceWindowDays
	}
	cutoff := reference.AddDate(0, 0, -windowDays)

	windowDates := make([]string, 0, len(b.Dates))
	for _, date := range b.Dates {
		parsed, ok := ParseDateKey(date)
		if !ok {
			continue
		}
		if !parsed.Before(cutoff) && !parsed.After(reference) {
			windowDates = append(windowDates, date)
		}
	}

	rows := make([]PerformanceRow, 0, len(b.Players))
	for _, player := range b.Players {
		row := PerformanceRow{Name: player.Name, Games: len(windowDates)}
		for _, date := range windowDates {
			if Classify(player.Attendance[date]) == StatusPresent {
				row.Presences++
			}
		}
		row.Percentage = roundPercent(row.Presences, row.Games)
		row.Compliant = row.Games > 0 && row.Percentage >= ComplianceThreshold
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Percentage != rows[j].Percentage {
			return rows[i].Percentage > rows[j].Percentage
		}
		return rows[i].Name < rows[j].Name
	})
	return rows
}

// PeriodRow is one player's presence count inside a month range.
type PeriodRow struct {
	Name      string `json:"name"`
	Presences int    `json:"presences"`
	Games     int    `json:"games"`
}

// PeriodReport counts presences between the start and end months inclusive,
// both in YYYY-MM form. The range must not be inverted.
func (b Board) PeriodReport(startMonth, endMonth string) ([]PeriodRow, error) {
	start, err := time.Parse("2006-01", startMonth)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	end, err := time.Parse("2006-01", endMonth)
	if err != nil {
		return nil, ErrInvalidPeriod
	}
	if end.Before(start) {
		return nil, ErrInvalidPeriod
	}
	// Inclusive of the whole end month.
	end = end.AddDate(0, 1, 0)

	periodDates := make([]string, 0, len(b.Dates))
	for _, date := range b.Dates {
		parsed, ok := ParseDateKey(date)
		if !ok {
			continue
		}
		if !parsed.Before(start) && parsed.Before(end) {
			periodDates = append(periodDates, date)
		}
	}

	rows := make([]PeriodRow, 0, len(b.Players))
	for _, player := range b.Players {
		row := PeriodRow{Name: player.Name}
		for _, date := range periodDates {
			switch Classify(player.Attendance[date]) {
			case StatusEmpty:
				continue
			case StatusPresent:
				row.Presences++
			}
			row.Games++
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Presences != rows[j].Presences {
			return rows[i].Presences > rows[j].Presences
		}
		return rows[i].Name < rows[j].Name
	})
	return rows, nil
}
