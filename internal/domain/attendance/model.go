package attendance

import (
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"
)

var (
	ErrNoData        = errors.New("attendance feed has no data")
	ErrInvalidPeriod = errors.New("invalid report period")
)

// Status classifies one attendance cell. Classification order matters:
// presence marker first, then the exact unjustified-absence label, then any
// remaining non-empty token. Blank cells mean the player was not tracked for
// that date and count toward nothing.
type Status int

const (
	StatusEmpty Status = iota
	StatusPresent
	StatusAbsentUnjustified
	StatusAbsentOther
)

const (
	presentMarker     = "✅"
	unjustifiedMarker = "NÃO JUSTIFICOU"
)

func Classify(cell string) Status {
	token := strings.TrimSpace(cell)
	switch {
	case token == "":
		return StatusEmpty
	case strings.Contains(token, presentMarker):
		return StatusPresent
	case strings.EqualFold(token, unjustifiedMarker):
		return StatusAbsentUnjustified
	default:
		return StatusAbsentOther
	}
}

// Player carries the per-player aggregates derived from the feed. Derived in
// full on every refresh, never patched incrementally.
type Player struct {
	Name                    string            `json:"name"`
	Attendance              map[string]string `json:"attendance"`
	Presences               int               `json:"presences"`
	TotalGames              int               `json:"totalGames"`
	Average                 float64           `json:"average"`
	UnjustifiedAbsences     int               `json:"unjustifiedAbsences"`
	UnjustifiedAbsenceDates []string          `json:"unjustifiedAbsenceDates"`
}

// Board is the full attendance projection: players plus the chronologically
// ascending date columns every downstream window and chart relies on.
type Board struct {
	Players []Player `json:"players"`
	Dates   []string `json:"dates"`
}

var dateKeyPattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`)

const dateKeyLayout = "2/1/2006"

func ParseDateKey(key string) (time.Time, bool) {
	parsed, err := time.Parse(dateKeyLayout, strings.TrimSpace(key))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// BuildBoard projects the raw feed records (header row first) into a Board.
// Header columns that do not look like DD/MM/YYYY dates are ignored rather
// than fatal; rows with a blank name are skipped.
func BuildBoard(records [][]string) (Board, error) {
	if len(records) < 2 {
		return Board{}, ErrNoData
	}

	header := records[0]
	if len(header) < 2 {
		return Board{}, ErrNoData
	}

	dates := make([]string, 0, len(header)-1)
	for _, column := range header[1:] {
		key := strings.TrimSpace(column)
		if !dateKeyPattern.MatchString(key) {
			continue
		}
		if _, ok := ParseDateKey(key); !ok {
			continue
		}
		dates = append(dates, key)
	}
	if len(dates) == 0 {
		return Board{}, ErrNoData
	}

	sort.SliceStable(dates, func(i, j int) bool {
		left, _ := ParseDateKey(dates[i])
		right, _ := ParseDateKey(dates[j])
		return left.Before(right)
	})

	columnByDate := make(map[string]int, len(dates))
	for index, column := range header {
		key := strings.TrimSpace(column)
		if dateKeyPattern.MatchString(key) {
			columnByDate[key] = index
		}
	}

	players := make([]Player, 0, len(records)-1)
	for _, row := range records[1:] {
		if len(row) == 0 {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			continue
		}

		player := Player{
			Name:                    name,
			Attendance:              make(map[string]string, len(dates)),
			UnjustifiedAbsenceDates: make([]string, 0, 2),
		}
		for _, date := range dates {
			cell := ""
			if column, ok := columnByDate[date]; ok && column < len(row) {
				cell = strings.TrimSpace(row[column])
			}
			player.Attendance[date] = cell

			switch Classify(cell) {
			case StatusEmpty:
				continue
			case StatusPresent:
				player.Presences++
			case StatusAbsentUnjustified:
				player.UnjustifiedAbsences++
				player.UnjustifiedAbsenceDates = append(player.UnjustifiedAbsenceDates, date)
			}
			player.TotalGames++
		}
		player.Average = roundPercent(player.Presences, player.TotalGames)
		players = append(players, player)
	}

	if len(players) == 0 {
		return Board{}, ErrNoData
	}

	return Board{Players: players, Dates: dates}, nil
}

func roundPercent(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)/float64(total)*1000) / 10
}

// TrendPoint is the per-date count of present players.
type TrendPoint struct {
	Date    string `json:"date"`
	Present int    `json:"present"`
}

func (b Board) Trend() []TrendPoint {
	out := make([]TrendPoint, 0, len(b.Dates))
	for _, date := range b.Dates {
		point := TrendPoint{Date: date}
		for _, player := range b.Players {
			if Classify(player.Attendance[date]) == StatusPresent {
				point.Present++
			}
		}
		out = append(out, point)
	}
	return out
}

// AvailableMonths lists the YYYY-MM keys covered by the feed, ascending.
func (b Board) AvailableMonths() []string {
	seen := make(map[string]struct{}, 12)
	out := make([]string, 0, 12)
	for _, date := range b.Dates {
		parsed, ok := ParseDateKey(date)
		if !ok {
			continue
		}
		key := parsed.Format("2006-01")
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
