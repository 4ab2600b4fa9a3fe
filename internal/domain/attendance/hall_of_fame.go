package attendance

import (
	"sort"
)

// HallOfFame highlights the board extremes. LeastPresent carries up to three
// players; MonthlyPerfect lists everyone who attended every game of the
// calendar month containing the latest feed date.
type HallOfFame struct {
	OnFire         *Player  `json:"onFire,omitempty"`
	MostPresent    *Player  `json:"mostPresent,omitempty"`
	LeastPresent   []Player `json:"leastPresent"`
	MonthlyPerfect []string `json:"monthlyPerfect"`
	PerfectMonth   string   `json:"perfectMonth,omitempty"`
}

func (b Board) HallOfFame() HallOfFame {
	fame := HallOfFame{
		LeastPresent:   []Player{},
		MonthlyPerfect: []string{},
	}
	if len(b.Players) == 0 {
		return fame
	}

	ranked := make([]Player, len(b.Players))
	copy(ranked, b.Players)

	// Highest average wins, names ascending break ties.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average > ranked[j].Average
		}
		return ranked[i].Name < ranked[j].Name
	})
	onFire := ranked[0]
	fame.OnFire = &onFire

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Presences != ranked[j].Presences {
			return ranked[i].Presences > ranked[j].Presences
		}
		return ranked[i].Name < ranked[j].Name
	})
	mostPresent := ranked[0]
	fame.MostPresent = &mostPresent

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Average != ranked[j].Average {
			return ranked[i].Average < ranked[j].Average
		}
		return ranked[i].Name < ranked[j].Name
	})
	bottom := 3
	if len(ranked) < bottom {
		bottom = len(ranked)
	}
	fame.LeastPresent = append(fame.LeastPresent, ranked[:bottom]...)

	fame.PerfectMonth, fame.MonthlyPerfect = b.monthlyPerfect()
	return fame
}

// monthlyPerfect resolves the calendar month of the latest feed date and
// returns the players present at every tracked game inside it. Players with
// no tracked game that month do not qualify.
func (b Board) monthlyPerfect() (string, []string) {
	if len(b.Dates) == 0 {
		return "", []string{}
	}

	latest, ok := ParseDateKey(b.Dates[len(b.Dates)-1])
	if !ok {
		return "", []string{}
	}
	monthKey := latest.Format("2006-01")

	monthDates := make([]string, 0, 8)
	for _, date := range b.Dates {
		parsed, ok := ParseDateKey(date)
		if !ok {
			continue
		}
		if parsed.Format("2006-01") == monthKey {
			monthDates = append(monthDates, date)
		}
	}
	if len(monthDates) == 0 {
		return monthKey, []string{}
	}

	perfect := make([]string, 0, len(b.Players))
	for _, player := range b.Players {
		tracked := 0
		present := 0
		for _, date := range monthDates {
			switch Classify(player.Attendance[date]) {
			case StatusEmpty:
				continue
			case StatusPresent:
				present++
			}
			tracked++
		}
		if tracked > 0 && present == tracked {
			perfect = append(perfect, player.Name)
		}
	}
	sort.Strings(perfect)
	return monthKey, perfect
}
