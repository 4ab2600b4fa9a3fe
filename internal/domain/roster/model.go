package roster

import "strings"

// DefaultDrawPool caps how many confirmed players enter a team draw.
const DefaultDrawPool = 10

// TeamSize is the number of players on each drawn side.
const TeamSize = 5

// List is the ordered set of confirmed players for the next game. Order is
// confirmation order and names are unique.
type List struct {
	Players []string `json:"players"`
}

func (l List) Contains(name string) bool {
	needle := normalize(name)
	for _, player := range l.Players {
		if normalize(player) == needle {
			return true
		}
	}
	return false
}

func (l List) Clone() List {
	out := List{Players: make([]string, len(l.Players))}
	copy(out.Players, l.Players)
	return out
}

// Teams is the result of a draw: two sides of TeamSize players each.
type Teams struct {
	White []string `json:"white"`
	Black []string `json:"black"`
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
