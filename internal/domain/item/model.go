package item

import "strings"

// Kind discriminates the two calendar collections the backend keeps in
// separate tabs.
type Kind string

const (
	KindEvent Kind = "event"
	KindGame  Kind = "game"
)

func ParseKind(raw string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindEvent:
		return KindEvent, true
	case KindGame:
		return KindGame, true
	}
	return "", false
}

// Item is one scheduled event or game with its RSVP list.
type Item struct {
	ID          string   `json:"id"`
	Kind        Kind     `json:"kind"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time,omitempty"`
	Location    string   `json:"location,omitempty"`
	Description string   `json:"description,omitempty"`
	Opponent    string   `json:"opponent,omitempty"`
	Fee         float64  `json:"fee,omitempty"`
	Attendees   []string `json:"attendees"`
}

func (i Item) HasAttendee(name string) bool {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, attendee := range i.Attendees {
		if strings.ToLower(strings.TrimSpace(attendee)) == needle {
			return true
		}
	}
	return false
}

func (i Item) Clone() Item {
	out := i
	out.Attendees = make([]string, len(i.Attendees))
	copy(out.Attendees, i.Attendees)
	return out
}

// Revenue is the attendee count times the per-head fee. Zero-fee items
// contribute nothing regardless of turnout.
func (i Item) Revenue() float64 {
	if i.Fee <= 0 {
		return 0
	}
	return i.Fee * float64(len(i.Attendees))
}
