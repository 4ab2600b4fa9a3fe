package usecase

import (
	"context"

	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/domain/roster"
)

// FeedFetcher pulls one published-to-web spreadsheet tab as raw CSV records.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([][]string, error)
	Invalidate(ctx context.Context)
}

// RosterBackend is the slice of the script API the roster flows need.
type RosterBackend interface {
	FetchConfirmations(ctx context.Context) (roster.List, error)
	ConfirmPlayer(ctx context.Context, name string) error
	ResetConfirmations(ctx context.Context) error
	SaveTeams(ctx context.Context, teams roster.Teams) error
}

// ItemBackend covers the event and game tabs.
type ItemBackend interface {
	FetchItems(ctx context.Context, kind item.Kind) ([]item.Item, error)
	SaveItem(ctx context.Context, it item.Item) error
	DeleteItem(ctx context.Context, kind item.Kind, id string) error
	UpdateRSVP(ctx context.Context, kind item.Kind, id, player, op string) error
}

// ChangeBackend exposes the backend's change marker.
type ChangeBackend interface {
	LastUpdate(ctx context.Context) (string, error)
}

// AuthBackend passes credentials through to the script, which owns the user
// sheet.
type AuthBackend interface {
	Login(ctx context.Context, username, password string) (Session, error)
	ResetPassword(ctx context.Context, email string) error
}

// AdminBackend covers the maintenance actions.
type AdminBackend interface {
	SendFinanceReports(ctx context.Context) error
	ClearCache(ctx context.Context) error
}

// Session is what a successful login yields. The token is opaque; the portal
// never inspects it.
type Session struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Token    string `json:"token"`
}
