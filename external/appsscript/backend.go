package appsscript

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	sonic "github.com/bytedance/sonic"

	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/domain/roster"
	"github.com/cbaclube/portal/internal/usecase"
)

// Wire actions understood by the deployed script.
const (
	actionGetConfirmations  = "getConfirmations"
	actionConfirmPlayer     = "confirmPlayer"
	actionResetConfirmation = "resetConfirmations"
	actionSaveTeams         = "saveTeams"
	actionGetEvents         = "getAllEvents"
	actionGetGames          = "getAllGames"
	actionSaveEvent         = "saveEvent"
	actionSaveGame          = "saveGame"
	actionDeleteEvent       = "deleteEvent"
	actionDeleteGame        = "deleteGame"
	actionUpdateAttendance  = "updateAttendance"
	actionGetLastUpdate     = "getLastUpdate"
	actionLogin             = "loginUser"
	actionResetPassword     = "resetPassword"
	actionSendReports       = "sendFinanceReports"
	actionClearCache        = "clearCache"
)

type confirmationsPayload struct {
	Players []string `json:"players"`
}

type itemsPayload struct {
	Events []wireItem `json:"events"`
	Games  []wireItem `json:"games"`
}

type wireItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	Opponent    string   `json:"opponent"`
	Fee         float64  `json:"fee"`
	Attendees   []string `json:"attendees"`
}

type lastUpdatePayload struct {
	Timestamp string `json:"timestamp"`
}

type loginPayload struct {
	Role  string `json:"role"`
	Token string `json:"token"`
}

func (c *Client) FetchConfirmations(ctx context.Context) (roster.List, error) {
	result, err := c.Get(ctx, actionGetConfirmations, nil)
	if err != nil {
		return roster.List{}, err
	}

	var payload confirmationsPayload
	if err := sonic.Unmarshal(result.Body, &payload); err != nil {
		return roster.List{}, fmt.Errorf("%w: decode confirmations: %v", usecase.ErrDataShape, err)
	}
	if payload.Players == nil {
		payload.Players = []string{}
	}
	return roster.List{Players: payload.Players}, nil
}

func (c *Client) ConfirmPlayer(ctx context.Context, name string) error {
	payload := url.Values{}
	payload.Set("player", name)
	_, err := c.Post(ctx, actionConfirmPlayer, payload)
	return err
}

func (c *Client) ResetConfirmations(ctx context.Context) error {
	_, err := c.Post(ctx, actionResetConfirmation, nil)
	return err
}

func (c *Client) SaveTeams(ctx context.Context, teams roster.Teams) error {
	payload := url.Values{}
	payload.Set("white", strings.Join(teams.White, ","))
	payload.Set("black", strings.Join(teams.Black, ","))
	_, err := c.Post(ctx, actionSaveTeams, payload)
	return err
}

func (c *Client) FetchItems(ctx context.Context, kind item.Kind) ([]item.Item, error) {
	action := actionGetEvents
	if kind == item.KindGame {
		action = actionGetGames
	}
	result, err := c.Get(ctx, action, nil)
	if err != nil {
		return nil, err
	}

	var payload itemsPayload
	if err := sonic.Unmarshal(result.Body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s items: %v", usecase.ErrDataShape, kind, err)
	}
	wire := payload.Events
	if kind == item.KindGame {
		wire = payload.Games
	}

	items := make([]item.Item, 0, len(wire))
	for _, raw := range wire {
		items = append(items, mapWireItem(kind, raw))
	}
	return items, nil
}

func (c *Client) SaveItem(ctx context.Context, it item.Item) error {
	action := actionSaveEvent
	if it.Kind == item.KindGame {
		action = actionSaveGame
	}

	payload := url.Values{}
	payload.Set("id", it.ID)
	payload.Set("title", it.Title)
	payload.Set("date", it.Date)
	payload.Set("time", it.Time)
	payload.Set("location", it.Location)
	payload.Set("description", it.Description)
	payload.Set("opponent", it.Opponent)
	payload.Set("fee", fmt.Sprintf("%.2f", it.Fee))
	_, err := c.Post(ctx, action, payload)
	return err
}

func (c *Client) DeleteItem(ctx context.Context, kind item.Kind, id string) error {
	action := actionDeleteEvent
	if kind == item.KindGame {
		action = actionDeleteGame
	}
	payload := url.Values{}
	payload.Set("id", id)
	_, err := c.Post(ctx, action, payload)
	return err
}

// UpdateRSVP flips one player's presence on an item. op is "confirm" or
// "withdraw", passed through to the script untouched.
func (c *Client) UpdateRSVP(ctx context.Context, kind item.Kind, id, player, op string) error {
	payload := url.Values{}
	payload.Set("kind", string(kind))
	payload.Set("id", id)
	payload.Set("player", player)
	payload.Set("operation", op)
	_, err := c.Post(ctx, actionUpdateAttendance, payload)
	return err
}

// LastUpdate returns the backend's opaque change marker. Any difference from
// the previously seen value means some tab changed.
func (c *Client) LastUpdate(ctx context.Context) (string, error) {
	result, err := c.Get(ctx, actionGetLastUpdate, nil)
	if err != nil {
		return "", err
	}

	var payload lastUpdatePayload
	if err := sonic.Unmarshal(result.Body, &payload); err != nil {
		return "", fmt.Errorf("%w: decode last update: %v", usecase.ErrDataShape, err)
	}
	if payload.Timestamp == "" {
		return "", fmt.Errorf("%w: last update marker is empty", usecase.ErrDataShape)
	}
	return payload.Timestamp, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (usecase.Session, error) {
	payload := url.Values{}
	payload.Set("username", username)
	payload.Set("password", password)
	result, err := c.Post(ctx, actionLogin, payload)
	if err != nil {
		return usecase.Session{}, err
	}

	var session loginPayload
	if err := sonic.Unmarshal(result.Body, &session); err != nil {
		return usecase.Session{}, fmt.Errorf("%w: decode login response: %v", usecase.ErrDataShape, err)
	}
	return usecase.Session{Username: username, Role: session.Role, Token: session.Token}, nil
}

func (c *Client) ResetPassword(ctx context.Context, email string) error {
	payload := url.Values{}
	payload.Set("email", email)
	_, err := c.Post(ctx, actionResetPassword, payload)
	return err
}

func (c *Client) SendFinanceReports(ctx context.Context) error {
	_, err := c.Post(ctx, actionSendReports, nil)
	return err
}

func (c *Client) ClearCache(ctx context.Context) error {
	_, err := c.Post(ctx, actionClearCache, nil)
	return err
}

func mapWireItem(kind item.Kind, raw wireItem) item.Item {
	attendees := raw.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return item.Item{
		ID:          raw.ID,
		Kind:        kind,
		Title:       raw.Title,
		Date:        raw.Date,
		Time:        raw.Time,
		Location:    raw.Location,
		Description: raw.Description,
		Opponent:    raw.Opponent,
		Fee:         raw.Fee,
		Attendees:   attendees,
	}
}
