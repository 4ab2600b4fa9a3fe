package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/cbaclube/portal/internal/domain/item"
	"github.com/cbaclube/portal/internal/platform/id"
	"github.com/cbaclube/portal/internal/platform/logging"
)

// RSVP operations forwarded to the backend verbatim.
const (
	RSVPConfirm  = "confirm"
	RSVPWithdraw = "withdraw"
)

func itemScope(kind item.Kind) string {
	return "items:" + string(kind)
}

// ItemInput is what handlers collect for a create or update.
type ItemInput struct {
	ID          string
	Kind        item.Kind
	Title       string
	Date        string
	Time        string
	Location    string
	Description string
	Opponent    string
	Fee         float64
}

// ItemCalendar bundles both kinds for the combined calendar view.
type ItemCalendar struct {
	Events []item.Item `json:"events"`
	Games  []item.Item `json:"games"`
}

type ItemService struct {
	repo      item.Repository
	backend   ItemBackend
	mutations *MutationController
	ids       id.Generator
	logger    *logging.Logger
}

func NewItemService(repo item.Repository, backend ItemBackend, mutations *MutationController, ids id.Generator, logger *logging.Logger) *ItemService {
	if logger == nil {
		logger = logging.Default()
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	return &ItemService{
		repo:      repo,
		backend:   backend,
		mutations: mutations,
		ids:       ids,
		logger:    logger,
	}
}

func (s *ItemService) List(ctx context.Context, kind item.Kind) ([]item.Item, error) {
	ctx, span := startUsecaseSpan(ctx, "ItemService.List")
	defer span.End()

	items, version, err := s.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s snapshot: %w", kind, err)
	}
	if version > 0 {
		return items, nil
	}

	if err := s.Refresh(ctx, kind); err != nil {
		return nil, err
	}
	items, _, err = s.repo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("list %s snapshot: %w", kind, err)
	}
	return items, nil
}

// Calendar fetches both kinds concurrently; either tab failing fails the
// whole call so the portal never renders a half-empty calendar as truth.
func (s *ItemService) Calendar(ctx context.Context) (ItemCalendar, error) {
	ctx, span := startUsecaseSpan(ctx, "ItemService.Calendar")
	defer span.End()

	var calendar ItemCalendar
	group := pool.New().WithErrors().WithContext(ctx)
	group.Go(func(ctx context.Context) error {
		events, err := s.List(ctx, item.KindEvent)
		if err != nil {
			return err
		}
		calendar.Events = events
		return nil
	})
	group.Go(func(ctx context.Context) error {
		games, err := s.List(ctx, item.KindGame)
		if err != nil {
			return err
		}
		calendar.Games = games
		return nil
	})
	if err := group.Wait(); err != nil {
		return ItemCalendar{}, err
	}
	return calendar, nil
}

func (s *ItemService) Get(ctx context.Context, kind item.Kind, itemID string) (item.Item, error) {
	ctx, span := startUsecaseSpan(ctx, "ItemService.Get")
	defer span.End()

	if _, err := s.List(ctx, kind); err != nil {
		return item.Item{}, err
	}
	found, err := s.repo.Get(ctx, kind, itemID)
	if err != nil {
		return item.Item{}, fmt.Errorf("%w: %s %s", ErrNotFound, kind, itemID)
	}
	return found, nil
}

// Save creates or updates one item optimistically.
func (s *ItemService) Save(ctx context.Context, input ItemInput) (item.Item, error) {
	ctx, span := startUsecaseSpan(ctx, "ItemService.Save")
	defer span.End()

	input.Title = strings.TrimSpace(input.Title)
	input.Date = strings.TrimSpace(input.Date)
	if input.Title == "" || input.Date == "" {
		return item.Item{}, fmt.Errorf("%w: title and date are required", ErrInvalidInput)
	}

	var saved item.Item
	err := s.mutations.Run(ctx, itemScope(input.Kind),
		func(ctx context.Context) (func(context.Context), error) {
			next := item.Item{
				ID:          strings.TrimSpace(input.ID),
				Kind:        input.Kind,
				Title:       input.Title,
				Date:        input.Date,
				Time:        strings.TrimSpace(input.Time),
				Location:    strings.TrimSpace(input.Location),
				Description: strings.TrimSpace(input.Description),
				Opponent:    strings.TrimSpace(input.Opponent),
				Fee:         input.Fee,
				Attendees:   []string{},
			}

			var previous *item.Item
			if next.ID == "" {
				generated, err := s.ids.NewID()
				if err != nil {
					return nil, fmt.Errorf("generate item id: %w", err)
				}
				next.ID = generated
			} else {
				existing, err := s.repo.Get(ctx, input.Kind, next.ID)
				if err == nil {
					previous = &existing
					next.Attendees = existing.Attendees
				}
			}

			if _, err := s.repo.Upsert(ctx, next); err != nil {
				return nil, fmt.Errorf("upsert %s snapshot: %w", input.Kind, err)
			}
			saved = next

			return func(ctx context.Context) {
				if previous != nil {
					if _, err := s.repo.Upsert(ctx, *previous); err != nil {
						s.logger.ErrorContext(ctx, "item save rollback failed", "id", next.ID, "error", err)
					}
					return
				}
				if _, err := s.repo.Delete(ctx, input.Kind, next.ID); err != nil {
					s.logger.ErrorContext(ctx, "item save rollback failed", "id", next.ID, "error", err)
				}
			}, nil
		},
		func(ctx context.Context) error {
			if err := s.backend.SaveItem(ctx, saved); err != nil {
				return fmt.Errorf("save %s: %w", input.Kind, err)
			}
			return nil
		},
	)
	if err != nil {
		return item.Item{}, err
	}
	return saved, nil
}

func (s *ItemService) Delete(ctx context.Context, kind item.Kind, itemID string) error {
	ctx, span := startUsecaseSpan(ctx, "ItemService.Delete")
	defer span.End()

	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return fmt.Errorf("%w: item id is required", ErrInvalidInput)
	}

	return s.mutations.Run(ctx, itemScope(kind),
		func(ctx context.Context) (func(context.Context), error) {
			previous, err := s.repo.Get(ctx, kind, itemID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, itemID)
			}
			if _, err := s.repo.Delete(ctx, kind, itemID); err != nil {
				return nil, fmt.Errorf("delete from %s snapshot: %w", kind, err)
			}
			return func(ctx context.Context) {
				if _, err := s.repo.Upsert(ctx, previous); err != nil {
					s.logger.ErrorContext(ctx, "item delete rollback failed", "id", itemID, "error", err)
				}
			}, nil
		},
		func(ctx context.Context) error {
			if err := s.backend.DeleteItem(ctx, kind, itemID); err != nil {
				return fmt.Errorf("delete %s: %w", kind, err)
			}
			return nil
		},
	)
}

// RSVP toggles one player's presence on an item. Confirming twice or
// withdrawing a name that is not on the list short-circuits locally.
func (s *ItemService) RSVP(ctx context.Context, kind item.Kind, itemID, player, op string) (item.Item, error) {
	ctx, span := startUsecaseSpan(ctx, "ItemService.RSVP")
	defer span.End()

	player = strings.TrimSpace(player)
	if player == "" {
		return item.Item{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if op != RSVPConfirm && op != RSVPWithdraw {
		return item.Item{}, fmt.Errorf("%w: unknown rsvp operation %q", ErrInvalidInput, op)
	}

	var updated item.Item
	err := s.mutations.Run(ctx, itemScope(kind),
		func(ctx context.Context) (func(context.Context), error) {
			previous, err := s.repo.Get(ctx, kind, itemID)
			if err != nil {
				return nil, fmt.Errorf("%w: %s %s", ErrNotFound, kind, itemID)
			}

			next := previous.Clone()
			switch op {
			case RSVPConfirm:
				if next.HasAttendee(player) {
					return nil, ErrAlreadyConfirmed
				}
				next.Attendees = append(next.Attendees, player)
			case RSVPWithdraw:
				if !next.HasAttendee(player) {
					return nil, fmt.Errorf("%w: %s is not attending", ErrNotFound, player)
				}
				kept := next.Attendees[:0]
				for _, attendee := range next.Attendees {
					if !strings.EqualFold(strings.TrimSpace(attendee), player) {
						kept = append(kept, attendee)
					}
				}
				next.Attendees = kept
			}

			if _, err := s.repo.Upsert(ctx, next); err != nil {
				return nil, fmt.Errorf("upsert %s snapshot: %w", kind, err)
			}
			updated = next

			return func(ctx context.Context) {
				if _, err := s.repo.Upsert(ctx, previous); err != nil {
					s.logger.ErrorContext(ctx, "rsvp rollback failed", "id", itemID, "error", err)
				}
			}, nil
		},
		func(ctx context.Context) error {
			if err := s.backend.UpdateRSVP(ctx, kind, itemID, player, op); err != nil {
				return fmt.Errorf("update rsvp: %w", err)
			}
			return nil
		},
	)
	if err != nil {
		return item.Item{}, err
	}
	return updated, nil
}

// Refresh replaces one kind's snapshot unless a mutation moved it while the
// fetch was in flight.
func (s *ItemService) Refresh(ctx context.Context, kind item.Kind) error {
	ctx, span := startUsecaseSpan(ctx, "ItemService.Refresh")
	defer span.End()

	if s.mutations.Busy(itemScope(kind)) {
		s.logger.DebugContext(ctx, "item refresh deferred, mutation in flight", "kind", kind)
		return fmt.Errorf("%w: %s", ErrMutationInFlight, itemScope(kind))
	}

	_, version, err := s.repo.List(ctx, kind)
	if err != nil {
		return fmt.Errorf("list %s snapshot: %w", kind, err)
	}

	items, err := s.backend.FetchItems(ctx, kind)
	if err != nil {
		return fmt.Errorf("fetch %s items: %w", kind, err)
	}

	swapped, err := s.repo.ReplaceIfVersion(ctx, kind, items, version)
	if err != nil {
		return fmt.Errorf("swap %s snapshot: %w", kind, err)
	}
	if !swapped {
		s.logger.DebugContext(ctx, "item refresh discarded, snapshot moved during fetch", "kind", kind)
	}
	return nil
}
