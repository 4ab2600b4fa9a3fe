package usecase

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/cbaclube/portal/internal/domain/roster"
	"github.com/cbaclube/portal/internal/platform/logging"
)

// ScopeRoster is the mutation scope shared by every confirmation-list write.
const ScopeRoster = "roster"

// ErrAlreadyConfirmed is a local short-circuit: confirming a name that is
// already on the list touches neither the snapshot nor the backend.
var ErrAlreadyConfirmed = fmt.Errorf("%w: player already confirmed", ErrInvalidInput)

type RosterService struct {
	repo      roster.Repository
	backend   RosterBackend
	mutations *MutationController
	logger    *logging.Logger
	drawPool  int
	teamSize  int
	intn      func(n int) int
}

func NewRosterService(repo roster.Repository, backend RosterBackend, mutations *MutationController, logger *logging.Logger, drawPool int) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	if drawPool <= 0 {
		drawPool = roster.DefaultDrawPool
	}
	return &RosterService{
		repo:      repo,
		backend:   backend,
		mutations: mutations,
		logger:    logger,
		drawPool:  drawPool,
		teamSize:  roster.TeamSize,
		intn:      rand.IntN,
	}
}

func (s *RosterService) List(ctx context.Context) (roster.List, error) {
	ctx, span := startUsecaseSpan(ctx, "RosterService.List")
	defer span.End()

	list, version, err := s.repo.Get(ctx)
	if err != nil {
		return roster.List{}, fmt.Errorf("get roster snapshot: %w", err)
	}
	if version > 0 {
		return list, nil
	}

	// Cold start: the snapshot has never been hydrated.
	if err := s.Refresh(ctx); err != nil {
		return roster.List{}, err
	}
	list, _, err = s.repo.Get(ctx)
	if err != nil {
		return roster.List{}, fmt.Errorf("get roster snapshot: %w", err)
	}
	return list, nil
}

// Confirm adds a player optimistically. The duplicate check is purely local;
// the original sheet tolerates duplicates badly enough that we never forward
// them.
func (s *RosterService) Confirm(ctx context.Context, name string) (roster.List, error) {
	ctx, span := startUsecaseSpan(ctx, "RosterService.Confirm")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return roster.List{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}

	err := s.mutations.Run(ctx, ScopeRoster,
		func(ctx context.Context) (func(context.Context), error) {
			list, _, err := s.repo.Get(ctx)
			if err != nil {
				return nil, fmt.Errorf("get roster snapshot: %w", err)
			}
			if list.Contains(name) {
				return nil, ErrAlreadyConfirmed
			}
			if _, err := s.repo.Add(ctx, name); err != nil {
				return nil, fmt.Errorf("add to roster snapshot: %w", err)
			}
			return func(ctx context.Context) {
				if _, err := s.repo.Remove(ctx, name); err != nil {
					s.logger.ErrorContext(ctx, "roster rollback failed", "player", name, "error", err)
				}
			}, nil
		},
		func(ctx context.Context) error {
			if err := s.backend.ConfirmPlayer(ctx, name); err != nil {
				return fmt.Errorf("confirm player: %w", err)
			}
			return nil
		},
	)
	if err != nil {
		return roster.List{}, err
	}

	list, _, err := s.repo.Get(ctx)
	if err != nil {
		return roster.List{}, fmt.Errorf("get roster snapshot: %w", err)
	}
	return list, nil
}

// Reset clears the whole confirmation list for the next game.
func (s *RosterService) Reset(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "RosterService.Reset")
	defer span.End()

	return s.mutations.Run(ctx, ScopeRoster,
		func(ctx context.Context) (func(context.Context), error) {
			previous, _, err := s.repo.Get(ctx)
			if err != nil {
				return nil, fmt.Errorf("get roster snapshot: %w", err)
			}
			if _, err := s.repo.Replace(ctx, roster.List{Players: []string{}}); err != nil {
				return nil, fmt.Errorf("clear roster snapshot: %w", err)
			}
			return func(ctx context.Context) {
				if _, err := s.repo.Replace(ctx, previous); err != nil {
					s.logger.ErrorContext(ctx, "roster reset rollback failed", "error", err)
				}
			}, nil
		},
		func(ctx context.Context) error {
			if err := s.backend.ResetConfirmations(ctx); err != nil {
				return fmt.Errorf("reset confirmations: %w", err)
			}
			return nil
		},
	)
}

// Refresh replaces the snapshot with the backend's list unless a mutation
// moved the version while the fetch was in flight. A skipped swap is not an
// error; the next reconciler tick retries.
func (s *RosterService) Refresh(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "RosterService.Refresh")
	defer span.End()

	if s.mutations.Busy(ScopeRoster) {
		s.logger.DebugContext(ctx, "roster refresh deferred, mutation in flight")
		return fmt.Errorf("%w: %s", ErrMutationInFlight, ScopeRoster)
	}

	_, version, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("get roster snapshot: %w", err)
	}

	list, err := s.backend.FetchConfirmations(ctx)
	if err != nil {
		return fmt.Errorf("fetch confirmations: %w", err)
	}

	swapped, err := s.repo.ReplaceIfVersion(ctx, list, version)
	if err != nil {
		return fmt.Errorf("swap roster snapshot: %w", err)
	}
	if !swapped {
		s.logger.DebugContext(ctx, "roster refresh discarded, snapshot moved during fetch")
	}
	return nil
}

// Draw shuffles the first drawPool confirmed players into two even teams.
func (s *RosterService) Draw(ctx context.Context) (roster.Teams, error) {
	ctx, span := startUsecaseSpan(ctx, "RosterService.Draw")
	defer span.End()

	list, err := s.List(ctx)
	if err != nil {
		return roster.Teams{}, err
	}
	if len(list.Players) < s.drawPool {
		return roster.Teams{}, fmt.Errorf("%w: draw needs %d confirmed players, have %d", ErrInvalidInput, s.drawPool, len(list.Players))
	}

	pool := make([]string, s.drawPool)
	copy(pool, list.Players[:s.drawPool])

	// Fisher-Yates over the eligible pool only.
	for i := len(pool) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return roster.Teams{
		White: pool[:s.teamSize],
		Black: pool[s.teamSize : s.teamSize*2],
	}, nil
}

// SaveTeams publishes a draw result to the teams tab.
func (s *RosterService) SaveTeams(ctx context.Context, teams roster.Teams) error {
	ctx, span := startUsecaseSpan(ctx, "RosterService.SaveTeams")
	defer span.End()

	if len(teams.White) != s.teamSize || len(teams.Black) != s.teamSize {
		return fmt.Errorf("%w: each team needs exactly %d players", ErrInvalidInput, s.teamSize)
	}
	if err := s.backend.SaveTeams(ctx, teams); err != nil {
		return fmt.Errorf("save teams: %w", err)
	}
	return nil
}
