package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/panjf2000/ants/v2"

	"github.com/cbaclube/portal/internal/platform/logging"
)

// Section names one badge-carrying area of the portal. The reconciler tracks
// which sections changed since the client last looked at them.
type Section string

const (
	SectionAttendance Section = "attendance"
	SectionFinance    Section = "finance"
	SectionRoster     Section = "roster"
	SectionEvents     Section = "events"
	SectionGames      Section = "games"
)

func ParseSection(raw string) (Section, bool) {
	switch Section(raw) {
	case SectionAttendance, SectionFinance, SectionRoster, SectionEvents, SectionGames:
		return Section(raw), true
	}
	return "", false
}

// Refresher re-pulls one section's state from its source of truth.
type Refresher func(ctx context.Context) error

type ReconcilerConfig struct {
	Interval   time.Duration
	MaxWorkers int
	Timeout    time.Duration
}

// Reconciler polls the backend's change marker and fans section refreshes
// out when it moves. Sections whose refresh was deferred by an in-flight
// mutation are retried on the next tick even if the marker stays put.
type Reconciler struct {
	backend    ChangeBackend
	feed       FeedFetcher
	refreshers map[Section]Refresher
	logger     *logging.Logger
	interval   time.Duration
	maxWorkers int
	timeout    time.Duration

	scheduler gocron.Scheduler

	mu      sync.Mutex
	marker  string
	flags   map[Section]bool
	pending map[Section]bool
}

func NewReconciler(backend ChangeBackend, feed FeedFetcher, refreshers map[Section]Refresher, logger *logging.Logger, cfg ReconcilerConfig) *Reconciler {
	if logger == nil {
		logger = logging.Default()
	}
	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	maxWorkers := cfg.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = len(refreshers)
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = interval
	}

	return &Reconciler{
		backend:    backend,
		feed:       feed,
		refreshers: refreshers,
		logger:     logger,
		interval:   interval,
		maxWorkers: maxWorkers,
		timeout:    timeout,
		flags:      make(map[Section]bool),
		pending:    make(map[Section]bool),
	}
}

// Start schedules the polling job. The first tick runs immediately so a
// freshly booted portal converges without waiting a full interval.
func (r *Reconciler) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(r.tick),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("create poll job: %w", err)
	}

	r.scheduler = scheduler
	scheduler.Start()
	return nil
}

func (r *Reconciler) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	if err := r.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("stop scheduler: %w", err)
	}
	return nil
}

func (r *Reconciler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if _, err := r.CheckOnce(ctx); err != nil {
		r.logger.WarnContext(ctx, "reconcile tick failed", "error", err)
	}
}

// CheckOnce performs one poll cycle and reports whether the marker moved.
// The first observed marker only seeds the baseline.
func (r *Reconciler) CheckOnce(ctx context.Context) (bool, error) {
	marker, err := r.backend.LastUpdate(ctx)
	if err != nil {
		return false, fmt.Errorf("fetch change marker: %w", err)
	}

	r.mu.Lock()
	previous := r.marker
	r.marker = marker
	retry := make([]Section, 0, len(r.pending))
	for section := range r.pending {
		retry = append(retry, section)
	}
	r.mu.Unlock()

	changed := previous != "" && previous != marker
	switch {
	case changed:
		r.logger.InfoContext(ctx, "backend changed, refreshing sections", "marker", marker)
		r.refreshAll(ctx)
	case len(retry) > 0:
		r.refreshSections(ctx, retry, false)
	}
	return changed, nil
}

// Flags returns the changed-sections view, hiding the section the client is
// currently looking at.
func (r *Reconciler) Flags(active Section) map[Section]bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[Section]bool, len(r.flags))
	for section, flagged := range r.flags {
		if section == active {
			continue
		}
		if flagged {
			out[section] = true
		}
	}
	return out
}

// MarkSeen clears one section's badge.
func (r *Reconciler) MarkSeen(section Section) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.flags, section)
}

func (r *Reconciler) refreshAll(ctx context.Context) {
	if r.feed != nil {
		r.feed.Invalidate(ctx)
	}

	sections := make([]Section, 0, len(r.refreshers))
	for section := range r.refreshers {
		sections = append(sections, section)
	}
	r.refreshSections(ctx, sections, true)
}

func (r *Reconciler) refreshSections(ctx context.Context, sections []Section, flag bool) {
	workers, err := ants.NewPool(r.maxWorkers)
	if err != nil {
		r.logger.ErrorContext(ctx, "create refresh pool failed", "error", err)
		return
	}
	defer workers.Release()

	var wg sync.WaitGroup
	for _, section := range sections {
		refresher, ok := r.refreshers[section]
		if !ok {
			continue
		}
		section := section
		wg.Add(1)
		submitErr := workers.Submit(func() {
			defer wg.Done()
			r.runRefresh(ctx, section, refresher, flag)
		})
		if submitErr != nil {
			wg.Done()
			r.logger.ErrorContext(ctx, "submit refresh failed", "section", section, "error", submitErr)
		}
	}
	wg.Wait()
}

func (r *Reconciler) runRefresh(ctx context.Context, section Section, refresher Refresher, flag bool) {
	err := refresher(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	switch {
	case err == nil:
		delete(r.pending, section)
		if flag {
			r.flags[section] = true
		}
	case errors.Is(err, ErrMutationInFlight):
		// Retry once the mutation settles; the badge waits with it.
		r.pending[section] = true
		if flag {
			r.flags[section] = true
		}
	default:
		// The backend change already happened; the badge does not wait for
		// a successful refresh.
		r.pending[section] = true
		if flag {
			r.flags[section] = true
		}
		r.logger.WarnContext(ctx, "section refresh failed", "section", section, "error", err)
	}
}
