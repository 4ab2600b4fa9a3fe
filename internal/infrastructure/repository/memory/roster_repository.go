package memory

import (
	"context"
	"sync"

	"github.com/cbaclube/portal/internal/domain/roster"
)

// RosterRepository keeps the confirmation list snapshot in memory. The
// backend spreadsheet stays the source of truth; this is only the serving
// copy the reconciler keeps fresh.
type RosterRepository struct {
	mu      sync.RWMutex
	list    roster.List
	version uint64
}

func NewRosterRepository() *RosterRepository {
	return &RosterRepository{list: roster.List{Players: []string{}}}
}

func (r *RosterRepository) Get(_ context.Context) (roster.List, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.list.Clone(), r.version, nil
}

func (r *RosterRepository) Add(_ context.Context, name string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list.Players = append(r.list.Players, name)
	r.version++
	return r.version, nil
}

func (r *RosterRepository) Remove(_ context.Context, name string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.list.Players[:0]
	for _, player := range r.list.Players {
		if player != name {
			kept = append(kept, player)
		}
	}
	r.list.Players = kept
	r.version++
	return r.version, nil
}

func (r *RosterRepository) Replace(_ context.Context, list roster.List) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = list.Clone()
	r.version++
	return r.version, nil
}

func (r *RosterRepository) ReplaceIfVersion(_ context.Context, list roster.List, version uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.version != version {
		return false, nil
	}
	r.list = list.Clone()
	r.version++
	return true, nil
}
