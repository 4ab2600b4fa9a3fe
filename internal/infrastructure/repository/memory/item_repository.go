package memory

import (
	"context"
	"sync"

	"github.com/cbaclube/portal/internal/domain/item"
)

// ItemRepository keeps per-kind item snapshots in memory, one version counter
// per kind so a refresh of games never races a mutation on events.
type ItemRepository struct {
	mu       sync.RWMutex
	items    map[item.Kind][]item.Item
	versions map[item.Kind]uint64
}

func NewItemRepository() *ItemRepository {
	return &ItemRepository{
		items:    make(map[item.Kind][]item.Item),
		versions: make(map[item.Kind]uint64),
	}
}

func (r *ItemRepository) List(_ context.Context, kind item.Kind) ([]item.Item, uint64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneItems(r.items[kind]), r.versions[kind], nil
}

func (r *ItemRepository) Get(_ context.Context, kind item.Kind, id string) (item.Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, it := range r.items[kind] {
		if it.ID == id {
			return it.Clone(), nil
		}
	}
	return item.Item{}, item.ErrNotFound
}

func (r *ItemRepository) Upsert(_ context.Context, it item.Item) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[it.Kind]
	replaced := false
	for index := range items {
		if items[index].ID == it.ID {
			items[index] = it.Clone()
			replaced = true
			break
		}
	}
	if !replaced {
		items = append(items, it.Clone())
	}
	r.items[it.Kind] = items
	r.versions[it.Kind]++
	return r.versions[it.Kind], nil
}

func (r *ItemRepository) Delete(_ context.Context, kind item.Kind, id string) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items[kind]
	kept := items[:0]
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return r.versions[kind], item.ErrNotFound
	}
	r.items[kind] = kept
	r.versions[kind]++
	return r.versions[kind], nil
}

func (r *ItemRepository) Replace(_ context.Context, kind item.Kind, items []item.Item) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[kind] = cloneItems(items)
	r.versions[kind]++
	return r.versions[kind], nil
}

func (r *ItemRepository) ReplaceIfVersion(_ context.Context, kind item.Kind, items []item.Item, version uint64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.versions[kind] != version {
		return false, nil
	}
	r.items[kind] = cloneItems(items)
	r.versions[kind]++
	return true, nil
}

func cloneItems(items []item.Item) []item.Item {
	out := make([]item.Item, 0, len(items))
	for _, it := range items {
		out = append(out, it.Clone())
	}
	return out
}
