package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"budget/internal/core"
	"budget/internal/store"

	"github.com/google/uuid"
)

// Store keeps the ordered list of budget items in process memory.
type Store struct {
	mu    sync.Mutex
	items []core.BudgetItem
}

// New returns a store holding a copy of items. Items without an id get one;
// invalid items and duplicate ids are skipped.
func New(items ...core.BudgetItem) *Store {
	s := &Store{}
	for _, it := range items {
		_, _ = s.add(it)
	}
	return s
}

// NewSeeded returns a store pre-filled with the demo items.
func NewSeeded() *Store {
	return New(core.Seed()...)
}

func (s *Store) Add(_ context.Context, item core.BudgetItem) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.add(item)
}

func (s *Store) add(item core.BudgetItem) (core.BudgetItem, error) {
	if err := item.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	} else if s.indexOf(item.ID) >= 0 {
		return core.BudgetItem{}, fmt.Errorf("%w: %s", store.ErrDuplicateID, item.ID)
	}
	item = item.Clone()
	s.items = append(s.items, item)
	return item.Clone(), nil
}

func (s *Store) Update(_ context.Context, id uuid.UUID, values core.BudgetItem) (core.BudgetItem, error) {
	if err := values.Validate(); err != nil {
		return core.BudgetItem{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.BudgetItem{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	values = values.Clone()
	values.ID = id
	s.items[i] = values
	return values.Clone(), nil
}

func (s *Store) Remove(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return nil
}

func (s *Store) RemoveAt(_ context.Context, indices ...int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	drop, err := s.indexSet(indices)
	if err != nil {
		return err
	}
	kept := s.items[:0]
	for i, it := range s.items {
		if _, ok := drop[i]; !ok {
			kept = append(kept, it)
		}
	}
	clear(s.items[len(kept):])
	s.items = kept
	return nil
}

func (s *Store) Move(_ context.Context, from []int, to int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if to < 0 || to > len(s.items) {
		return fmt.Errorf("%w: destination %d", store.ErrIndexOutOfRange, to)
	}
	moving, err := s.indexSet(from)
	if err != nil {
		return err
	}
	order := make([]int, 0, len(moving))
	for i := range moving {
		order = append(order, i)
	}
	sort.Ints(order)

	insertAt := to
	moved := make([]core.BudgetItem, 0, len(order))
	for _, i := range order {
		moved = append(moved, s.items[i])
		if i < to {
			insertAt--
		}
	}
	rest := make([]core.BudgetItem, 0, len(s.items)-len(moved))
	for i, it := range s.items {
		if _, ok := moving[i]; !ok {
			rest = append(rest, it)
		}
	}

	out := make([]core.BudgetItem, 0, len(s.items))
	out = append(out, rest[:insertAt]...)
	out = append(out, moved...)
	out = append(out, rest[insertAt:]...)
	s.items = out
	return nil
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.BudgetItem{}, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return s.items[i].Clone(), nil
}

func (s *Store) List(_ context.Context) ([]core.BudgetItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.BudgetItem, len(s.items))
	for i, it := range s.items {
		out[i] = it.Clone()
	}
	return out, nil
}

// Len returns the number of stored items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) indexOf(id uuid.UUID) int {
	for i, it := range s.items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// indexSet validates positions against the current list; duplicates collapse.
func (s *Store) indexSet(indices []int) (map[int]struct{}, error) {
	set := make(map[int]struct{}, len(indices))
	for _, i := range indices {
		if i < 0 || i >= len(s.items) {
			return nil, fmt.Errorf("%w: %d (len %d)", store.ErrIndexOutOfRange, i, len(s.items))
		}
		set[i] = struct{}{}
	}
	return set, nil
}

var _ store.Store = (*Store)(nil)
