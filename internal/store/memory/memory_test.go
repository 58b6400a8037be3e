package memory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"budget/internal/core"
	"budget/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func newItem(name string, p core.Priority) core.BudgetItem {
	return core.BudgetItem{
		Name:     name,
		Amount:   decimal.NewFromInt(10),
		Tags:     []core.Tag{core.Sport},
		Date:     core.NewDate(2024, 5, 1),
		Priority: p,
		ImageURL: core.DefaultImageURL,
	}
}

func namesOf(t *testing.T, s *Store) []string {
	t.Helper()
	items, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Name
	}
	return out
}

func seeded(names ...string) *Store {
	items := make([]core.BudgetItem, len(names))
	for i, n := range names {
		items[i] = newItem(n, core.Medium)
	}
	return New(items...)
}

func TestAddAssignsIDAndAppends(t *testing.T) {
	ctx := context.Background()
	s := seeded("a", "b")
	got, err := s.Add(ctx, newItem("c", core.High))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if got.ID == uuid.Nil {
		t.Fatalf("expected generated id")
	}
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(namesOf(t, s), want) {
		t.Fatalf("got %v want %v", namesOf(t, s), want)
	}
	if _, err := s.Add(ctx, got); !errors.Is(err, store.ErrDuplicateID) {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
	bad := newItem("", core.High)
	if _, err := s.Add(ctx, bad); !errors.Is(err, core.ErrEmptyName) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if s.Len() != 3 {
		t.Fatalf("failed adds must not mutate, len=%d", s.Len())
	}
}

func TestAddThenRemoveRestoresState(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded()
	before, _ := s.List(ctx)

	added, err := s.Add(ctx, newItem("temp", core.Low))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Remove(ctx, added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	after, _ := s.List(ctx)
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("collection changed after add+remove")
	}
	if err := s.Remove(ctx, added.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateIsIdempotentAndKeepsPosition(t *testing.T) {
	ctx := context.Background()
	s := seeded("a", "b", "c")
	items, _ := s.List(ctx)
	id := items[1].ID

	values := newItem("B", core.High)
	values.ID = uuid.New() // ignored
	first, err := s.Update(ctx, id, values)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if first.ID != id {
		t.Fatalf("update must preserve id")
	}
	once, _ := s.List(ctx)
	if _, err := s.Update(ctx, id, values); err != nil {
		t.Fatalf("second update: %v", err)
	}
	twice, _ := s.List(ctx)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("update is not idempotent")
	}
	if want := []string{"a", "B", "c"}; !reflect.DeepEqual(namesOf(t, s), want) {
		t.Fatalf("got %v want %v", namesOf(t, s), want)
	}

	if _, err := s.Update(ctx, uuid.New(), values); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if !reflect.DeepEqual(twice, mustList(t, s)) {
		t.Fatalf("failed update mutated the store")
	}
}

func mustList(t *testing.T, s *Store) []core.BudgetItem {
	t.Helper()
	items, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	return items
}

func TestRemoveAt(t *testing.T) {
	ctx := context.Background()
	s := seeded("a", "b", "c", "d")
	if err := s.RemoveAt(ctx, 3, 1, 1); err != nil {
		t.Fatalf("remove at: %v", err)
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(namesOf(t, s), want) {
		t.Fatalf("got %v want %v", namesOf(t, s), want)
	}
	if err := s.RemoveAt(ctx, 0, 5); !errors.Is(err, store.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
	if want := []string{"a", "c"}; !reflect.DeepEqual(namesOf(t, s), want) {
		t.Fatalf("out of range removal must not mutate, got %v", namesOf(t, s))
	}
}

func TestMove(t *testing.T) {
	cases := []struct {
		name string
		from []int
		to   int
		want []string
	}{
		{"first down one", []int{0}, 2, []string{"b", "a", "c", "d"}},
		{"last to top", []int{3}, 0, []string{"d", "a", "b", "c"}},
		{"to end", []int{1}, 4, []string{"a", "c", "d", "b"}},
		{"several", []int{0, 2}, 4, []string{"b", "d", "a", "c"}},
		{"noop", []int{1}, 1, []string{"a", "b", "c", "d"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := seeded("a", "b", "c", "d")
			before := mustList(t, s)
			if err := s.Move(context.Background(), tc.from, tc.to); err != nil {
				t.Fatalf("move: %v", err)
			}
			if got := namesOf(t, s); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v want %v", got, tc.want)
			}
			ids := map[uuid.UUID]bool{}
			for _, it := range before {
				ids[it.ID] = true
			}
			for _, it := range mustList(t, s) {
				if !ids[it.ID] {
					t.Fatalf("move changed identity")
				}
			}
		})
	}

	s := seeded("a", "b")
	if err := s.Move(context.Background(), []int{0}, 3); !errors.Is(err, store.ErrIndexOutOfRange) {
		t.Fatalf("expected out of range, got %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := seeded("a")
	items, _ := s.List(ctx)
	items[0].Name = "changed"
	items[0].Tags[0] = core.Amis
	again, _ := s.List(ctx)
	if again[0].Name != "a" || again[0].Tags[0] != core.Sport {
		t.Fatalf("list leaked internal state")
	}
}
