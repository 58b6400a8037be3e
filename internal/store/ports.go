package store

import (
	"context"
	"errors"

	"budget/internal/core"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("item not found")
	ErrDuplicateID     = errors.New("duplicate item id")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// Ports used by the HTTP layer.
type (
	ItemReader interface {
		// List returns a copy of the collection in its current order.
		List(ctx context.Context) ([]core.BudgetItem, error)
		Get(ctx context.Context, id uuid.UUID) (core.BudgetItem, error)
	}

	ItemWriter interface {
		// Add appends item, generating an id when it has none.
		Add(ctx context.Context, item core.BudgetItem) (core.BudgetItem, error)
		// Update replaces the values of the item with the given id, keeping id and position.
		Update(ctx context.Context, id uuid.UUID, values core.BudgetItem) (core.BudgetItem, error)
		Remove(ctx context.Context, id uuid.UUID) error
		// RemoveAt deletes by positions in the full ordered list.
		RemoveAt(ctx context.Context, indices ...int) error
		// Move relocates the elements at from so they sit before the element
		// previously at offset to.
		Move(ctx context.Context, from []int, to int) error
	}

	Store interface {
		ItemReader
		ItemWriter
	}
)
