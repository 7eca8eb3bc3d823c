// Package journal keeps the append-only content logs: editorial news, feed candidates,
// research notes, channel mentions and leads.
package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"apartinvest/server/internal/storage"
)

// Log is a JSON array document that only grows, except for explicit removals.
type Log[T any] struct {
	docs storage.Store
	name string
	mu   *sync.Mutex
}

func newLog[T any](docs storage.Store, name string, mu *sync.Mutex) *Log[T] {
	return &Log[T]{docs: docs, name: name, mu: mu}
}

// List returns every entry. A missing document is an empty log.
func (l *Log[T]) List(ctx context.Context) ([]T, error) {
	items := []T{}
	err := storage.ReadJSON(ctx, l.docs, l.name, &items)
	if errors.Is(err, storage.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Append adds items at the end, skipping those for which skip reports true against the
// current entries. It returns the items actually added.
func (l *Log[T]) Append(ctx context.Context, skip func(existing []T, item T) bool, items ...T) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.List(ctx)
	if err != nil {
		return nil, err
	}

	added := make([]T, 0, len(items))
	for _, item := range items {
		if skip != nil && skip(current, item) {
			continue
		}
		current = append(current, item)
		added = append(added, item)
	}
	if len(added) == 0 {
		return added, nil
	}

	if err := storage.WriteJSON(ctx, l.docs, l.name, current); err != nil {
		return nil, fmt.Errorf("failed to append to %s: %w", l.name, err)
	}
	return added, nil
}

// Remove deletes every entry matching match and returns how many were removed.
func (l *Log[T]) Remove(ctx context.Context, match func(T) bool) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	current, err := l.List(ctx)
	if err != nil {
		return 0, err
	}
	kept := current[:0]
	for _, item := range current {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	removed := len(current) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := storage.WriteJSON(ctx, l.docs, l.name, kept); err != nil {
		return 0, fmt.Errorf("failed to remove from %s: %w", l.name, err)
	}
	return removed, nil
}
