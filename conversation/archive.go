package conversation

import (
	"context"
	"errors"
	"fmt"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/internal/store"
)

// ErrSessionNotFound is returned by Archive.Load for an unknown key.
var ErrSessionNotFound = store.ErrKeyNotFound

// Archive keeps transcripts by session key.
type Archive struct {
	adapter store.Adapter
}

// NewArchive creates an empty in-memory archive.
func NewArchive() *Archive {
	return &Archive{adapter: store.NewMemoryAdapter()}
}

// Save stores a snapshot of s under key, replacing any earlier one.
func (a *Archive) Save(ctx context.Context, key string, s *State) error {
	if err := store.Save(ctx, a.adapter, key, s.Messages()); err != nil {
		return fmt.Errorf("conversation: save %q: %w", key, err)
	}
	return nil
}

// Load returns the transcript stored under key.
func (a *Archive) Load(ctx context.Context, key string) (*State, error) {
	msgs, err := store.Load[[]ai.Message](ctx, a.adapter, key)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, fmt.Errorf("conversation: session %q: %w", key, ErrSessionNotFound)
		}
		return nil, fmt.Errorf("conversation: load %q: %w", key, err)
	}
	return New(msgs...)
}

// Sessions lists the stored keys in sorted order.
func (a *Archive) Sessions(ctx context.Context) ([]string, error) {
	return a.adapter.Keys(ctx)
}

// Delete removes a session. Deleting an unknown key is not an error.
func (a *Archive) Delete(ctx context.Context, key string) error {
	return a.adapter.Delete(ctx, key)
}
