package taxonomy

import (
	"context"
	"fmt"
	"sync/atomic"
)

// Provider loads a complete taxonomy snapshot from some backing source
// (file, graph database, service).
type Provider interface {
	Load(ctx context.Context) (*Snapshot, error)
}

// Holder owns the current snapshot and swaps it atomically on reload.
// Readers always see a complete, immutable snapshot.
type Holder struct {
	provider Provider
	current  atomic.Pointer[Snapshot]
}

// NewHolder creates a Holder and performs the initial load.
func NewHolder(ctx context.Context, provider Provider) (*Holder, error) {
	h := &Holder{provider: provider}
	if err := h.Reload(ctx); err != nil {
		return nil, fmt.Errorf("initial taxonomy load: %w", err)
	}
	return h, nil
}

// Reload loads a fresh snapshot and swaps it in. On error the previous
// snapshot stays in place.
func (h *Holder) Reload(ctx context.Context) error {
	snap, err := h.provider.Load(ctx)
	if err != nil {
		return err
	}
	h.current.Store(snap)
	return nil
}

// Current returns the active snapshot.
func (h *Holder) Current() *Snapshot {
	return h.current.Load()
}
