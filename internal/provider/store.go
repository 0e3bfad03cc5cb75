package provider

import (
	"context"
	"fmt"

	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/storage"
	"github.com/san-kum/pathreplay/internal/trace"
)

// StoreProvider serves a recorded run. The algorithm and obstacle count of
// the request are ignored.
type StoreProvider struct {
	store *storage.Store
	runID string
}

func NewStoreProvider(st *storage.Store, runID string) *StoreProvider {
	return &StoreProvider{store: st, runID: runID}
}

func (p *StoreProvider) RequestTrace(ctx context.Context, _ Algorithm, _ int) (*grid.Grid, trace.Trace, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	g, t, err := p.store.LoadRun(p.runID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	return g, t, nil
}
