package automation

import (
	"context"
	"fmt"
	"sync"

	"github.com/san-kum/pathreplay/internal/storage"
)

// Ensemble replays stored runs concurrently.
type Ensemble struct {
	store   *storage.Store
	workers int
}

func NewEnsemble(st *storage.Store, workers int) *Ensemble {
	if workers < 1 {
		workers = 1
	}
	return &Ensemble{store: st, workers: workers}
}

// Run replays every run id and returns one summary per id, in order.
func (e *Ensemble) Run(ctx context.Context, ids []string) ([]RunSummary, error) {
	results := make([]RunSummary, len(ids))
	errs := make([]error, len(ids))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(e.workers, len(ids)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx], errs[idx] = e.replay(ids[idx])
			}
		}()
	}

	var ctxErr error
	for i := range ids {
		if ctxErr = ctx.Err(); ctxErr != nil {
			break
		}
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	if ctxErr != nil {
		return nil, ctxErr
	}
	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("run %s: %w", ids[i], err)
		}
	}
	return results, nil
}

func (e *Ensemble) replay(id string) (RunSummary, error) {
	meta, err := e.store.Load(id)
	if err != nil {
		return RunSummary{}, err
	}
	g, t, err := e.store.LoadRun(id)
	if err != nil {
		return RunSummary{}, err
	}
	_, set, _, err := Replay(g, t)
	if err != nil {
		return RunSummary{}, err
	}
	return RunSummary{
		RunID:         id,
		Algorithm:     meta.Algorithm,
		ObstacleCount: meta.ObstacleCount,
		Metrics:       set.Values(),
	}, nil
}
