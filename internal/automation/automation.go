package automation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/san-kum/pathreplay/internal/config"
	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/metrics"
	"github.com/san-kum/pathreplay/internal/provider"
	"github.com/san-kum/pathreplay/internal/replay"
	"github.com/san-kum/pathreplay/internal/storage"
	"github.com/san-kum/pathreplay/internal/trace"
	"gopkg.in/yaml.v3"
)

// Scenario defines a batch of trace requests to record
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single request in a scenario. Preset fills the fields
// left empty.
type ScenarioStep struct {
	Preset        string `yaml:"preset"`
	Algorithm     string `yaml:"algorithm"`
	ObstacleCount int    `yaml:"obstacle_count"`
	Repeat        int    `yaml:"repeat"`
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s: no steps", path)
	}

	return &scenario, nil
}

// resolve applies the step's preset and defaults.
func (s ScenarioStep) resolve() (provider.Algorithm, int, int, error) {
	alg, n := s.Algorithm, s.ObstacleCount
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return 0, 0, 0, fmt.Errorf("unknown preset %q", s.Preset)
		}
		if alg == "" {
			alg = p.Algorithm
		}
		if n == 0 {
			n = p.ObstacleCount
		}
	}
	if alg == "" {
		alg = "astar"
	}
	a, err := provider.ParseAlgorithm(alg)
	if err != nil {
		return 0, 0, 0, err
	}
	repeat := s.Repeat
	if repeat <= 0 {
		repeat = 1
	}
	return a, n, repeat, nil
}

// RunSummary describes one recorded run.
type RunSummary struct {
	RunID         string
	Algorithm     string
	ObstacleCount int
	Empty         bool
	Metrics       map[string]float64
}

// Replay applies every step of t to g and returns the final snapshot along
// with the metrics and per-tick counts it produced.
func Replay(g *grid.Grid, t trace.Trace) (replay.Snapshot, *metrics.Set, []storage.TickRecord, error) {
	set := metrics.DefaultSet()
	rec := storage.NewRecorder()
	e := replay.New(replay.WithObserver(set), replay.WithObserver(rec))
	if err := e.Load(g, t); err != nil {
		return replay.Snapshot{}, nil, nil, err
	}

	snap := e.Snapshot()
	for e.State() != replay.Completed && e.State() != replay.Idle {
		s, err := e.AdvanceOne()
		if err != nil {
			return s, set, rec.Ticks(), err
		}
		snap = s
	}
	return snap, set, rec.Ticks(), nil
}

// RunScenario requests, replays and stores every run in a scenario. An
// empty map is recorded in the summary and skipped; any other provider
// failure stops the batch.
func RunScenario(ctx context.Context, scenario *Scenario, p provider.Provider, st *storage.Store, out io.Writer) ([]RunSummary, error) {
	results := make([]RunSummary, 0, len(scenario.Steps))
	logger := slog.Default().With(slog.String("component", "automation"))

	for i, step := range scenario.Steps {
		alg, n, repeat, err := step.resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		for r := 0; r < repeat; r++ {
			if err := ctx.Err(); err != nil {
				return results, err
			}
			fmt.Fprintf(out, "Running step %d/%d (%d/%d): %s obstacles=%d\n", i+1, len(scenario.Steps), r+1, repeat, alg, n)

			g, t, err := p.RequestTrace(ctx, alg, n)
			if errors.Is(err, provider.ErrEmptyMap) {
				logger.Warn("empty map, skipping", slog.Int("step", i+1), slog.Any("error", err))
				results = append(results, RunSummary{Algorithm: alg.String(), ObstacleCount: n, Empty: true})
				continue
			}
			if err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}

			_, set, ticks, err := Replay(g, t)
			if err != nil {
				return results, fmt.Errorf("step %d replay: %w", i+1, err)
			}

			vals := set.Values()
			id, err := st.Save(storage.RunMetadata{
				Algorithm:     alg.String(),
				ObstacleCount: n,
				Source:        scenario.Name,
				Metrics:       vals,
			}, g, t, ticks)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}

			results = append(results, RunSummary{
				RunID:         id,
				Algorithm:     alg.String(),
				ObstacleCount: n,
				Metrics:       vals,
			})
		}
	}

	return results, nil
}

// AlgorithmStats aggregates the runs of one algorithm.
type AlgorithmStats struct {
	Algorithm   string
	Runs        int
	Empty       int
	Reachable   int
	MeanVisited float64
	MeanPath    float64
}

// Compare groups summaries by algorithm, ordered by name.
func Compare(results []RunSummary) []AlgorithmStats {
	byAlg := make(map[string]*AlgorithmStats)
	for _, r := range results {
		s, ok := byAlg[r.Algorithm]
		if !ok {
			s = &AlgorithmStats{Algorithm: r.Algorithm}
			byAlg[r.Algorithm] = s
		}
		if r.Empty {
			s.Empty++
			continue
		}
		s.Runs++
		s.MeanVisited += r.Metrics["visited"]
		s.MeanPath += r.Metrics["path_length"]
		if r.Metrics["path_length"] > 0 {
			s.Reachable++
		}
	}

	out := make([]AlgorithmStats, 0, len(byAlg))
	for _, s := range byAlg {
		if s.Runs > 0 {
			s.MeanVisited /= float64(s.Runs)
			s.MeanPath /= float64(s.Runs)
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Algorithm < out[j].Algorithm })
	return out
}
