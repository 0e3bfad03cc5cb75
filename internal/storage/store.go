package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/pathreplay/internal/grid"
	"github.com/san-kum/pathreplay/internal/trace"
)

const (
	metadataFile = "metadata.json"
	runFile      = "run.json"
	ticksFile    = "ticks.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Algorithm     string             `json:"algorithm"`
	ObstacleCount int                `json:"obstacle_count"`
	Placed        int                `json:"obstacles_placed"`
	GridSize      int                `json:"grid_size"`
	Timestamp     time.Time          `json:"timestamp"`
	Steps         int                `json:"steps"`
	Reachable     bool               `json:"reachable"`
	Source        string             `json:"source,omitempty"`
	Metrics       map[string]float64 `json:"metrics"`
}

// runPayload mirrors the trace service response so a stored run can be
// decoded the same way as a live one.
type runPayload struct {
	Map             [][]int           `json:"map"`
	PathInformation []json.RawMessage `json:"pathInformation"`
}

// Save writes the initial grid, the trace and the per-tick counts of a run
// and returns its id.
func (s *Store) Save(meta RunMetadata, g *grid.Grid, t trace.Trace, ticks []TickRecord) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%d_%s", meta.Algorithm, time.Now().Unix(), uuid.NewString()[:8])
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	meta.GridSize = g.Size()
	meta.Placed = len(g.Obstacles())
	meta.Steps = t.Len()
	meta.Reachable = t.HasFinalPath()
	if meta.Metrics == nil {
		meta.Metrics = map[string]float64{}
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}

	steps, err := trace.Encode(t)
	if err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(runDir, runFile), runPayload{Map: g.Codes(), PathInformation: steps}); err != nil {
		return "", err
	}

	if err := writeTicks(filepath.Join(runDir, ticksFile), ticks); err != nil {
		return "", err
	}

	return meta.ID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeTicks(path string, ticks []TickRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(tickHeader); err != nil {
		return err
	}
	for _, tk := range ticks {
		if err := w.Write(tk.row()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadRun returns the initial grid and trace of a stored run.
func (s *Store) LoadRun(runID string) (*grid.Grid, trace.Trace, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, runFile))
	if err != nil {
		return nil, nil, err
	}

	var p runPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	g, err := grid.FromCodes(p.Map)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	t, err := trace.Parse(p.PathInformation)
	if err != nil {
		return nil, nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return g, t, nil
}

func (s *Store) LoadTicks(runID string) ([]TickRecord, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, ticksFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []TickRecord{}, nil
	}

	ticks := make([]TickRecord, 0, len(records)-1)
	for _, rec := range records[1:] {
		tk, ok := parseTick(rec)
		if !ok {
			continue
		}
		ticks = append(ticks, tk)
	}
	return ticks, nil
}

func parseTick(rec []string) (TickRecord, bool) {
	if len(rec) < len(tickHeader) {
		return TickRecord{}, false
	}
	vals := make([]int, len(tickHeader))
	for i := range tickHeader {
		v, err := strconv.Atoi(rec[i])
		if err != nil {
			return TickRecord{}, false
		}
		vals[i] = v
	}
	return TickRecord{
		Step:     vals[0],
		Visited:  vals[1],
		Frontier: vals[2],
		Blocked:  vals[3],
		Path:     vals[4],
	}, true
}
