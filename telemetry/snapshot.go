package telemetry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/evolve"
	"github.com/pthm-cable/hexflake/hex"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds a generation's outcome for replay: the settings and seed
// that produced it, the grids to redraw and the tables to resume from.
type Snapshot struct {
	Version int    `json:"version"`
	RNGSeed uint64 `json:"rng_seed"`

	Settings evolve.Settings `json:"settings"`

	Generation int     `json:"generation"`
	MeanScore  float64 `json:"mean_score"`

	Snowflakes [][]CellState   `json:"snowflakes"`
	Survivors  []SurvivorState `json:"survivors"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// CellState is one live cell of a grid.
type CellState struct {
	X     int `json:"x"`
	Y     int `json:"y"`
	Z     int `json:"z"`
	State int `json:"state"`
}

// SurvivorState is one ranked rule table with the score of the grid it grew.
type SurvivorState struct {
	Score float64 `json:"score"`
	Table [][]int `json:"table"`
}

// NewSnapshot captures the top num_output_snowflakes grids and all survivors
// of a generation, best first.
func NewSnapshot(seed uint64, settings evolve.Settings, generation int, survivors []evolve.Candidate) *Snapshot {
	snap := &Snapshot{
		Version:    SnapshotVersion,
		RNGSeed:    seed,
		Settings:   settings,
		Generation: generation,
		MeanScore:  evolve.MeanScore(survivors),
		Survivors:  make([]SurvivorState, len(survivors)),
	}
	for i, c := range survivors {
		snap.Survivors[i] = SurvivorState{Score: c.Score(), Table: c.Table.Clone()}
	}
	n := min(settings.NumOutputSnowflakes, len(survivors))
	snap.Snowflakes = make([][]CellState, n)
	for i, c := range survivors[:n] {
		snap.Snowflakes[i] = EncodeGrid(c.Grid)
	}
	return snap
}

// EncodeGrid lists g's cells in coordinate order.
func EncodeGrid(g hex.Grid) []CellState {
	cells := make([]CellState, 0, len(g))
	for _, c := range hex.Keys(g) {
		cells = append(cells, CellState{X: c.X, Y: c.Y, Z: c.Z, State: g[c]})
	}
	return cells
}

// DecodeGrid rebuilds a grid from its cell list. Invalid coordinates and
// dead cells are rejected.
func DecodeGrid(cells []CellState) (hex.Grid, error) {
	g := make(hex.Grid, len(cells))
	for _, cs := range cells {
		c := hex.Coord{X: cs.X, Y: cs.Y, Z: cs.Z}
		if !c.Valid() {
			return nil, fmt.Errorf("cell %v is not a cube coordinate", c)
		}
		if cs.State <= 0 {
			return nil, fmt.Errorf("cell %v has state %d", c, cs.State)
		}
		g[c] = cs.State
	}
	return g, nil
}

// Grids decodes every stored snowflake.
func (s *Snapshot) Grids() ([]hex.Grid, error) {
	grids := make([]hex.Grid, len(s.Snowflakes))
	for i, cells := range s.Snowflakes {
		g, err := DecodeGrid(cells)
		if err != nil {
			return nil, fmt.Errorf("snowflake %d: %w", i, err)
		}
		grids[i] = g
	}
	return grids, nil
}

// Tables returns the survivors' rule tables, best first.
func (s *Snapshot) Tables() ([]automaton.Table, error) {
	tables := make([]automaton.Table, len(s.Survivors))
	for i, sv := range s.Survivors {
		t := automaton.Table(sv.Table)
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("survivor %d: %w", i, err)
		}
		tables[i] = t
	}
	return tables, nil
}

// SaveSnapshot writes a snapshot to disk.
// Returns the filepath where it was saved.
func SaveSnapshot(snapshot *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create snapshot dir: %w", err)
	}

	// Build filename
	name := fmt.Sprintf("snapshot_gen%d", snapshot.Generation)
	if snapshot.Bookmark != nil {
		// Sanitize bookmark type for filename
		sanitized := strings.ReplaceAll(string(snapshot.Bookmark.Type), " ", "_")
		name = fmt.Sprintf("snapshot_gen%d_%s", snapshot.Generation, sanitized)
	}
	name += ".json"

	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}

	return path, nil
}

// LoadSnapshot reads a snapshot from disk.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if snapshot.Version != SnapshotVersion {
		return nil, fmt.Errorf("snapshot version %d, want %d", snapshot.Version, SnapshotVersion)
	}

	return &snapshot, nil
}
