package telemetry

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sort"

	"github.com/pthm-cable/hexflake/automaton"
	"github.com/pthm-cable/hexflake/evolve"
	"github.com/pthm-cable/hexflake/fitness"
	"github.com/pthm-cable/hexflake/rng"
)

// HallEntry is a rule table that grew a well-scoring snowflake.
type HallEntry struct {
	Table      automaton.Table
	Score      float64
	Generation int
	Metrics    fitness.Metrics
}

// HallOfFame keeps the best rule tables seen across a run so a later run
// can resume from them.
type HallOfFame struct {
	entries []HallEntry
	maxSize int
}

// NewHallOfFame creates a hall holding at most maxSize tables.
func NewHallOfFame(maxSize int) *HallOfFame {
	return &HallOfFame{
		entries: make([]HallEntry, 0, max(maxSize, 0)),
		maxSize: maxSize,
	}
}

// Consider offers a candidate for entry. Zero scores never qualify. A table
// already in the hall keeps its best score. Returns true if the hall changed.
func (hof *HallOfFame) Consider(c evolve.Candidate, generation int) bool {
	if hof.maxSize <= 0 || c.Score() <= 0 {
		return false
	}

	if i := hof.indexOf(c.Table); i >= 0 {
		if hof.entries[i].Score >= c.Score() {
			return false
		}
		hof.entries = slices.Delete(hof.entries, i, i+1)
	}

	entry := HallEntry{
		Table:      c.Table.Clone(),
		Score:      c.Score(),
		Generation: generation,
		Metrics:    c.Metrics,
	}
	hof.entries = hof.insertEntry(hof.entries, entry)
	return hof.indexOf(entry.Table) >= 0
}

// ConsiderAll offers every survivor of a generation and returns how many
// changed the hall.
func (hof *HallOfFame) ConsiderAll(survivors []evolve.Candidate, generation int) int {
	added := 0
	for _, c := range survivors {
		if hof.Consider(c, generation) {
			added++
		}
	}
	return added
}

// insertEntry adds an entry to the hall, maintaining sorted order by score.
// If the hall is full, the lowest-score entry is removed.
func (hof *HallOfFame) insertEntry(hall []HallEntry, entry HallEntry) []HallEntry {
	// Find insertion point (sorted descending, earlier entries win ties)
	idx := sort.Search(len(hall), func(i int) bool {
		return hall[i].Score < entry.Score
	})

	// If hall is full and entry would be last (lowest), skip it
	if len(hall) >= hof.maxSize && idx >= hof.maxSize {
		return hall
	}

	hall = slices.Insert(hall, idx, entry)

	// Trim if over capacity
	if len(hall) > hof.maxSize {
		hall = hall[:hof.maxSize]
	}

	return hall
}

func (hof *HallOfFame) indexOf(t automaton.Table) int {
	return slices.IndexFunc(hof.entries, func(e HallEntry) bool {
		return slices.EqualFunc(e.Table, t, slices.Equal[[]int])
	})
}

// Size returns the number of entries.
func (hof *HallOfFame) Size() int {
	return len(hof.entries)
}

// TopScore returns the highest score in the hall, 0 when empty.
func (hof *HallOfFame) TopScore() float64 {
	if len(hof.entries) == 0 {
		return 0
	}
	return hof.entries[0].Score
}

// Entries returns the hall best first. The slice is shared.
func (hof *HallOfFame) Entries() []HallEntry {
	return hof.entries
}

// Tables returns copies of the hall's tables, best first, keeping only those
// with numStates states (all of them when numStates is 0).
func (hof *HallOfFame) Tables(numStates int) []automaton.Table {
	out := make([]automaton.Table, 0, len(hof.entries))
	for _, e := range hof.entries {
		if numStates > 0 && e.Table.NumStates() != numStates {
			continue
		}
		out = append(out, e.Table.Clone())
	}
	return out
}

// Sample selects a table with numStates states by tournament selection and
// returns a copy. Returns nil if no such table is in the hall.
func (hof *HallOfFame) Sample(src rng.Source, numStates int) automaton.Table {
	pool := hof.Tables(numStates)
	if len(pool) == 0 {
		return nil
	}

	// Tournament selection with k=3. pool is best first, so the lowest
	// index drawn wins.
	const tournamentSize = 3
	best := len(pool)
	for range tournamentSize {
		best = min(best, src.Intn(len(pool)))
	}
	return pool[best]
}

// SamplePopulation draws n tables by repeated tournament selection.
func (hof *HallOfFame) SamplePopulation(src rng.Source, n, numStates int) []automaton.Table {
	var out []automaton.Table
	for range n {
		t := hof.Sample(src, numStates)
		if t == nil {
			break
		}
		out = append(out, t)
	}
	return out
}

// hallEntryJSON is the JSON-serializable representation of a hall entry.
type hallEntryJSON struct {
	Score         float64 `json:"score"`
	Generation    int     `json:"generation"`
	NumStates     int     `json:"num_states"`
	Connectedness float64 `json:"connectedness"`
	Radius        int     `json:"radius"`
	Density       float64 `json:"density"`
	Airiness      float64 `json:"airiness"`
	Cragginess    float64 `json:"cragginess"`
	Spikiness     float64 `json:"spikiness"`
	Table         [][]int `json:"table"`
}

type hallOfFameJSON struct {
	MaxSize int             `json:"max_size"`
	Entries []hallEntryJSON `json:"entries"`
}

// MarshalJSON serializes the hall of fame to JSON.
func (hof *HallOfFame) MarshalJSON() ([]byte, error) {
	export := hallOfFameJSON{
		MaxSize: hof.maxSize,
		Entries: make([]hallEntryJSON, len(hof.entries)),
	}
	for i, e := range hof.entries {
		export.Entries[i] = hallEntryJSON{
			Score:         e.Score,
			Generation:    e.Generation,
			NumStates:     e.Table.NumStates(),
			Connectedness: e.Metrics.Connectedness,
			Radius:        e.Metrics.Radius,
			Density:       e.Metrics.Density,
			Airiness:      e.Metrics.Airiness,
			Cragginess:    e.Metrics.Cragginess,
			Spikiness:     e.Metrics.Spikiness,
			Table:         e.Table,
		}
	}
	return json.MarshalIndent(export, "", "  ")
}

// LoadHallOfFameFromFile reads a hall of fame JSON file. Entries whose table
// is malformed are skipped with a warning.
func LoadHallOfFameFromFile(path string) (*HallOfFame, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hall of fame: %w", err)
	}

	var raw hallOfFameJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing hall of fame JSON: %w", err)
	}

	maxSize := max(raw.MaxSize, len(raw.Entries))
	hof := NewHallOfFame(maxSize)

	for i, ej := range raw.Entries {
		table := automaton.Table(ej.Table)
		if err := table.Validate(); err != nil {
			slog.Warn("hall_of_fame_load: bad table, skipping", "entry", i, "err", err)
			continue
		}
		entry := HallEntry{
			Table:      table,
			Score:      ej.Score,
			Generation: ej.Generation,
			Metrics: fitness.Metrics{
				Connectedness: ej.Connectedness,
				Radius:        ej.Radius,
				Density:       ej.Density,
				Airiness:      ej.Airiness,
				Cragginess:    ej.Cragginess,
				Spikiness:     ej.Spikiness,
				Score:         ej.Score,
			},
		}
		hof.entries = hof.insertEntry(hof.entries, entry)
	}

	return hof, nil
}
