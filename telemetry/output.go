package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/hexflake/config"
	"github.com/pthm-cable/hexflake/hex"
	"github.com/pthm-cable/hexflake/render"
)

// csvLog is an append-only CSV file whose header goes out with the first row.
type csvLog struct {
	name          string
	f             *os.File
	headerWritten bool
}

func createCSVLog(dir, name string) (*csvLog, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog{name: name, f: f}, nil
}

// appendCSV writes rows to l, preceded by the header on first use.
func appendCSV[T any](l *csvLog, rows []T) error {
	var err error
	if l.headerWritten {
		err = gocsv.MarshalWithoutHeaders(rows, l.f)
	} else {
		err = gocsv.Marshal(rows, l.f)
	}
	if err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	l.headerWritten = true
	return nil
}

// OutputManager writes one run's files into a directory: CSV logs that grow
// per generation, plus the config, hall of fame, snowflakes and snapshots.
// A nil manager writes nothing.
type OutputManager struct {
	dir         string
	generations *csvLog
	perf        *csvLog
	bookmarks   *csvLog
}

// NewOutputManager creates dir and its CSV logs. Returns nil if dir is empty.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	for _, l := range []struct {
		name string
		dst  **csvLog
	}{
		{"generations.csv", &om.generations},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
	} {
		cl, err := createCSVLog(dir, l.name)
		if err != nil {
			om.Close()
			return nil, err
		}
		*l.dst = cl
	}
	return om, nil
}

// WriteConfig saves the effective configuration as config.yaml.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteGeneration appends a row to generations.csv.
func (om *OutputManager) WriteGeneration(stats GenerationStats) error {
	if om == nil {
		return nil
	}
	return appendCSV(om.generations, []GenerationStats{stats})
}

// WritePerf appends a row to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, generation int) error {
	if om == nil {
		return nil
	}
	return appendCSV(om.perf, []PerfStatsCSV{stats.ToCSV(generation)})
}

// WriteBookmark appends a row to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return appendCSV(om.bookmarks, []Bookmark{b})
}

// WriteHallOfFame replaces hall_of_fame.json.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}
	data, err := hof.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling hall of fame: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "hall_of_fame.json"), data, 0644); err != nil {
		return fmt.Errorf("writing hall_of_fame.json: %w", err)
	}
	return nil
}

// WriteSnowflakes renders grids into snowflakes.txt.
func (om *OutputManager) WriteSnowflakes(grids []hex.Grid) error {
	if om == nil {
		return nil
	}
	f, err := os.Create(filepath.Join(om.dir, "snowflakes.txt"))
	if err != nil {
		return fmt.Errorf("creating snowflakes.txt: %w", err)
	}
	if err := render.WriteAll(f, grids); err != nil {
		f.Close()
		return fmt.Errorf("writing snowflakes.txt: %w", err)
	}
	return f.Close()
}

// WriteSnapshot saves snap under snapshots/ and returns its path, or ""
// when output is disabled.
func (om *OutputManager) WriteSnapshot(snap *Snapshot) (string, error) {
	if om == nil || snap == nil {
		return "", nil
	}
	return SaveSnapshot(snap, filepath.Join(om.dir, "snapshots"))
}

// Dir returns the output directory, "" when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes the CSV logs.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	var errs []error
	for _, l := range []*csvLog{om.generations, om.perf, om.bookmarks} {
		if l != nil {
			errs = append(errs, l.f.Close())
		}
	}
	return errors.Join(errs...)
}
