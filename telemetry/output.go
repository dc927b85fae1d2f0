package telemetry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/kestrelops/sightline/config"
)

// csvSink appends records to one CSV file, writing the header row on
// the first append only.
type csvSink struct {
	file      *os.File
	wroteHead bool
}

func (s *csvSink) open(dir, name string) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	s.file = f
	return nil
}

func (s *csvSink) close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

func appendCSV[T any](s *csvSink, record T) error {
	rows := []T{record}
	if s.wroteHead {
		return gocsv.MarshalWithoutHeaders(rows, s.file)
	}
	if err := gocsv.Marshal(rows, s.file); err != nil {
		return err
	}
	s.wroteHead = true
	return nil
}

// OutputManager writes run artifacts to a directory: coverage windows,
// frame timing, and visibility events as CSV, plus the effective
// configuration as YAML. A nil manager swallows every call, so callers
// never guard the disabled case.
type OutputManager struct {
	dir      string
	coverage csvSink
	perf     csvSink
	events   csvSink
}

// NewOutputManager creates the directory and its CSV files. An empty
// dir disables output and returns a nil manager.
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	sinks := []struct {
		sink *csvSink
		name string
	}{
		{&om.coverage, "coverage.csv"},
		{&om.perf, "perf.csv"},
		{&om.events, "events.csv"},
	}
	for _, s := range sinks {
		if err := s.sink.open(dir, s.name); err != nil {
			om.Close()
			return nil, err
		}
	}
	return om, nil
}

// WriteConfig saves the effective configuration next to the CSVs.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteCoverage appends a window record to coverage.csv.
func (om *OutputManager) WriteCoverage(stats CoverageStats) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(&om.coverage, stats); err != nil {
		return fmt.Errorf("writing coverage: %w", err)
	}
	return nil
}

// WritePerf appends a frame timing record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int64) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(&om.perf, stats.ToCSV(windowEnd)); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteEvent appends a visibility event to events.csv.
func (om *OutputManager) WriteEvent(e Event) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(&om.events, e); err != nil {
		return fmt.Errorf("writing event: %w", err)
	}
	return nil
}

// Dir reports where the CSV files land, empty when disabled.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close closes every output file.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	return errors.Join(om.coverage.close(), om.perf.close(), om.events.close())
}
