package storage

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

const (
	metadataFile  = "metadata.json"
	seriesFile    = "series.csv"
	snapshotsFile = "snapshots.csv"
)

// FileStore keeps one directory per run: metadata.json, series.csv with one
// row per step and snapshots.csv with one flattened field per row.
type FileStore struct {
	baseDir string
}

func New(baseDir string) *FileStore {
	return &FileStore{baseDir: baseDir}
}

func (s *FileStore) Init(ctx context.Context) error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) Save(ctx context.Context, data *RunData) error {
	runDir := filepath.Join(s.baseDir, data.Meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), data.Meta); err != nil {
		return err
	}
	if err := writeSeries(filepath.Join(runDir, seriesFile), data.Times, data.Series); err != nil {
		return err
	}
	return writeSnapshots(filepath.Join(runDir, snapshotsFile), data.SnapshotTimes, data.Snapshots)
}

// closeInto closes c and keeps its error in *err unless an earlier error is
// already there.
func closeInto(c io.Closer, err *error) {
	if cerr := c.Close(); cerr != nil && *err == nil {
		*err = cerr
	}
}

func writeJSON(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeInto(f, &err)

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func seriesNames(series map[string][]float64) []string {
	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func writeSeries(path string, times []float64, series map[string][]float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeInto(f, &err)

	w := csv.NewWriter(f)
	names := seriesNames(series)
	if err := w.Write(append([]string{"time"}, names...)); err != nil {
		return err
	}
	for i, t := range times {
		row := []string{formatFloat(t)}
		for _, name := range names {
			v := 0.0
			if i < len(series[name]) {
				v = series[name][i]
			}
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeSnapshots(path string, times []float64, fields [][]float64) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer closeInto(f, &err)

	w := csv.NewWriter(f)
	for i, field := range fields {
		row := make([]string, 0, len(field)+1)
		row = append(row, formatFloat(times[i]))
		for _, v := range field {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// formatFloat keeps full precision so snapshots reload bit for bit.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func (s *FileStore) List(ctx context.Context) ([]RunMetadata, error) {
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
		meta, err := s.loadMeta(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *FileStore) loadMeta(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *FileStore) Load(ctx context.Context, runID string) (*RunData, error) {
	meta, err := s.loadMeta(runID)
	if err != nil {
		return nil, err
	}
	data := &RunData{Meta: *meta, Series: make(map[string][]float64)}

	runDir := filepath.Join(s.baseDir, runID)
	if err := readSeries(filepath.Join(runDir, seriesFile), data); err != nil {
		return nil, err
	}
	if err := readSnapshots(filepath.Join(runDir, snapshotsFile), data); err != nil {
		return nil, err
	}
	return data, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil && err != io.EOF {
		return nil, err
	}
	return records, nil
}

func parseRow(record []string) ([]float64, error) {
	out := make([]float64, len(record))
	for i, s := range record {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func readSeries(path string, data *RunData) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return nil
	}

	names := records[0][1:]
	for _, record := range records[1:] {
		row, err := parseRow(record)
		if err != nil {
			return fmt.Errorf("series: %w", err)
		}
		data.Times = append(data.Times, row[0])
		for j, name := range names {
			if j+1 < len(row) {
				data.Series[name] = append(data.Series[name], row[j+1])
			}
		}
	}
	return nil
}

func readSnapshots(path string, data *RunData) error {
	records, err := readCSV(path)
	if err != nil {
		return err
	}
	for _, record := range records {
		row, err := parseRow(record)
		if err != nil {
			return fmt.Errorf("snapshots: %w", err)
		}
		if len(row) == 0 {
			continue
		}
		data.SnapshotTimes = append(data.SnapshotTimes, row[0])
		data.Snapshots = append(data.Snapshots, row[1:])
	}
	return nil
}
