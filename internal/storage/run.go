package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/san-kum/bmisim/internal/config"
	"github.com/san-kum/bmisim/internal/experiment"
)

// ErrRunNotFound indicates an unknown run id.
var ErrRunNotFound = errors.New("storage: run not found")

type Store interface {
	Init(ctx context.Context) error
	Save(ctx context.Context, data *RunData) error
	List(ctx context.Context) ([]RunMetadata, error)
	Load(ctx context.Context, runID string) (*RunData, error)
	Close() error
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Timestamp  time.Time          `json:"timestamp"`
	TimeStep   float64            `json:"time_step"`
	Rows       int                `json:"rows"`
	Cols       int                `json:"cols"`
	RowSpacing float64            `json:"row_spacing"`
	ColSpacing float64            `json:"col_spacing"`
	Seed       int64              `json:"seed"`
	Steps      int                `json:"steps"`
	FinalTime  float64            `json:"final_time"`
	Metrics    map[string]float64 `json:"metrics"`
}

// RunData is everything kept for one run.
type RunData struct {
	Meta          RunMetadata          `json:"meta"`
	Times         []float64            `json:"times"`
	Series        map[string][]float64 `json:"series"`
	SnapshotTimes []float64            `json:"snapshot_times"`
	Snapshots     [][]float64          `json:"snapshots"`
}

// NewRunData packages a finished run under a fresh id.
func NewRunData(cfg *config.Config, res *experiment.Result) *RunData {
	final := 0.0
	if n := len(res.Times); n > 0 {
		final = res.Times[n-1]
	}
	return &RunData{
		Meta: RunMetadata{
			ID:         "run_" + uuid.NewString()[:8],
			Timestamp:  time.Now(),
			TimeStep:   res.TimeStep,
			Rows:       res.Rows,
			Cols:       res.Cols,
			RowSpacing: cfg.RowSpacing,
			ColSpacing: cfg.ColSpacing,
			Seed:       cfg.Seed,
			Steps:      res.StepsTaken,
			FinalTime:  final,
			Metrics:    res.Metrics,
		},
		Times:         res.Times,
		Series:        res.Series,
		SnapshotTimes: res.SnapshotTimes,
		Snapshots:     res.Snapshots,
	}
}

// Final returns the last snapshot, or nil.
func (d *RunData) Final() []float64 {
	if len(d.Snapshots) == 0 {
		return nil
	}
	return d.Snapshots[len(d.Snapshots)-1]
}

// NewStore opens a backend by name: "file" (default) or "sqlite".
func NewStore(kind, dataDir string) (Store, error) {
	switch kind {
	case "", "file":
		return New(dataDir), nil
	case "sqlite":
		return NewSQLiteStore(filepath.Join(dataDir, "runs.db")), nil
	default:
		return nil, fmt.Errorf("unsupported store backend: %s", kind)
	}
}

func ExportJSON(w io.Writer, data *RunData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}
