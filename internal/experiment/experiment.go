package experiment

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/bmisim/internal/bmi"
	"github.com/san-kum/bmisim/internal/metrics"
)

type Metric interface {
	Name() string
	Observe(f metrics.Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(f metrics.Frame)
}

// Config controls a run. When Until is positive the model is stepped until
// its time reaches Until and Steps is ignored.
type Config struct {
	Steps         int
	Until         float64
	SnapshotEvery int
}

type Result struct {
	Rows, Cols    int
	TimeStep      float64
	StepsTaken    int
	Times         []float64
	Snapshots     [][]float64
	SnapshotTimes []float64
	Metrics       map[string]float64
	Series        map[string][]float64
}

// Final returns the last stored snapshot, or nil.
func (r *Result) Final() []float64 {
	if len(r.Snapshots) == 0 {
		return nil
	}
	return r.Snapshots[len(r.Snapshots)-1]
}

type Experiment struct {
	model     bmi.BMI
	cfg       Config
	metrics   []Metric
	observers []Observer

	// untilSteps caps the loop when stepping to cfg.Until.
	untilSteps int
}

func New(model bmi.BMI, cfg Config) *Experiment {
	return &Experiment{
		model:     model,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (e *Experiment) AddMetric(m Metric)     { e.metrics = append(e.metrics, m) }
func (e *Experiment) AddObserver(o Observer) { e.observers = append(e.observers, o) }

func (e *Experiment) validate() error {
	if e.cfg.Steps < 0 {
		return fmt.Errorf("steps must not be negative, got %d", e.cfg.Steps)
	}
	if e.cfg.Until < 0 || math.IsNaN(e.cfg.Until) || math.IsInf(e.cfg.Until, 0) {
		return fmt.Errorf("%w: until must be finite and not negative, got %g", bmi.ErrTimeRange, e.cfg.Until)
	}
	if e.cfg.SnapshotEvery < 0 {
		return fmt.Errorf("snapshot interval must not be negative, got %d", e.cfg.SnapshotEvery)
	}
	return nil
}

// Run steps the model, feeding every frame to the metrics and observers.
// The initial frame is always observed and stored; later frames are stored
// every SnapshotEvery steps and the last one is always kept.
func (e *Experiment) Run(ctx context.Context) (*Result, error) {
	if err := e.validate(); err != nil {
		return nil, err
	}

	shape, _, err := e.model.GridShape(bmi.VarHeight)
	if err != nil {
		return nil, err
	}
	dt, err := e.model.TimeStep()
	if err != nil {
		return nil, err
	}
	if err := e.boundUntil(dt); err != nil {
		return nil, err
	}

	result := &Result{
		Rows:     shape[0],
		Cols:     shape[1],
		TimeStep: dt,
		Metrics:  make(map[string]float64),
		Series:   make(map[string][]float64),
	}

	for _, m := range e.metrics {
		m.Reset()
	}

	if err := e.observe(result, true); err != nil {
		return result, err
	}

	every := e.cfg.SnapshotEvery
	for i := 0; e.more(i); i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		now, err := e.model.CurrentTime()
		if err != nil {
			return result, err
		}
		if err := e.model.Update(now + dt); err != nil {
			return result, err
		}
		result.StepsTaken++

		keep := every > 0 && result.StepsTaken%every == 0
		if err := e.observe(result, keep || !e.more(i+1)); err != nil {
			return result, err
		}
	}

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	return result, nil
}

// boundUntil works out how many steps reaching cfg.Until takes, allowing one
// extra for rounding in the accumulated time.
func (e *Experiment) boundUntil(dt float64) error {
	if e.cfg.Until <= 0 {
		return nil
	}
	now, err := e.model.CurrentTime()
	if err != nil {
		return err
	}
	n := math.Max(0, math.Ceil((e.cfg.Until-now)/dt))
	if n > bmi.MaxUntilSteps || (n > 0 && now+dt == now) {
		return fmt.Errorf("%w: %g is %g steps away", bmi.ErrTimeRange, e.cfg.Until, n)
	}
	e.untilSteps = int(n) + 1
	return nil
}

func (e *Experiment) more(i int) bool {
	if e.cfg.Until > 0 {
		now, err := e.model.CurrentTime()
		return err == nil && now < e.cfg.Until && i < e.untilSteps
	}
	return i < e.cfg.Steps
}

func (e *Experiment) observe(result *Result, keep bool) error {
	z, _, err := e.model.GetDouble(bmi.VarHeight)
	if err != nil {
		return err
	}
	now, err := e.model.CurrentTime()
	if err != nil {
		return err
	}

	f := metrics.Frame{Values: z, Rows: result.Rows, Cols: result.Cols, Time: now}
	result.Times = append(result.Times, now)
	for _, m := range e.metrics {
		m.Observe(f)
		result.Series[m.Name()] = append(result.Series[m.Name()], m.Value())
	}
	for _, o := range e.observers {
		o.OnStep(f)
	}

	if keep && (len(result.SnapshotTimes) == 0 || result.SnapshotTimes[len(result.SnapshotTimes)-1] != now) {
		snap := make([]float64, len(z))
		copy(snap, z)
		result.Snapshots = append(result.Snapshots, snap)
		result.SnapshotTimes = append(result.SnapshotTimes, now)
	}
	return nil
}
