package bmi

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/bmisim/internal/config"
	"github.com/san-kum/bmisim/internal/grid"
	"github.com/san-kum/bmisim/internal/stencil"
)

// BMI is the operation surface a coupling driver relies on.
type BMI interface {
	Update(requestedTime float64) error
	UpdateUntil(t float64) error
	Finalize() error

	ComponentName() string
	InputVarNames() []string
	OutputVarNames() []string

	CurrentTime() (float64, error)
	StartTime() float64
	EndTime() float64
	TimeStep() (float64, error)
	TimeUnits() string

	VarType(name string) (string, error)
	VarUnits(name string) (string, error)
	VarRank(name string) (int, error)

	GridType(name string) (string, error)
	GridShape(name string) ([]int, int, error)
	GridSpacing(name string) ([]float64, int, error)
	GridOrigin(name string) ([]float64, int, error)

	GetDouble(name string) ([]float64, []int, error)
	SetDouble(name string, values []float64) error
}

var _ BMI = (*Model)(nil)

// Model is the handle returned by Initialize.
type Model struct {
	state  *grid.State
	engine *stencil.Engine
}

// Initialize creates a model from a configuration file, or from the defaults
// when path is empty.
func Initialize(path string) (*Model, error) {
	if path == "" {
		return InitializeConfig(config.DefaultConfig())
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return InitializeConfig(cfg)
}

func InitializeConfig(cfg *config.Config) (*Model, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := grid.New(cfg.Params())
	if err != nil {
		if errors.Is(err, grid.ErrInvalidParams) {
			return nil, fmt.Errorf("%w: %w", ErrConfig, err)
		}
		return nil, err
	}

	return &Model{state: st, engine: stencil.New()}, nil
}

func (m *Model) live() (*grid.State, error) {
	if m == nil || m.state == nil {
		return nil, ErrInvalidHandle
	}
	return m.state, nil
}

// Update advances the model by exactly one time step. requestedTime is
// accepted for interface compatibility and has no effect.
func (m *Model) Update(requestedTime float64) error {
	st, err := m.live()
	if err != nil {
		return err
	}
	m.engine.Step(st)
	return nil
}

// MaxUntilSteps bounds the number of steps a single UpdateUntil may take.
const MaxUntilSteps = 1 << 31

// UpdateUntil steps the model until its time reaches t. A t at or before the
// current time is a no-op. Targets that need more than MaxUntilSteps steps,
// or that time cannot advance towards, return ErrTimeRange without stepping.
func (m *Model) UpdateUntil(t float64) error {
	st, err := m.live()
	if err != nil {
		return err
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: %g", ErrTimeRange, t)
	}

	now, dt := st.Time(), st.TimeStep()
	if t <= now {
		return nil
	}
	n := math.Ceil((t - now) / dt)
	if n > MaxUntilSteps || now+dt == now {
		return fmt.Errorf("%w: %g is %g steps away", ErrTimeRange, t, n)
	}

	// Rounding in the accumulated time can leave it just short of t after n
	// steps, so one extra step is allowed.
	for i := 0; st.Time() < t; i++ {
		if i > int(n) {
			return fmt.Errorf("%w: time stalled at %g before %g", ErrTimeRange, st.Time(), t)
		}
		m.engine.Step(st)
	}
	return nil
}

// Finalize releases the model. A second call returns ErrInvalidHandle.
func (m *Model) Finalize() error {
	st, err := m.live()
	if err != nil {
		return err
	}
	st.Release()
	m.state = nil
	m.engine = nil
	return nil
}

func (m *Model) ComponentName() string { return componentName }

func (m *Model) InputVarNames() []string {
	return variables.names(func(v VarInfo) bool { return v.Input })
}

func (m *Model) OutputVarNames() []string {
	return variables.names(func(v VarInfo) bool { return v.Output })
}

func (m *Model) CurrentTime() (float64, error) {
	st, err := m.live()
	if err != nil {
		return 0, err
	}
	return st.Time(), nil
}

func (m *Model) StartTime() float64 { return 0 }

// EndTime is unbounded; the model has no natural termination.
func (m *Model) EndTime() float64 { return math.MaxFloat64 }

func (m *Model) TimeStep() (float64, error) {
	st, err := m.live()
	if err != nil {
		return 0, err
	}
	return st.TimeStep(), nil
}

func (m *Model) TimeUnits() string { return timeUnits }

func (m *Model) VarType(name string) (string, error) {
	info, err := variables.lookup("var type", name)
	if err != nil {
		return "", err
	}
	return info.Type, nil
}

func (m *Model) VarUnits(name string) (string, error) {
	info, err := variables.lookup("var units", name)
	if err != nil {
		return "", err
	}
	return info.Units, nil
}

func (m *Model) VarRank(name string) (int, error) {
	info, err := variables.lookup("var rank", name)
	if err != nil {
		return 0, err
	}
	return info.Rank, nil
}

func (m *Model) GridType(name string) (string, error) {
	info, err := variables.lookup("grid type", name)
	if err != nil {
		return GridUnknown, err
	}
	if !info.HasGrid {
		return GridUnknown, nil
	}
	return GridUniform, nil
}

// gridded resolves name to the live state. ok is false for known variables
// that carry no grid.
func (m *Model) gridded(op, name string) (st *grid.State, ok bool, err error) {
	info, err := variables.lookup(op, name)
	if err != nil {
		return nil, false, err
	}
	if st, err = m.live(); err != nil {
		return nil, false, err
	}
	return st, info.HasGrid, nil
}

// GridShape returns [rows, cols] and rank 2 for the field, and nil with rank 0
// for any other known variable.
func (m *Model) GridShape(name string) ([]int, int, error) {
	st, ok, err := m.gridded("grid shape", name)
	if err != nil || !ok {
		return nil, 0, err
	}
	return []int{st.Rows(), st.Cols()}, 2, nil
}

// GridSpacing returns [row_spacing, col_spacing] for the field.
func (m *Model) GridSpacing(name string) ([]float64, int, error) {
	st, ok, err := m.gridded("grid spacing", name)
	if err != nil || !ok {
		return nil, 0, err
	}
	return []float64{st.RowSpacing(), st.ColSpacing()}, 2, nil
}

func (m *Model) GridOrigin(name string) ([]float64, int, error) {
	_, ok, err := m.gridded("grid origin", name)
	if err != nil || !ok {
		return nil, 0, err
	}
	return []float64{0, 0}, 2, nil
}

// GetDouble returns the live field and its shape. The slice is shared with
// the model: writes through it are visible to the next update. Known
// variables without values return nil data and no error.
func (m *Model) GetDouble(name string) ([]float64, []int, error) {
	st, ok, err := m.gridded("get double", name)
	if err != nil || !ok {
		return nil, nil, err
	}
	return st.Field(), []int{st.Rows(), st.Cols()}, nil
}

// GetDoubleCopy is GetDouble with a private copy of the values.
func (m *Model) GetDoubleCopy(name string) ([]float64, []int, error) {
	st, ok, err := m.gridded("get double", name)
	if err != nil || !ok {
		return nil, nil, err
	}
	return st.Snapshot(), []int{st.Rows(), st.Cols()}, nil
}

// SetDouble overwrites the whole field. values must hold rows*cols entries.
func (m *Model) SetDouble(name string, values []float64) error {
	info, err := variables.lookup("set double", name)
	if err != nil {
		return err
	}
	st, err := m.live()
	if err != nil {
		return err
	}
	if !info.Input {
		return &VarError{Name: name, Op: "set double", Wrapped: ErrNotSettable}
	}
	if err := st.SetField(values); err != nil {
		return &VarError{Name: name, Op: "set double", Wrapped: err}
	}
	return nil
}
