package grid

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

const (
	DefaultTimeStep = 1.0
	DefaultRows     = 20
	DefaultCols     = 10
	DefaultSpacing  = 1.0
	DefaultSeed     = 1

	// MaxCells bounds a single buffer; two of them are allocated per state.
	MaxCells = 1 << 26
)

var (
	// ErrInvalidParams indicates a non-positive extent, spacing or time step.
	ErrInvalidParams = errors.New("grid: invalid parameters")

	// ErrResource indicates the field buffers could not be allocated.
	ErrResource = errors.New("grid: cannot allocate field buffers")

	// ErrSizeMismatch indicates a buffer whose length is not Rows*Cols.
	ErrSizeMismatch = errors.New("grid: buffer size does not match grid")

	// ErrReleased indicates use of a state after Release.
	ErrReleased = errors.New("grid: state has been released")
)

// Params fixes everything a State needs at construction. Nothing here can
// change once the state exists.
type Params struct {
	TimeStep   float64
	Rows       int
	Cols       int
	RowSpacing float64
	ColSpacing float64
	Seed       int64
}

func DefaultParams() Params {
	return Params{
		TimeStep:   DefaultTimeStep,
		Rows:       DefaultRows,
		Cols:       DefaultCols,
		RowSpacing: DefaultSpacing,
		ColSpacing: DefaultSpacing,
		Seed:       DefaultSeed,
	}
}

func (p Params) Validate() error {
	if !positive(p.TimeStep) {
		return fmt.Errorf("%w: time step must be positive and finite, got %g", ErrInvalidParams, p.TimeStep)
	}
	if p.Rows < 1 || p.Cols < 1 {
		return fmt.Errorf("%w: extent must be positive, got %dx%d", ErrInvalidParams, p.Rows, p.Cols)
	}
	if !positive(p.RowSpacing) || !positive(p.ColSpacing) {
		return fmt.Errorf("%w: spacing must be positive and finite, got %g,%g", ErrInvalidParams, p.RowSpacing, p.ColSpacing)
	}
	return nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

type State struct {
	params  Params
	time    float64
	field   []float64
	scratch []float64
}

// New allocates both buffers, seeds the field and fixes its boundary.
func New(p Params) (*State, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	field, err := allocate(p.Rows, p.Cols)
	if err != nil {
		return nil, err
	}
	scratch, err := allocate(p.Rows, p.Cols)
	if err != nil {
		return nil, err
	}

	s := &State{
		params:  p,
		field:   field,
		scratch: scratch,
	}

	s.seed(rand.New(rand.NewSource(p.Seed)))
	s.applyBoundary()
	copy(s.scratch, s.field)

	return s, nil
}

func allocate(rows, cols int) (buf []float64, err error) {
	if rows > MaxCells/cols {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d cells", ErrResource, rows, cols, MaxCells)
	}
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, fmt.Errorf("%w: %v", ErrResource, r)
		}
	}()
	return make([]float64, rows*cols), nil
}

func (s *State) seed(rng *rand.Rand) {
	for i := range s.field {
		s.field[i] = rng.Float64()
	}
}

// applyBoundary writes the edges in a fixed order; the bottom row is written
// last and wins at the two bottom corners.
func (s *State) applyBoundary() {
	rows, cols := s.params.Rows, s.params.Cols

	for r := 0; r < rows; r++ {
		s.field[r*cols] = 0
		s.field[r*cols+cols-1] = 0
	}

	topX := float64(cols - 1)
	bottom := (rows - 1) * cols
	for c := 0; c < cols; c++ {
		s.field[c] = 0
		d := float64(c) - topX*.5
		s.field[bottom+c] = topX*topX*.25 - d*d
	}
}

func (s *State) Params() Params        { return s.params }
func (s *State) Rows() int             { return s.params.Rows }
func (s *State) Cols() int             { return s.params.Cols }
func (s *State) Len() int              { return s.params.Rows * s.params.Cols }
func (s *State) TimeStep() float64     { return s.params.TimeStep }
func (s *State) RowSpacing() float64   { return s.params.RowSpacing }
func (s *State) ColSpacing() float64   { return s.params.ColSpacing }
func (s *State) Time() float64         { return s.time }
func (s *State) Index(row, col int) int { return row*s.params.Cols + col }

func (s *State) At(row, col int) float64 {
	return s.field[s.Index(row, col)]
}

// Set writes one cell of the live field. Boundary cells are not protected.
func (s *State) Set(row, col int, v float64) {
	s.field[s.Index(row, col)] = v
}

// Field returns the live buffer. Writes through it are seen by the next step.
func (s *State) Field() []float64 { return s.field }

// Snapshot returns a copy of the live buffer.
func (s *State) Snapshot() []float64 {
	out := make([]float64, len(s.field))
	copy(out, s.field)
	return out
}

// Row returns a view of one row of the live field.
func (s *State) Row(row int) []float64 {
	start := row * s.params.Cols
	return s.field[start : start+s.params.Cols : start+s.params.Cols]
}

// Column copies one column out of the live field.
func (s *State) Column(col int) []float64 {
	out := make([]float64, s.params.Rows)
	for r := range out {
		out[r] = s.field[r*s.params.Cols+col]
	}
	return out
}

// SetField overwrites the whole live field.
func (s *State) SetField(values []float64) error {
	if s.Released() {
		return ErrReleased
	}
	if len(values) != len(s.field) {
		return fmt.Errorf("%w: got %d values, want %d", ErrSizeMismatch, len(values), len(s.field))
	}
	copy(s.field, values)
	return nil
}

// Buffers exposes the live and scratch buffers to an update engine.
func (s *State) Buffers() (field, scratch []float64) {
	return s.field, s.scratch
}

// Advance moves simulation time forward by one time step.
func (s *State) Advance() {
	s.time += s.params.TimeStep
}

// Commit replaces the whole live field with the scratch buffer.
func (s *State) Commit() {
	copy(s.field, s.scratch)
}

// Release drops both buffers. The state cannot be used afterwards.
func (s *State) Release() {
	s.field = nil
	s.scratch = nil
}

func (s *State) Released() bool { return s.field == nil }
