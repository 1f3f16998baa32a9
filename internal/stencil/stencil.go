// Package stencil advances a grid.State by one explicit 5-point
// finite-difference step.
package stencil

import "github.com/san-kum/bmisim/internal/grid"

// Engine computes interior cells into the scratch buffer and then commits the
// whole buffer. Rho is a relaxation source term; the diffusion model keeps it
// at zero.
type Engine struct {
	Rho float64
}

func New() *Engine {
	return &Engine{}
}

// Step advances time by one fixed step and relaxes every interior cell towards
// the spacing-weighted mean of its four neighbours.
func (e *Engine) Step(st *grid.State) {
	st.Advance()

	rows, cols := st.Rows(), st.Cols()
	dx2 := st.ColSpacing() * st.ColSpacing()
	dy2 := st.RowSpacing() * st.RowSpacing()
	source := dx2 * dy2 * e.Rho
	denom := 1. / (2 * (dx2 + dy2))

	z, tmp := st.Buffers()
	for r := 1; r < rows-1; r++ {
		up, mid, down := (r-1)*cols, r*cols, (r+1)*cols
		for c := 1; c < cols-1; c++ {
			tmp[mid+c] = denom * (dx2*(z[up+c]+z[down+c]) +
				dy2*(z[mid+c-1]+z[mid+c+1]) -
				source)
		}
	}

	st.Commit()
}

// Steps applies n steps in sequence.
func (e *Engine) Steps(st *grid.State, n int) {
	for i := 0; i < n; i++ {
		e.Step(st)
	}
}
