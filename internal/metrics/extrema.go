package metrics

import "math"

// InteriorMax tracks the largest interior value of the latest frame.
type InteriorMax struct {
	name  string
	value float64
}

func NewInteriorMax() *InteriorMax {
	return &InteriorMax{name: "interior_max"}
}

func (m *InteriorMax) Name() string { return m.name }

func (m *InteriorMax) Observe(f Frame) {
	best := math.Inf(-1)
	for r := 1; r < f.Rows-1; r++ {
		for c := 1; c < f.Cols-1; c++ {
			if v := f.At(r, c); v > best {
				best = v
			}
		}
	}
	if math.IsInf(best, -1) {
		best = 0
	}
	m.value = best
}

func (m *InteriorMax) Value() float64 { return m.value }

func (m *InteriorMax) Reset() { m.value = 0 }
