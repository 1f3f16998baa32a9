package metrics

import "math"

// Residual is the largest absolute change of any cell between two
// consecutive frames. It drops towards zero as the field settles.
type Residual struct {
	name  string
	prev  []float64
	value float64
}

func NewResidual() *Residual {
	return &Residual{name: "residual"}
}

func (r *Residual) Name() string { return r.name }

func (r *Residual) Observe(f Frame) {
	if len(r.prev) != len(f.Values) {
		r.prev = make([]float64, len(f.Values))
		copy(r.prev, f.Values)
		r.value = 0
		return
	}
	worst := 0.0
	for i, v := range f.Values {
		worst = math.Max(worst, math.Abs(v-r.prev[i]))
	}
	copy(r.prev, f.Values)
	r.value = worst
}

func (r *Residual) Value() float64 { return r.value }

func (r *Residual) Reset() {
	r.prev = nil
	r.value = 0
}
