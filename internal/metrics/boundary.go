package metrics

import "math"

// BoundaryDrift measures how far boundary cells have moved from the first
// observed frame. The stencil never writes them, so anything above zero means
// a caller changed the field.
type BoundaryDrift struct {
	name  string
	ref   []float64
	value float64
}

func NewBoundaryDrift() *BoundaryDrift {
	return &BoundaryDrift{name: "boundary_drift"}
}

func (b *BoundaryDrift) Name() string { return b.name }

func (b *BoundaryDrift) Observe(f Frame) {
	if b.ref == nil {
		b.ref = make([]float64, len(f.Values))
		copy(b.ref, f.Values)
		return
	}
	for i, v := range f.Values {
		if i < len(b.ref) && f.onBoundary(i) {
			b.value = math.Max(b.value, math.Abs(v-b.ref[i]))
		}
	}
}

func (b *BoundaryDrift) Value() float64 { return b.value }

func (b *BoundaryDrift) Reset() {
	b.ref = nil
	b.value = 0
}
