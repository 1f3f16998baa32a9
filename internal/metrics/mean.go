package metrics

type Mean struct {
	name  string
	value float64
}

func NewMean() *Mean {
	return &Mean{name: "mean"}
}

func (m *Mean) Name() string { return m.name }

// Observe records the mean over every cell, boundary included.
func (m *Mean) Observe(f Frame) {
	if len(f.Values) == 0 {
		return
	}
	sum := 0.0
	for _, v := range f.Values {
		sum += v
	}
	m.value = sum / float64(len(f.Values))
}

func (m *Mean) Value() float64 { return m.value }

func (m *Mean) Reset() { m.value = 0 }
