package metrics

// Frame is one observation of the model field.
type Frame struct {
	Values []float64
	Rows   int
	Cols   int
	Time   float64
}

func (f Frame) At(row, col int) float64 { return f.Values[row*f.Cols+col] }

func (f Frame) onBoundary(i int) bool {
	r, c := i/f.Cols, i%f.Cols
	return r == 0 || r == f.Rows-1 || c == 0 || c == f.Cols-1
}
