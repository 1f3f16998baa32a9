package analysis

// RowProfile copies one row out of a row-major field.
func RowProfile(z []float64, cols, row int) []float64 {
	out := make([]float64, cols)
	copy(out, z[row*cols:(row+1)*cols])
	return out
}

// ColumnProfile copies one column out of a row-major field.
func ColumnProfile(z []float64, cols, col int) []float64 {
	rows := len(z) / cols
	out := make([]float64, rows)
	for r := range out {
		out[r] = z[r*cols+col]
	}
	return out
}
