package grid

import (
	"errors"
	"math"
	"testing"
)

func TestNewDefaults(t *testing.T) {
	st, err := New(DefaultParams())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	if st.Rows() != 20 || st.Cols() != 10 {
		t.Errorf("expected 20x10 grid, got %dx%d", st.Rows(), st.Cols())
	}
	if st.Len() != 200 {
		t.Errorf("expected 200 cells, got %d", st.Len())
	}
	if st.Time() != 0 {
		t.Errorf("expected time 0, got %f", st.Time())
	}

	field, scratch := st.Buffers()
	if len(field) != st.Len() || len(scratch) != st.Len() {
		t.Fatalf("buffer lengths %d/%d, want %d", len(field), len(scratch), st.Len())
	}
	for i := range field {
		if field[i] != scratch[i] {
			t.Fatalf("scratch differs from field at %d", i)
		}
	}
}

func TestBoundary(t *testing.T) {
	st, err := New(DefaultParams())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	rows, cols := st.Rows(), st.Cols()

	for r := 0; r < rows-1; r++ {
		if st.At(r, 0) != 0 || st.At(r, cols-1) != 0 {
			t.Errorf("row %d: side edges not zero", r)
		}
	}
	for c := 0; c < cols; c++ {
		if st.At(0, c) != 0 {
			t.Errorf("top row col %d not zero: %f", c, st.At(0, c))
		}
	}

	// cols=10: top_x = 9, peak 20.25 at 4.5, 20.0 at cols 4 and 5
	want := []float64{0, 8, 14, 18, 20, 20, 18, 14, 8, 0}
	for c, w := range want {
		if got := st.At(rows-1, c); got != w {
			t.Errorf("bottom col %d: expected %f, got %f", c, w, got)
		}
	}
}

func TestInteriorSeeded(t *testing.T) {
	st, err := New(DefaultParams())
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}

	for r := 1; r < st.Rows()-1; r++ {
		for c := 1; c < st.Cols()-1; c++ {
			v := st.At(r, c)
			if v < 0 || v >= 1 {
				t.Errorf("cell (%d,%d) = %f outside [0,1)", r, c, v)
			}
		}
	}
}

func TestSeedReproducible(t *testing.T) {
	a, _ := New(DefaultParams())
	b, _ := New(DefaultParams())

	p := DefaultParams()
	p.Seed = 7
	c, _ := New(p)

	same := true
	for i := range a.Field() {
		if a.Field()[i] != b.Field()[i] {
			t.Fatalf("same seed produced different value at %d", i)
		}
		if a.Field()[i] != c.Field()[i] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical fields")
	}
}

func TestInvalidParams(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*Params)
		want error
	}{
		{"zero dt", func(p *Params) { p.TimeStep = 0 }, ErrInvalidParams},
		{"negative dt", func(p *Params) { p.TimeStep = -1 }, ErrInvalidParams},
		{"zero rows", func(p *Params) { p.Rows = 0 }, ErrInvalidParams},
		{"negative cols", func(p *Params) { p.Cols = -3 }, ErrInvalidParams},
		{"zero spacing", func(p *Params) { p.ColSpacing = 0 }, ErrInvalidParams},
		{"NaN dt", func(p *Params) { p.TimeStep = math.NaN() }, ErrInvalidParams},
		{"infinite dt", func(p *Params) { p.TimeStep = math.Inf(1) }, ErrInvalidParams},
		{"infinite col spacing", func(p *Params) { p.ColSpacing = math.Inf(1) }, ErrInvalidParams},
		{"NaN row spacing", func(p *Params) { p.RowSpacing = math.NaN() }, ErrInvalidParams},
		{"too large", func(p *Params) { p.Rows, p.Cols = MaxCells, 2 }, ErrResource},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mut(&p)
			st, err := New(p)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if st != nil {
				t.Error("expected nil state on error")
			}
		})
	}
}

func TestSingleCell(t *testing.T) {
	p := DefaultParams()
	p.Rows, p.Cols = 1, 1
	st, err := New(p)
	if err != nil {
		t.Fatalf("new failed: %v", err)
	}
	if st.At(0, 0) != 0 {
		t.Errorf("expected 0 for single cell, got %f", st.At(0, 0))
	}
}

func TestSetField(t *testing.T) {
	st, _ := New(DefaultParams())

	values := make([]float64, st.Len())
	for i := range values {
		values[i] = float64(i)
	}
	if err := st.SetField(values); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if st.At(3, 4) != 34 {
		t.Errorf("expected 34, got %f", st.At(3, 4))
	}

	values[0] = -1
	if st.At(0, 0) == -1 {
		t.Error("SetField must copy, not alias")
	}

	if err := st.SetField(values[:5]); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("expected size mismatch, got %v", err)
	}
}

func TestRowColumn(t *testing.T) {
	st, _ := New(DefaultParams())

	row := st.Row(st.Rows() - 1)
	if len(row) != st.Cols() || row[4] != 20 {
		t.Errorf("unexpected bottom row %v", row)
	}
	row[4] = 99
	if st.At(st.Rows()-1, 4) != 99 {
		t.Error("Row should be a live view")
	}

	col := st.Column(0)
	if len(col) != st.Rows() {
		t.Errorf("expected %d values, got %d", st.Rows(), len(col))
	}
}

func TestAdvanceCommit(t *testing.T) {
	st, _ := New(DefaultParams())

	_, scratch := st.Buffers()
	scratch[st.Index(5, 5)] = 42
	st.Commit()
	if st.At(5, 5) != 42 {
		t.Errorf("commit did not copy scratch, got %f", st.At(5, 5))
	}

	st.Advance()
	st.Advance()
	if st.Time() != 2 {
		t.Errorf("expected time 2, got %f", st.Time())
	}
}

func TestRelease(t *testing.T) {
	st, _ := New(DefaultParams())
	st.Release()

	if !st.Released() {
		t.Error("expected released state")
	}
	if err := st.SetField(nil); !errors.Is(err, ErrReleased) {
		t.Errorf("expected ErrReleased, got %v", err)
	}
}
