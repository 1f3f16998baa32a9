package viz

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ramp runs from low to high for character heatmaps.
const ramp = " .:-=+*#%@"

type HeatmapOptions struct {
	// Min and Max fix the colour scale; when Min >= Max the field range is used.
	Min, Max float64
	// Color selects background colours from the current theme instead of characters.
	Color bool
	// CellWidth is the number of terminal columns per grid cell (default 2).
	CellWidth int
}

// Range returns the smallest and largest finite values of z.
func Range(z []float64) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range z {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return 0, 0
	}
	return lo, hi
}

// Level maps v onto [0, 1] for the scale lo..hi.
func Level(v, lo, hi float64) float64 {
	if hi <= lo || math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, (v-lo)/(hi-lo)))
}

// Heatmap draws a row-major field with row 0 at the top.
func Heatmap(z []float64, rows, cols int, opts HeatmapOptions) string {
	if rows*cols == 0 || len(z) < rows*cols {
		return ""
	}
	lo, hi := opts.Min, opts.Max
	if lo >= hi {
		lo, hi = Range(z[:rows*cols])
	}
	width := opts.CellWidth
	if width < 1 {
		width = 2
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			level := Level(z[r*cols+c], lo, hi)
			if opts.Color {
				bg := lerpColor(CurrentTheme.Cold, CurrentTheme.Hot, level)
				sb.WriteString(lipgloss.NewStyle().Background(bg).Render(strings.Repeat(" ", width)))
				continue
			}
			ch := ramp[int(level*float64(len(ramp)-1)+0.5)]
			sb.WriteString(strings.Repeat(string(ch), width))
		}
		if r < rows-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// Legend labels the scale used by Heatmap.
func Legend(lo, hi float64, color bool) string {
	var bar string
	if color {
		var sb strings.Builder
		for i := 0; i < 10; i++ {
			bg := lerpColor(CurrentTheme.Cold, CurrentTheme.Hot, float64(i)/9)
			sb.WriteString(lipgloss.NewStyle().Background(bg).Render(" "))
		}
		bar = sb.String()
	} else {
		bar = "[" + ramp + "]"
	}
	return formatValue(lo) + " " + bar + " " + formatValue(hi)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
