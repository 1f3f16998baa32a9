package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/bmisim/internal/config"
)

func TestRangeAndLevel(t *testing.T) {
	lo, hi := Range([]float64{3, -1, 2})
	if lo != -1 || hi != 3 {
		t.Errorf("expected [-1, 3], got [%v, %v]", lo, hi)
	}
	if lo, hi := Range(nil); lo != 0 || hi != 0 {
		t.Errorf("empty range should be zero, got [%v, %v]", lo, hi)
	}

	tests := []struct {
		v, lo, hi, want float64
	}{
		{0, 0, 1, 0},
		{0.5, 0, 1, 0.5},
		{2, 0, 1, 1},
		{-1, 0, 1, 0},
		{5, 5, 5, 0},
	}
	for _, tt := range tests {
		if got := Level(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("Level(%v, %v, %v) = %v, want %v", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestHeatmapCharacters(t *testing.T) {
	z := []float64{0, 1, 2, 3}
	out := Heatmap(z, 2, 2, HeatmapOptions{CellWidth: 1})

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0][0] != ramp[0] {
		t.Errorf("minimum should map to %q, got %q", ramp[0], lines[0][0])
	}
	if lines[1][1] != ramp[len(ramp)-1] {
		t.Errorf("maximum should map to %q, got %q", ramp[len(ramp)-1], lines[1][1])
	}
}

func TestHeatmapFixedScale(t *testing.T) {
	out := Heatmap([]float64{1, 1}, 1, 2, HeatmapOptions{Min: 0, Max: 1, CellWidth: 1})
	want := strings.Repeat(string(ramp[len(ramp)-1]), 2)
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
	if Heatmap([]float64{1}, 2, 2, HeatmapOptions{}) != "" {
		t.Error("short field should render nothing")
	}
}

func TestLerpColor(t *testing.T) {
	if got := lerpColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0: got %s", got)
	}
	if got := lerpColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1: got %s", got)
	}
	if got := lerpColor("#000000", "#ffffff", 2); got != "#ffffff" {
		t.Errorf("t should clamp: got %s", got)
	}
	if got := ThemeMinimal.Shade(0.5); got != "#808080" {
		t.Errorf("midpoint: got %s", got)
	}
}

func TestThemes(t *testing.T) {
	if NextTheme(ThemeMinimal).Name != Themes[0].Name {
		t.Error("NextTheme should wrap around")
	}
	if GetTheme("nope").Name != ThemeThermal.Name {
		t.Error("unknown theme should fall back to thermal")
	}
	if len(ThemeNames()) != len(Themes) {
		t.Error("ThemeNames length mismatch")
	}
}

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestLiveControls(t *testing.T) {
	cfg := config.GetPreset("small")
	l, err := NewLive(cfg, 30, false)
	if err != nil {
		t.Fatalf("NewLive failed: %v", err)
	}
	defer l.Close()

	m, _ := l.Update(TickMsg{})
	l = m.(Live)
	if l.steps != 1 {
		t.Errorf("tick should step once, got %d steps", l.steps)
	}

	m, _ = l.Update(key(" "))
	l = m.(Live)
	if l.running {
		t.Error("space should pause")
	}

	m, _ = l.Update(TickMsg{})
	l = m.(Live)
	if l.steps != 1 {
		t.Errorf("paused tick should not step, got %d steps", l.steps)
	}

	m, _ = l.Update(key("s"))
	l = m.(Live)
	if l.steps != 2 {
		t.Errorf("s should single step, got %d steps", l.steps)
	}

	now, _ := l.model.CurrentTime()
	if now != 2*cfg.TimeStep {
		t.Errorf("expected time %v, got %v", 2*cfg.TimeStep, now)
	}

	m, _ = l.Update(key("r"))
	l = m.(Live)
	if l.steps != 0 || l.err != nil {
		t.Errorf("reset failed: steps=%d err=%v", l.steps, l.err)
	}

	view := l.View()
	if !strings.Contains(view, "paused") {
		t.Error("view should show paused status")
	}

	_, cmd := l.Update(key("q"))
	if cmd == nil {
		t.Error("q should return a quit command")
	}
}
