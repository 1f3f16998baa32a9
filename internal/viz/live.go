package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/bmisim/internal/bmi"
	"github.com/san-kum/bmisim/internal/config"
	"github.com/san-kum/bmisim/internal/metrics"
)

type TickMsg time.Time

// Live is a Bubble Tea model that steps a diffusion model and redraws its field.
type Live struct {
	cfg      *config.Config
	model    *bmi.Model
	fps      int
	running  bool
	steps    int
	color    bool
	residual *metrics.Residual
	mean     *metrics.Mean
	err      error
}

func NewLive(cfg *config.Config, fps int, color bool) (Live, error) {
	if fps < 1 {
		fps = 10
	}
	l := Live{cfg: cfg, fps: fps, running: true, color: color}
	if err := l.reset(); err != nil {
		return Live{}, err
	}
	return l, nil
}

func (l *Live) reset() error {
	if l.model != nil {
		_ = l.model.Finalize()
	}
	m, err := bmi.InitializeConfig(l.cfg)
	if err != nil {
		return err
	}
	l.model = m
	l.steps = 0
	l.residual = metrics.NewResidual()
	l.mean = metrics.NewMean()
	l.observe()
	return nil
}

func (l Live) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(l.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (l Live) Init() tea.Cmd {
	return l.tick()
}

// Update handles input events and steps the simulation.
func (l Live) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			l.Close()
			return l, tea.Quit
		case " ":
			l.running = !l.running
		case "s":
			if !l.running {
				l.step()
			}
		case "r":
			l.err = l.reset()
		case "t":
			CurrentTheme = NextTheme(CurrentTheme)
		}
	case TickMsg:
		if l.running {
			l.step()
		}
		return l, l.tick()
	}
	return l, nil
}

func (l *Live) step() {
	if l.err != nil {
		return
	}
	if l.err = l.model.Update(0); l.err != nil {
		return
	}
	l.steps++
	l.observe()
}

func (l *Live) observe() {
	z, shape, err := l.model.GetDouble(bmi.VarHeight)
	if err != nil {
		l.err = err
		return
	}
	now, _ := l.model.CurrentTime()
	f := metrics.Frame{Values: z, Rows: shape[0], Cols: shape[1], Time: now}
	l.residual.Observe(f)
	l.mean.Observe(f)
}

// Close finalizes the model; it is safe to call more than once.
func (l *Live) Close() {
	if l.model != nil {
		_ = l.model.Finalize()
	}
}

func (l Live) View() string {
	var b strings.Builder

	b.WriteString(HeaderStyle.Render(l.model.ComponentName()))
	b.WriteString("\n")

	if l.err != nil {
		b.WriteString(ErrorStyle.Render(l.err.Error()))
		b.WriteString("\n")
		return b.String()
	}

	status := StatusRunning.Render("● running")
	if !l.running {
		status = StatusPaused.Render("❚❚ paused")
	}
	now, _ := l.model.CurrentTime()
	fmt.Fprintf(&b, "%s  %s  %s\n\n", status, Metric("t", now), Metric("steps", float64(l.steps)))

	z, shape, err := l.model.GetDouble(bmi.VarHeight)
	if err != nil {
		b.WriteString(Subtle.Render(err.Error()))
		b.WriteString("\n")
		return b.String()
	}
	lo, hi := Range(z)
	b.WriteString(Heatmap(z, shape[0], shape[1], HeatmapOptions{Color: l.color}))
	b.WriteString("\n")
	b.WriteString(Legend(lo, hi, l.color))
	b.WriteString("\n")
	b.WriteString(Separator(shape[1] * 2))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s  %s\n", Metric("mean", l.mean.Value()), Metric("residual", l.residual.Value()))
	b.WriteString(KeyHint.Render("space pause • s step • r reset • t theme • q quit"))
	b.WriteString("\n")
	return b.String()
}
