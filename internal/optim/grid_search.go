package optim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/bmisim/internal/bmi"
	"github.com/san-kum/bmisim/internal/config"
	"github.com/san-kum/bmisim/internal/experiment"
)

// Params names the configuration fields a search may vary.
var Params = []string{"time_step", "row_spacing", "col_spacing", "seed"}

// Trial is one evaluated point of the grid.
type Trial struct {
	Params map[string]float64
	Value  float64
	Err    error
}

// GridSearch evaluates every combination of parameter values and keeps the
// one with the smallest metric value.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("got %d parameters but %d value ranges", len(params), len(ranges))
	}
	for i, name := range params {
		if !known(name) {
			return nil, fmt.Errorf("unknown search parameter: %s (available: %v)", name, Params)
		}
		if len(ranges[i]) == 0 {
			return nil, fmt.Errorf("parameter %s has no values", name)
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

func known(name string) bool {
	for _, p := range Params {
		if p == name {
			return true
		}
	}
	return false
}

// Apply copies base with the given parameter values set.
func Apply(base *config.Config, params map[string]float64) *config.Config {
	cfg := *base
	for name, v := range params {
		switch name {
		case "time_step":
			cfg.TimeStep = v
		case "row_spacing":
			cfg.RowSpacing = v
		case "col_spacing":
			cfg.ColSpacing = v
		case "seed":
			cfg.Seed = int64(v)
		}
	}
	return &cfg
}

// Search runs every combination. Failing combinations are recorded in the
// trials and skipped; an error is returned only when ctx is cancelled or
// no combination succeeds.
func (g *GridSearch) Search(
	ctx context.Context,
	base *config.Config,
	runCfg experiment.Config,
	metricName string,
) (best Trial, trials []Trial, err error) {
	best = Trial{Value: math.Inf(1)}

	g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		t := Trial{Params: params}
		t.Value, t.Err = evaluate(ctx, Apply(base, params), runCfg, metricName)
		trials = append(trials, t)
		if t.Err == nil && t.Value < best.Value {
			best = t
		}
	})

	if err := ctx.Err(); err != nil {
		return Trial{}, trials, err
	}
	if best.Params == nil {
		return Trial{}, trials, fmt.Errorf("no parameter combination ran successfully")
	}
	return best, trials, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	visit func(map[string]float64),
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		visit(current)
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		g.searchRecursive(ctx, depth+1, newParams, visit)
	}
}

func evaluate(ctx context.Context, cfg *config.Config, runCfg experiment.Config, metricName string) (float64, error) {
	metric, err := experiment.NewRegistry().GetMetric(metricName)
	if err != nil {
		return 0, err
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}

	model, err := bmi.InitializeConfig(cfg)
	if err != nil {
		return 0, err
	}
	defer model.Finalize()

	exp := experiment.New(model, runCfg)
	exp.AddMetric(metric)
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}

	v := result.Metrics[metricName]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s is not finite: %v", metricName, v)
	}
	return v, nil
}

// SortTrials orders trials by value, failures last.
func SortTrials(trials []Trial) {
	sort.SliceStable(trials, func(i, j int) bool {
		if (trials[i].Err == nil) != (trials[j].Err == nil) {
			return trials[i].Err == nil
		}
		return trials[i].Value < trials[j].Value
	})
}
