package experiment

import (
	"context"
	"fmt"

	"github.com/san-kum/bmisim/internal/bmi"
	"github.com/san-kum/bmisim/internal/config"
	"golang.org/x/sync/errgroup"
)

// Ensemble runs independent models that differ only in their seed. Members
// share no state, so they run concurrently.
type Ensemble struct {
	base        config.Config
	runCfg      Config
	members     int
	concurrency int
}

func NewEnsemble(base *config.Config, runCfg Config, members int) *Ensemble {
	return &Ensemble{base: *base, runCfg: runCfg, members: members}
}

// SetConcurrency limits the number of members running at once; n <= 0 means no limit.
func (e *Ensemble) SetConcurrency(n int) { e.concurrency = n }

func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	if e.members < 1 {
		return nil, fmt.Errorf("ensemble needs at least one member, got %d", e.members)
	}

	results := make([]*Result, e.members)
	g, ctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	for i := 0; i < e.members; i++ {
		i := i
		g.Go(func() error {
			cfg := e.base
			cfg.Seed = e.base.Seed + int64(i)

			res, err := runMember(ctx, &cfg, e.runCfg)
			if err != nil {
				return fmt.Errorf("member %d (seed %d): %w", i, cfg.Seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runMember(ctx context.Context, cfg *config.Config, runCfg Config) (*Result, error) {
	m, err := bmi.InitializeConfig(cfg)
	if err != nil {
		return nil, err
	}
	defer m.Finalize()

	exp := New(m, runCfg)
	for _, metric := range NewRegistry().DefaultMetrics() {
		exp.AddMetric(metric)
	}
	return exp.Run(ctx)
}
