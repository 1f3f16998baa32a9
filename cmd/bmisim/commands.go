package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/bmisim/internal/analysis"
	"github.com/san-kum/bmisim/internal/bmi"
	"github.com/san-kum/bmisim/internal/config"
	"github.com/san-kum/bmisim/internal/experiment"
	"github.com/san-kum/bmisim/internal/export"
	"github.com/san-kum/bmisim/internal/storage"
	"github.com/san-kum/bmisim/internal/viz"
	"github.com/spf13/cobra"
)

func openStore(ctx context.Context) (storage.Store, error) {
	st, err := storage.NewStore(storeKind, dataDir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func runConfig(cfg *config.Config) experiment.Config {
	return experiment.Config{
		Steps:         cfg.Run.Steps,
		Until:         cfg.Run.Until,
		SnapshotEvery: cfg.Run.SnapshotEvery,
	}
}

func runModel(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	model, err := bmi.InitializeConfig(cfg)
	if err != nil {
		return err
	}
	defer model.Finalize()

	exp := experiment.New(model, runConfig(cfg))
	for _, m := range experiment.NewRegistry().DefaultMetrics() {
		exp.AddMetric(m)
	}

	fmt.Printf("running %s on a %dx%d grid...\n", model.ComponentName(), cfg.Rows, cfg.Cols)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	data := storage.NewRunData(cfg, result)
	if err := st.Save(ctx, data); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", data.Meta.ID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("time: %g %s\n", data.Meta.FinalTime, model.TimeUnits())
	fmt.Println("\nmetrics:")
	for _, name := range experiment.NewRegistry().ListMetrics() {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	return nil
}

func showInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	model, err := bmi.InitializeConfig(cfg)
	if err != nil {
		return err
	}
	defer model.Finalize()

	fmt.Println(viz.HeaderStyle.Render(model.ComponentName()))
	fmt.Printf("inputs:  %v\n", model.InputVarNames())
	fmt.Printf("outputs: %v\n\n", model.OutputVarNames())

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tUNITS\tRANK\tGRID\tSHAPE\tSPACING\tORIGIN")
	for _, v := range bmi.Variables() {
		gridType, _ := model.GridType(v.Name)
		shape, _, _ := model.GridShape(v.Name)
		spacing, _, _ := model.GridSpacing(v.Name)
		origin, _, _ := model.GridOrigin(v.Name)
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%v\t%v\t%v\n",
			v.Name, v.Type, v.Units, v.Rank, gridType, shape, spacing, origin)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	now, _ := model.CurrentTime()
	dt, _ := model.TimeStep()
	fmt.Printf("\ntime: start=%g current=%g end=%g step=%g units=%s\n",
		model.StartTime(), now, model.EndTime(), dt, model.TimeUnits())
	return nil
}

func showField(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	model, err := bmi.InitializeConfig(cfg)
	if err != nil {
		return err
	}
	defer model.Finalize()

	if cfg.Run.Until > 0 {
		err = model.UpdateUntil(cfg.Run.Until)
	} else {
		for i := 0; i < cfg.Run.Steps && err == nil; i++ {
			err = model.Update(0)
		}
	}
	if err != nil {
		return err
	}

	z, shape, err := model.GetDouble(bmi.VarHeight)
	if err != nil {
		return err
	}
	now, _ := model.CurrentTime()
	lo, hi := viz.Range(z)

	fmt.Println(viz.HeaderStyle.Render(fmt.Sprintf("%s at t=%g", bmi.VarHeight, now)))
	fmt.Println(viz.Heatmap(z, shape[0], shape[1], viz.HeatmapOptions{Color: color}))
	fmt.Println(viz.Legend(lo, hi, color))
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	live, err := viz.NewLive(cfg, frameRate, color)
	if err != nil {
		return err
	}
	defer live.Close()

	p := tea.NewProgram(live, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.List(ctx)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tGRID\tDT\tSTEPS\tFINAL\tSEED\tRESIDUAL")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%g\t%d\t%g\t%d\t%.3g\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Rows, run.Cols,
			run.TimeStep,
			run.Steps,
			run.FinalTime,
			run.Seed,
			run.Metrics["residual"],
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunData, error) {
	ctx := context.Background()
	st, err := openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return st.Load(ctx, runID)
}

func plotRun(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	if len(data.Times) < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	fmt.Printf("run: %s\n", data.Meta.ID)
	fmt.Printf("grid: %dx%d\n", data.Meta.Rows, data.Meta.Cols)
	fmt.Printf("samples: %d\n\n", len(data.Times))

	for _, name := range experiment.NewRegistry().ListMetrics() {
		series := data.Series[name]
		if len(series) == 0 {
			continue
		}
		graph := asciigraph.Plot(series,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs time"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if final := data.Final(); final != nil {
		profile := analysis.ColumnProfile(final, data.Meta.Cols, data.Meta.Cols/2)
		if len(profile) > 1 {
			graph := asciigraph.Plot(profile,
				asciigraph.Height(10),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("centre column %d, top to bottom", data.Meta.Cols/2)),
			)
			fmt.Println(graph)
		}
	}
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	final := data.Final()
	if final == nil {
		return fmt.Errorf("run %s has no snapshots", data.Meta.ID)
	}

	row := data.Meta.Rows / 2
	profile := analysis.RowProfile(final, data.Meta.Cols, row)
	if len(profile) < 4 {
		return fmt.Errorf("row too short for spectral analysis: %d cells", len(profile))
	}

	ps := analysis.PowerSpectrum(profile)
	mode, power := analysis.DominantMode(ps)

	fmt.Printf("run: %s\n", data.Meta.ID)
	fmt.Printf("row %d, %d cells\n", row, len(profile))
	fmt.Printf("dominant mode: %d (wavelength %.3g cells, power %.4g)\n\n",
		mode, float64(len(profile))/float64(max(mode, 1)), power)

	graph := asciigraph.Plot(ps,
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.Caption("power spectrum"),
	)
	fmt.Println(graph)
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, data)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	data, err := loadRun(args[0])
	if err != nil {
		return err
	}
	final := data.Final()
	if final == nil {
		return fmt.Errorf("run %s has no snapshots", data.Meta.ID)
	}

	out := data.Meta.ID + ".svg"
	if len(args) > 1 {
		out = args[1]
	}

	svg := export.FieldToSVG(final, data.Meta.Rows, data.Meta.Cols, scale, viz.GetTheme(theme))
	if err := os.WriteFile(out, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", out)
	return nil
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := experiment.NewEnsemble(cfg, runConfig(cfg), members)
	ens.SetConcurrency(workers)

	fmt.Printf("running %d members, seeds %d..%d...\n", members, cfg.Seed, cfg.Seed+int64(members)-1)
	start := time.Now()

	results, err := ens.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	names := experiment.NewRegistry().ListMetrics()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprint(w, "MEMBER\tSEED\tSTEPS")
	for _, name := range names {
		fmt.Fprintf(w, "\t%s", name)
	}
	fmt.Fprintln(w)

	for i, res := range results {
		fmt.Fprintf(w, "%d\t%d\t%d", i, cfg.Seed+int64(i), res.StepsTaken)
		for _, name := range names {
			fmt.Fprintf(w, "\t%.6f", res.Metrics[name])
		}
		fmt.Fprintln(w)
	}
	return w.Flush()
}
