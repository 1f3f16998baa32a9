package main

import (
	"fmt"
	"os"

	"github.com/san-kum/bmisim/internal/config"
	"github.com/spf13/cobra"
)

var (
	dataDir   string
	storeKind string
	// Run parameters; a flag only overrides the config when it is set.
	steps   int
	until   float64
	every   int
	seed    int64
	preset  string
	members int
	workers int
	// Sweep options
	sweepParams []string
	sweepMetric string
	// Viewer options
	frameRate int
	color     bool
	theme     string
	scale     float64
)

// main registers the bmisim commands and executes the root command.
// It exits with status 1 if a command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "bmisim",
		Short:        "2-D diffusion model behind a model-interface contract",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".bmisim", "data directory")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "file", "run store backend (file, sqlite)")

	runCmd := &cobra.Command{
		Use:   "run [config]",
		Short: "run the model and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runModel,
	}
	addRunFlags(runCmd)

	infoCmd := &cobra.Command{
		Use:   "info [config]",
		Short: "print component, variable and grid metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}
	infoCmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")

	showCmd := &cobra.Command{
		Use:   "show [config]",
		Short: "step the model and print the field as a heatmap",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showField,
	}
	addRunFlags(showCmd)
	addViewFlags(showCmd)

	liveCmd := &cobra.Command{
		Use:   "live [config]",
		Short: "step the model with a live heatmap",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	addViewFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot metric series and the final centre column",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of the final centre row",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id] [out]",
		Short: "export the final snapshot as an SVG heatmap",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().Float64Var(&scale, "scale", 10, "pixels per cell")
	exportSVGCmd.Flags().StringVar(&theme, "theme", "thermal", "colour theme")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [config]",
		Short: "run independent seeded instances in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&members, "members", 4, "number of instances")
	ensembleCmd.Flags().IntVar(&workers, "workers", 0, "max concurrent instances (0 = unlimited)")

	sweepCmd := &cobra.Command{
		Use:   "sweep [config]",
		Short: "grid search over config parameters for the smallest metric value",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "parameter values, e.g. time_step=0.1,0.2 (repeatable)")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "residual", "metric to minimize")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-8s %dx%d dt=%g steps=%d\n", name, p.Rows, p.Cols, p.TimeStep, p.Run.Steps)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, infoCmd, showCmd, liveCmd, listCmd, plotCmd, analyzeCmd,
		exportCmd, exportSVGCmd, ensembleCmd, sweepCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&steps, "steps", config.DefaultSteps, "number of steps")
	cmd.Flags().Float64Var(&until, "until", 0, "step until model time reaches this value")
	cmd.Flags().IntVar(&every, "every", config.DefaultSnapshot, "keep a snapshot every n steps")
	cmd.Flags().Int64Var(&seed, "seed", 1, "random seed for the initial field")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func addViewFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&color, "color", true, "colour heatmap (false prints characters)")
	cmd.Flags().StringVar(&theme, "theme", "thermal", "colour theme")
}

// loadConfig resolves defaults, then a preset, then a config file, then flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if len(args) > 0 {
		loaded, err := config.Load(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("steps") {
		cfg.Run.Steps = steps
	}
	if flags.Changed("until") {
		cfg.Run.Until = until
	}
	if flags.Changed("every") {
		cfg.Run.SnapshotEvery = every
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
