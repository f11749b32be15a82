package main

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/config"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/logger"
	"github.com/san-kum/lotkasim/internal/sim"
	"github.com/san-kum/lotkasim/internal/storage"
	"github.com/san-kum/lotkasim/internal/viz"
)

// simFlags are the flags shared by every command that solves. Precedence is
// preset, then config file, then explicitly set flags.
type simFlags struct {
	configFile string
	preset     string

	prey, predator float64
	t0, dt         float64
	steps          int

	alpha, beta, delta, gamma float64
}

func (f *simFlags) register(cmd *cobra.Command) {
	def := config.DefaultConfig()
	fs := cmd.Flags()

	fs.StringVar(&f.configFile, "config", "", "config file path (yaml)")
	fs.StringVar(&f.preset, "preset", "", "use preset configuration")
	fs.Float64Var(&f.prey, "prey", def.InitState.Prey, "initial prey density")
	fs.Float64Var(&f.predator, "predator", def.InitState.Predator, "initial predator density")
	fs.Float64Var(&f.t0, "t0", def.T0, "initial time")
	fs.Float64Var(&f.dt, "dt", def.Dt, "timestep, negative to integrate backward")
	fs.IntVar(&f.steps, "steps", def.Steps, "number of steps")
	fs.Float64Var(&f.alpha, "alpha", def.Params.Alpha, "prey growth rate")
	fs.Float64Var(&f.beta, "beta", def.Params.Beta, "predation rate")
	fs.Float64Var(&f.delta, "delta", def.Params.Delta, "predator growth per prey eaten")
	fs.Float64Var(&f.gamma, "gamma", def.Params.Gamma, "predator death rate")
}

func (f *simFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if f.preset != "" {
		cfg = config.GetPreset(f.preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (see 'lotkasim presets')", f.preset)
		}
	}

	if f.configFile != "" {
		loaded, err := config.LoadOver(f.configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	changed := cmd.Flags().Changed
	if changed("prey") {
		cfg.InitState.Prey = f.prey
	}
	if changed("predator") {
		cfg.InitState.Predator = f.predator
	}
	if changed("t0") {
		cfg.T0 = f.t0
	}
	if changed("dt") {
		cfg.Dt = f.dt
	}
	if changed("steps") {
		cfg.Steps = f.steps
	}
	for name, v := range map[string]float64{"alpha": f.alpha, "beta": f.beta, "delta": f.delta, "gamma": f.gamma} {
		if changed(name) {
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newRunCmd(a *app) *cobra.Command {
	var (
		flags     simFlags
		noSave    bool
		showTable bool
		showPlot  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			if cfg.LogLevel != "" && !cmd.Flags().Changed("log-level") && flags.configFile != "" {
				a.logLevel = cfg.LogLevel
				if err := a.setupLogger(cmd, args); err != nil {
					return err
				}
			}
			return a.runSimulation(cmd, cfg, noSave, showTable, showPlot)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	cmd.Flags().BoolVar(&showTable, "table", false, "print the trajectory table")
	cmd.Flags().BoolVar(&showPlot, "plot", false, "plot populations over time")

	return cmd
}

func (a *app) runSimulation(cmd *cobra.Command, cfg *config.Config, noSave, showTable, showPlot bool) error {
	out := cmd.OutOrStdout()
	log := logger.FromContext(cmd.Context())

	reg := experiment.NewRegistry()
	exp, err := experiment.New(reg, cfg)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "running %s simulation...\n", cfg.Model)
	log.Debug("solving", "t0", cfg.T0, "dt", cfg.Dt, "steps", cfg.Steps, "init", cfg.GetInitState())

	result, err := exp.Run(cmd.Context())
	if err != nil {
		return err
	}

	if showTable {
		if err := viz.WriteTable(out, result.Trajectory, exp.Labels()); err != nil {
			return err
		}
		fmt.Fprintln(out)
	}
	if showPlot {
		fmt.Fprintln(out, viz.PlotAll(result.Trajectory, 80, 15, "prey (green) and predator (red)"))
		fmt.Fprintln(out)
	}

	if !noSave {
		st := storage.New(a.dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(exp.Metadata(cfg.GetInitState(), result), result.Trajectory)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "run id: %s\n", runID)
		log.Info("run saved", "run_id", runID, "dir", a.dataDir)
	}

	printSummary(out, result)
	return nil
}

func printSummary(out io.Writer, result *sim.Result) {
	fmt.Fprintf(out, "completed in %v\n", result.Elapsed)
	fmt.Fprintf(out, "samples: %d\n", len(result.Trajectory))
	if result.Diverged() {
		s := result.Trajectory[result.DivergedAt]
		fmt.Fprintf(out, "diverged: non-finite state at sample %d (t=%.4f)\n", result.DivergedAt, s.T)
	}
	printMetrics(out, result.Metrics)
}

func printMetrics(out io.Writer, metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(out, "\nmetrics:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s: %.6f\n", name, metrics[name])
	}
}
