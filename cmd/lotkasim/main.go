package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/integrators"
	"github.com/san-kum/lotkasim/internal/logger"
	"github.com/san-kum/lotkasim/internal/physics"
	"github.com/san-kum/lotkasim/internal/prompt"
	"github.com/san-kum/lotkasim/internal/viz"
)

// app holds state shared by all commands.
type app struct {
	dataDir  string
	logLevel string
	log      *slog.Logger

	// newLineReader opens the source of interactive input.
	newLineReader func() (prompt.LineReader, func() error)
}

func newApp() *app {
	return &app{
		log: logger.Default(),
		newLineReader: func() (prompt.LineReader, func() error) {
			return prompt.Open(os.Stdin, os.Stdout)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(newApp()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "lotkasim",
		Short: "predator-prey simulation with a classical RK4 integrator",
		Long: `lotkasim integrates the Lotka-Volterra predator-prey model with the
classical fourth-order Runge-Kutta method.

Without a subcommand it asks for the initial prey and predator densities
and prints the reference table: t0=0, dt=0.1, 100 steps.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setupLogger,
		RunE:              a.runReference,
	}

	rootCmd.PersistentFlags().StringVar(&a.dataDir, "data", ".lotkasim", "data directory")
	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(a),
		newListCmd(a),
		newPlotCmd(a),
		newPhaseCmd(a),
		newAnalyzeCmd(a),
		newExportCSVCmd(a),
		newExportJSONCmd(a),
		newExportSVGCmd(a),
		newPresetsCmd(a),
		newSweepCmd(a),
		newEnsembleCmd(a),
		newFitCmd(a),
		newScenarioCmd(a),
		newBenchCmd(a),
		newLiveCmd(a),
		newServeCmd(a),
	)

	return rootCmd
}

func (a *app) setupLogger(cmd *cobra.Command, _ []string) error {
	level, err := logger.ParseLevel(a.logLevel)
	if err != nil {
		return err
	}
	a.log = logger.New(cmd.ErrOrStderr(), level)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx, a.log))
	return nil
}

// runReference reads two densities and prints the 100 step table.
func (a *app) runReference(cmd *cobra.Command, _ []string) error {
	lr, closeFn := a.newLineReader()
	y0, err := prompt.ReadState(lr, prompt.DensityPrompt, 2)
	if cerr := closeFn(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return err
	}

	lv := physics.NewLotkaVolterra()
	traj, err := integrators.SolveSystem(lv, 0, y0, 0.1, 100)
	if err != nil {
		return err
	}

	if i := traj.FirstInvalid(); i >= 0 {
		a.log.Warn("solution became non-finite", "step", i, "t", traj[i].T)
	}
	return viz.WriteTable(cmd.OutOrStdout(), traj, lv.StateLabels())
}
