package main

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/analysis"
	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/integrators"
	"github.com/san-kum/lotkasim/internal/physics"
)

func newSweepCmd(a *app) *cobra.Command {
	var (
		flags    simFlags
		param    string
		from, to float64
		n, index int
	)

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "re-solve across a range of one coefficient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}
			reg := experiment.NewRegistry()
			exp, err := experiment.New(reg, cfg)
			if err != nil {
				return err
			}

			labels := exp.Labels()
			if index < 0 || index >= len(labels) {
				return fmt.Errorf("index %d out of range for %v", index, labels)
			}

			points, err := analysis.Sweep(cmd.Context(), exp.NewSystem(reg), analysis.SweepConfig{
				Param: param,
				Min:   from,
				Max:   to,
				N:     n,
				Index: index,
				X0:    cfg.GetInitState(),
				Sim:   cfg.SimConfig(),
			})
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			label := labels[index]
			fmt.Fprintf(w, "%s\tMIN %s\tMAX %s\tFINAL\n", strings.ToUpper(param), label, label)
			for _, p := range points {
				final := fmt.Sprintf("%.4f", []float64(p.Final))
				if p.DivergedAt >= 0 {
					final += fmt.Sprintf(" (diverged @%d)", p.DivergedAt)
				}
				fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%s\n", p.Param, p.Min, p.Max, final)
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&param, "param", "alpha", "coefficient to sweep")
	cmd.Flags().Float64Var(&from, "min", 0.05, "first value")
	cmd.Flags().Float64Var(&to, "max", 0.2, "last value")
	cmd.Flags().IntVar(&n, "n", 8, "number of values")
	cmd.Flags().IntVar(&index, "index", 0, "state component to summarize")
	return cmd
}

// parseInitials reads "prey:predator" pairs separated by commas.
func parseInitials(list string) ([]dynamo.State, error) {
	var initials []dynamo.State
	for _, pair := range strings.Split(list, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.Split(pair, ":")
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: %q is not prey:predator", dynamo.ErrInvalidArgument, pair)
		}
		state := make(dynamo.State, 2)
		for i, p := range parts {
			v, err := cast.ToFloat64E(strings.TrimSpace(p))
			if err != nil {
				return nil, fmt.Errorf("%w: %q is not a number", dynamo.ErrInvalidArgument, p)
			}
			state[i] = v
		}
		initials = append(initials, state)
	}
	if len(initials) == 0 {
		return nil, fmt.Errorf("%w: no initial states given", dynamo.ErrInvalidArgument)
	}
	return initials, nil
}

func newEnsembleCmd(a *app) *cobra.Command {
	var (
		flags    simFlags
		preyList string
	)

	cmd := &cobra.Command{
		Use:   "ensemble",
		Short: "solve several initial states concurrently",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initials, err := parseInitials(preyList)
			if err != nil {
				return err
			}
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			reg := experiment.NewRegistry()
			exp, err := experiment.New(reg, cfg)
			if err != nil {
				return err
			}

			start := time.Now()
			results, err := exp.Ensemble(cmd.Context(), reg, initials)
			if err != nil {
				return err
			}
			a.log.Debug("ensemble complete", "runs", len(results), "elapsed", time.Since(start))

			labels := exp.Labels()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "INIT\tFINAL\tPEAK %s\tPEAK %s\tDRIFT\n", labels[0], labels[1])
			for i, res := range results {
				fmt.Fprintf(w, "%v\t%.4f\t%.4f\t%.4f\t%.3g\n",
					[]float64(initials[i]),
					[]float64(res.Trajectory.Final().Y),
					res.Metrics["peak_"+labels[0]],
					res.Metrics["peak_"+labels[1]],
					res.Metrics["invariant_drift"],
				)
			}
			return w.Flush()
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&preyList, "prey-list", "40:9,10:5,5:2,20:20", "comma separated prey:predator initial states")
	return cmd
}

func newBenchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "benchmark the integrator",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lv := physics.NewLotkaVolterra()
			y0 := lv.DefaultState()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "benchmarking lotka_volterra")
			fmt.Fprintln(out)

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "DT\tSTEPS\tTIME\tSTEPS/SEC\tFINAL")
			for _, dt := range []float64{0.1, 0.01, 0.001} {
				steps := int(100 / dt)

				start := time.Now()
				traj, err := integrators.SolveSystem(lv, 0, y0, dt, steps)
				if err != nil {
					return err
				}
				elapsed := time.Since(start)

				fmt.Fprintf(w, "%g\t%d\t%v\t%.0f\t%.6f\n",
					dt, steps, elapsed, float64(steps)/elapsed.Seconds(), []float64(traj.Final().Y))
			}
			return w.Flush()
		},
	}
}
