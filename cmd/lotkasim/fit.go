package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/automation"
	"github.com/san-kum/lotkasim/internal/config"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/optim"
	"github.com/san-kum/lotkasim/internal/storage"
)

func newFitCmd(a *app) *cobra.Command {
	var grids []string

	cmd := &cobra.Command{
		Use:   "fit [run_id]",
		Short: "grid search coefficients that reproduce a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			if len(run.meta.InitState) != 2 {
				return fmt.Errorf("run %s has no usable initial state", run.meta.ID)
			}

			names := make([]string, 0, len(grids))
			ranges := make([][]float64, 0, len(grids))
			for _, expr := range grids {
				name, values, err := optim.ParseRange(expr)
				if err != nil {
					return err
				}
				names = append(names, name)
				ranges = append(ranges, values)
			}

			search, err := optim.NewGridSearch(names, ranges)
			if err != nil {
				return err
			}

			base := config.DefaultConfig()
			base.Model = run.meta.Model
			base.T0 = run.meta.T0
			base.Dt = run.meta.Dt
			base.Steps = run.meta.Steps
			base.InitState.Prey = run.meta.InitState[0]
			base.InitState.Predator = run.meta.InitState[1]
			for name, v := range run.meta.Params {
				if err := base.SetParam(name, v); err != nil {
					return err
				}
			}

			reg := experiment.NewRegistry()
			build := func(params map[string]float64) (*experiment.Experiment, error) {
				cfg := base.Clone()
				for name, v := range params {
					if err := cfg.SetParam(name, v); err != nil {
						return nil, err
					}
				}
				return experiment.New(reg, cfg)
			}

			a.log.Info("fitting", "run_id", run.meta.ID, "grid_points", search.Size())
			best, err := search.Search(cmd.Context(), build, optim.RMSE(run.traj))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "evaluated %d grid points (%d skipped)\n", best.Evaluated, best.Skipped)
			fmt.Fprintf(out, "rmse: %.6g\n", best.Value)
			keys := make([]string, 0, len(best.Params))
			for k := range best.Params {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(out, "  %s: %g\n", k, best.Params[k])
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&grids, "grid", []string{"alpha=0.05:0.15:11"}, "coefficient range as name=lo:hi:n, repeatable")
	return cmd
}

func newScenarioCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run every step of a yaml scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}

			st := storage.New(a.dataDir)
			if err := st.Init(); err != nil {
				return err
			}

			results, err := automation.RunScenario(cmd.Context(), sc, experiment.NewRegistry(), st, a.log)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STEP\tSTEPS\tDT\tFINAL\tRUN")
			for _, r := range results {
				runID := r.RunID
				if runID == "" {
					runID = "-"
				}
				fmt.Fprintf(w, "%s\t%d\t%g\t%.4f\t%s\n",
					r.Name, r.Config.Steps, r.Config.Dt, []float64(r.Result.Trajectory.Final().Y), runID)
			}
			return w.Flush()
		},
	}
}
