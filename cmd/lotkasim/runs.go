package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/analysis"
	"github.com/san-kum/lotkasim/internal/config"
	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/export"
	"github.com/san-kum/lotkasim/internal/storage"
	"github.com/san-kum/lotkasim/internal/viz"
)

type storedRun struct {
	meta   *storage.RunMetadata
	traj   dynamo.Trajectory
	labels []string
}

func (a *app) loadRun(runID string) (*storedRun, error) {
	st := storage.New(a.dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, err
	}
	traj, labels, err := st.LoadTrajectory(runID)
	if err != nil {
		return nil, err
	}
	if len(traj) == 0 {
		return nil, fmt.Errorf("run %s has no samples", runID)
	}
	if len(labels) != traj.Dim() {
		labels = dynamo.DefaultLabels(traj.Dim())
	}
	return &storedRun{meta: meta, traj: traj, labels: labels}, nil
}

// outputFile returns stdout-like w when path is empty, otherwise a created
// file that the caller must close.
func outputFile(w io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return w, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := storage.New(a.dataDir).List()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "no runs found")
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMODEL\tTIME\tSTEPS\tDT\tINIT\tDIVERGED")
			for _, run := range runs {
				diverged := "-"
				if run.DivergedAt >= 0 {
					diverged = fmt.Sprintf("@%d", run.DivergedAt)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%v\t%s\n",
					run.ID,
					run.Model,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Steps,
					run.Dt,
					run.InitState,
					diverged,
				)
			}
			return w.Flush()
		},
	}
}

func newPlotCmd(a *app) *cobra.Command {
	var width, height int

	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run: %s\n", run.meta.ID)
			fmt.Fprintf(out, "model: %s\n", run.meta.Model)
			fmt.Fprintf(out, "samples: %d\n\n", len(run.traj))

			for i, label := range run.labels {
				caption := fmt.Sprintf("%s vs time", label)
				fmt.Fprintln(out, viz.PlotComponent(run.traj, i, width, height, caption))
				fmt.Fprintln(out)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&width, "width", 80, "plot width")
	cmd.Flags().IntVar(&height, "height", 10, "plot height")
	return cmd
}

func newPhaseCmd(a *app) *cobra.Command {
	var xAxis, yAxis, width, height int

	cmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase space plot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}

			portrait, err := analysis.NewPortrait(run.traj, run.labels, xAxis, yAxis)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "phase space plot: %s\n", run.meta.ID)
			fmt.Fprintf(out, "model: %s\n\n", run.meta.Model)
			fmt.Fprint(out, portrait.ASCII(width, height))
			return nil
		},
	}
	cmd.Flags().IntVar(&xAxis, "x", 0, "state index on the x axis")
	cmd.Flags().IntVar(&yAxis, "y", 1, "state index on the y axis")
	cmd.Flags().IntVar(&width, "width", 60, "plot width")
	cmd.Flags().IntVar(&height, "height", 20, "plot height")
	return cmd
}

func newAnalyzeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis and metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "frequency analysis: %s\n", run.meta.ID)
			fmt.Fprintf(out, "model: %s\n\n", run.meta.Model)

			if run.traj.IsValid() {
				ps := analysis.PowerSpectrum(run.traj.Component(0))
				if len(ps) > 2 {
					fmt.Fprintln(out, asciigraph.Plot(ps[1:],
						asciigraph.Height(12),
						asciigraph.Width(80),
						asciigraph.Caption(fmt.Sprintf("power spectrum (%s)", run.labels[0])),
					))
					fmt.Fprintln(out)
				}
			}

			for i, label := range run.labels {
				period, err := analysis.DominantPeriod(run.traj.Component(i), run.meta.Dt)
				if err != nil {
					fmt.Fprintf(out, "%s: no period (%v)\n", label, err)
					continue
				}
				fmt.Fprintf(out, "%s: dominant period %.3f\n", label, period)
			}

			reg := experiment.NewRegistry()
			sys, err := reg.GetModel(run.meta.Model, run.meta.Params)
			if err != nil {
				printMetrics(out, run.meta.Metrics)
				return nil
			}
			metrics := make(map[string]float64)
			for _, m := range reg.DefaultMetrics(sys) {
				for _, s := range run.traj {
					m.Observe(s)
				}
				metrics[m.Name()] = m.Value()
			}
			printMetrics(out, metrics)
			return nil
		},
	}
}

func newExportCSVCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export trajectory as csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := outputFile(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			if err := storage.WriteCSV(w, run.labels, run.traj); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportJSONCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and trajectory as json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := outputFile(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}
			if err := storage.ExportJSON(w, run.meta, run.traj); err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func newExportSVGCmd(a *app) *cobra.Command {
	var (
		output        string
		phase         bool
		width, height int
	)

	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export time series or phase portrait as svg",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			run, err := a.loadRun(args[0])
			if err != nil {
				return err
			}
			w, closeFn, err := outputFile(cmd.OutOrStdout(), output)
			if err != nil {
				return err
			}

			if phase {
				var portrait *analysis.Portrait
				portrait, err = analysis.NewPortrait(run.traj, run.labels, 0, 1)
				if err == nil {
					err = export.PhaseSVG(w, portrait, width, height, export.Palette[0])
				}
			} else {
				err = export.TimeSeriesSVG(w, run.traj, run.labels, width, height)
			}
			if err != nil {
				closeFn()
				return err
			}
			return closeFn()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&phase, "phase", false, "draw the prey/predator phase portrait")
	cmd.Flags().IntVar(&width, "width", 800, "image width")
	cmd.Flags().IntVar(&height, "height", 500, "image height")
	return cmd
}

func newPresetsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tPREY\tPREDATOR\tDT\tSTEPS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%g\t%g\t%g\t%d\n",
					name, p.InitState.Prey, p.InitState.Predator, p.Dt, p.Steps)
			}
			return w.Flush()
		},
	}
}
