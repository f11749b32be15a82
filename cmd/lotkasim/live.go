package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/viz"
)

func newLiveCmd(a *app) *cobra.Command {
	var (
		flags simFlags
		fps   int
	)

	cmd := &cobra.Command{
		Use:   "live",
		Short: "play back a solve in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := flags.resolve(cmd)
			if err != nil {
				return err
			}

			exp, err := experiment.New(experiment.NewRegistry(), cfg)
			if err != nil {
				return err
			}
			result, err := exp.Run(cmd.Context())
			if err != nil {
				return err
			}

			if fps <= 0 {
				fps = 30
			}
			m := viz.NewPlayback(cfg.Model, exp.System(), result.Trajectory, time.Second/time.Duration(fps))

			p := tea.NewProgram(m, tea.WithContext(cmd.Context()))
			_, err = p.Run()
			return err
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVar(&fps, "fps", 30, "samples shown per second")
	return cmd
}
