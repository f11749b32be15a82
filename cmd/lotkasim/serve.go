package main

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/san-kum/lotkasim/internal/api"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/logger"
	"github.com/san-kum/lotkasim/internal/storage"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr        string
		cacheTTL    time.Duration
		readTimeout time.Duration
		jsonLogs    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the solve API over http",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logger.FromContext(ctx)
			if jsonLogs {
				level, err := logger.ParseLevel(a.logLevel)
				if err != nil {
					return err
				}
				log = logger.JSON(cmd.ErrOrStderr(), level)
			}

			st := storage.New(a.dataDir)
			if err := st.Init(); err != nil {
				return err
			}

			server := api.NewServer(st, experiment.NewRegistry(), log, cacheTTL)
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)

			log.Info("starting server", "address", addr, "data", a.dataDir)
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&cacheTTL, "cache-ttl", 5*time.Minute, "how long identical solves are served from memory")
	cmd.Flags().DurationVar(&readTimeout, "read-timeout", 10*time.Second, "request header read timeout")
	cmd.Flags().BoolVar(&jsonLogs, "json-logs", false, "log as JSON")
	return cmd
}
