// Package api exposes solving and stored runs over HTTP.
package api

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/patrickmn/go-cache"

	"github.com/san-kum/lotkasim/internal/config"
	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/experiment"
	"github.com/san-kum/lotkasim/internal/storage"
)

// MaxSteps bounds a single solve request.
const MaxSteps = 1_000_000

type Server struct {
	store    *storage.Store
	registry *experiment.Registry
	solves   *cache.Cache
	log      *slog.Logger
}

// NewServer creates a server. store may be nil, in which case runs are
// never persisted and the run endpoints report not found. Identical solve
// requests are answered from memory for ttl.
func NewServer(store *storage.Store, reg *experiment.Registry, log *slog.Logger, ttl time.Duration) *Server {
	return &Server{
		store:    store,
		registry: reg,
		solves:   cache.New(ttl, 2*ttl),
		log:      log,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/solve", s.handleSolve)
	e.GET("/v1/runs", s.handleListRuns)
	e.GET("/v1/runs/:id", s.handleGetRun)
	e.GET("/v1/presets", s.handleListPresets)
	e.GET("/healthz", func(c *echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

type SolveRequest struct {
	config.Overrides
	Save bool `json:"save,omitempty"`
}

// SolveResponse carries the solved trajectory. A trajectory that diverged
// is still returned, with Error set and non-finite values encoded as null.
type SolveResponse struct {
	RunID      string             `json:"run_id,omitempty"`
	Cached     bool               `json:"cached"`
	DivergedAt int                `json:"diverged_at"`
	Error      *errorBody         `json:"error,omitempty"`
	Result     storage.ExportData `json:"result"`
}

func (r *SolveResponse) status() int {
	if r.DivergedAt >= 0 {
		return http.StatusUnprocessableEntity
	}
	return http.StatusOK
}

// Config resolves the request over its preset, or the defaults.
func (r *SolveRequest) Config() (*config.Config, error) {
	if r.Steps != nil && *r.Steps > MaxSteps {
		return nil, fmt.Errorf("%w: steps limited to %d", dynamo.ErrInvalidArgument, MaxSteps)
	}
	return r.Resolve(config.DefaultConfig())
}

func cacheKey(cfg *config.Config) string {
	params := cfg.GetParams()
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%x|%x|%d|%x,%x", cfg.Model, cfg.T0, cfg.Dt, cfg.Steps, cfg.InitState.Prey, cfg.InitState.Predator)
	for _, name := range names {
		fmt.Fprintf(&sb, "|%s=%x", name, params[name])
	}
	return sb.String()
}

func (s *Server) handleSolve(c *echo.Context) error {
	req, err := decodeJSON[SolveRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}

	cfg, err := req.Config()
	if err != nil {
		return writeSolveError(c, err)
	}

	key := cacheKey(cfg)
	if !req.Save {
		if hit, ok := s.solves.Get(key); ok {
			resp := *hit.(*SolveResponse)
			resp.Cached = true
			return c.JSON(resp.status(), resp)
		}
	}

	exp, err := experiment.New(s.registry, cfg)
	if err != nil {
		return writeSolveError(c, err)
	}
	res, err := exp.Run(c.Request().Context())
	if err != nil {
		return writeSolveError(c, err)
	}

	meta := exp.Metadata(cfg.GetInitState(), res)
	resp := &SolveResponse{DivergedAt: res.DivergedAt}
	if res.DivergedAt >= 0 {
		resp.Error = &errorBody{
			Message: fmt.Sprintf("trajectory became non-finite at sample %d", res.DivergedAt),
			Type:    "diverged_error",
		}
	}

	if req.Save && s.store != nil {
		runID, err := s.store.Save(meta, res.Trajectory)
		if err != nil {
			s.log.Error("save run", "error", err)
			return writeError(c, http.StatusInternalServerError, "server_error", "failed to save run")
		}
		resp.RunID = runID
	}
	resp.Result = storage.NewExportData(meta, res.Trajectory)

	cached := *resp
	cached.RunID = ""
	s.solves.Set(key, &cached, cache.DefaultExpiration)
	s.log.Info("solved",
		"model", cfg.Model,
		"steps", cfg.Steps,
		"diverged_at", res.DivergedAt,
		"elapsed", res.Elapsed,
	)
	return c.JSON(resp.status(), resp)
}

func (s *Server) handleListRuns(c *echo.Context) error {
	if s.store == nil {
		return c.JSON(http.StatusOK, []storage.RunMetadata{})
	}
	runs, err := s.store.List()
	if err != nil {
		s.log.Error("list runs", "error", err)
		return writeError(c, http.StatusInternalServerError, "server_error", "failed to list runs")
	}
	return c.JSON(http.StatusOK, runs)
}

func (s *Server) handleGetRun(c *echo.Context) error {
	id := c.Param("id")
	if s.store == nil {
		return writeNotFound(c, "run not found")
	}

	meta, err := s.store.Load(id)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			return writeNotFound(c, "run not found")
		}
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	traj, _, err := s.store.LoadTrajectory(id)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
	}
	return c.JSON(http.StatusOK, storage.NewExportData(meta, traj))
}

type presetInfo struct {
	Prey     float64 `json:"prey"`
	Predator float64 `json:"predator"`
	Dt       float64 `json:"dt"`
	Steps    int     `json:"steps"`
}

func (s *Server) handleListPresets(c *echo.Context) error {
	out := make(map[string]presetInfo, len(config.Presets))
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		out[name] = presetInfo{
			Prey:     p.InitState.Prey,
			Predator: p.InitState.Predator,
			Dt:       p.Dt,
			Steps:    p.Steps,
		}
	}
	return c.JSON(http.StatusOK, out)
}

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeSolveError(c *echo.Context, err error) error {
	if errors.Is(err, dynamo.ErrInvalidArgument) {
		return writeBadRequest(c, err.Error())
	}
	return writeError(c, http.StatusInternalServerError, "server_error", err.Error())
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request_error", msg)
}

func writeNotFound(c *echo.Context, msg string) error {
	return writeError(c, http.StatusNotFound, "not_found_error", msg)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return c.JSON(status, map[string]any{
		"error": errorBody{Message: msg, Type: errType},
	})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}
