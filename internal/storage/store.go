package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

var ErrRunNotFound = errors.New("storage: run not found")

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID        string             `json:"id"`
	Model     string             `json:"model"`
	Timestamp time.Time          `json:"timestamp"`
	T0        float64            `json:"t0"`
	Dt        float64            `json:"dt"`
	Steps     int                `json:"steps"`
	Params    map[string]float64 `json:"params"`
	InitState []float64          `json:"init_state"`
	Labels    []string           `json:"labels"`
	// Metrics holds only finite values; JSON cannot represent NaN or Inf.
	Metrics    map[string]float64 `json:"metrics"`
	DivergedAt int                `json:"diverged_at"`
}

// Save writes a run directory holding metadata.json and trajectory.csv and
// returns the generated run ID.
func (s *Store) Save(meta *RunMetadata, traj dynamo.Trajectory) (string, error) {
	if meta.ID == "" {
		meta.ID = fmt.Sprintf("%s_%s", meta.Model, uuid.NewString()[:8])
	}
	if meta.Timestamp.IsZero() {
		meta.Timestamp = time.Now()
	}
	if len(meta.Labels) == 0 {
		meta.Labels = dynamo.DefaultLabels(traj.Dim())
	}
	meta.Metrics = finiteOnly(meta.Metrics)

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), meta); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("write metadata for %s: %w", meta.ID, err)
	}
	if err := writeTrajectory(filepath.Join(runDir, trajectoryFile), meta.Labels, traj); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("write trajectory for %s: %w", meta.ID, err)
	}

	return meta.ID, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeTrajectory(path string, labels []string, traj dynamo.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteCSV(f, labels, traj)
}

// WriteCSV writes a "time,<labels>" header and one row per sample. Values
// are written losslessly, NaN and Inf included.
func WriteCSV(out io.Writer, labels []string, traj dynamo.Trajectory) error {
	w := csv.NewWriter(out)

	header := append([]string{"time"}, labels...)
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, len(header))
	for _, s := range traj {
		row = row[:0]
		row = append(row, formatFloat(s.T))
		for _, v := range s.Y {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func finiteOnly(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out[k] = v
		}
	}
	return out
}

// List returns all stored runs, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}

		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})

	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	if !validRunID(runID) {
		return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}

	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode metadata for %s: %w", runID, err)
	}

	return &meta, nil
}

// LoadTrajectory reads the stored samples of a run together with the
// component labels from the CSV header.
func (s *Store) LoadTrajectory(runID string) (dynamo.Trajectory, []string, error) {
	if !validRunID(runID) {
		return nil, nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
	}

	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, fmt.Errorf("%w: %q", ErrRunNotFound, runID)
		}
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}

	if len(records) == 0 {
		return dynamo.Trajectory{}, nil, nil
	}

	labels := records[0][1:]
	traj := make(dynamo.Trajectory, 0, len(records)-1)

	for i := 1; i < len(records); i++ {
		record := records[i]

		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("%s line %d: %w", trajectoryFile, i+1, err)
		}

		state := make(dynamo.State, len(record)-1)
		for j := 1; j < len(record); j++ {
			state[j-1], err = strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", trajectoryFile, i+1, err)
			}
		}
		traj = append(traj, dynamo.Sample{T: t, Y: state})
	}

	return traj, labels, nil
}

func validRunID(id string) bool {
	return id != "" && id != "." && id != ".." && filepath.Base(id) == id
}
