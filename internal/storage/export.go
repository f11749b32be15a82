package storage

import (
	"io"
	"math"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

// Number encodes non-finite floats as JSON null.
type Number float64

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return strconv.AppendFloat(nil, f, 'g', -1, 64), nil
}

type ExportData struct {
	ID      string             `json:"id,omitempty"`
	Model   string             `json:"model"`
	T0      float64            `json:"t0"`
	Dt      float64            `json:"dt"`
	Steps   int                `json:"steps"`
	Params  map[string]float64 `json:"params,omitempty"`
	Labels  []string           `json:"labels"`
	Times   []Number           `json:"times"`
	States  [][]Number         `json:"states"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
}

func NewExportData(meta *RunMetadata, traj dynamo.Trajectory) ExportData {
	data := ExportData{
		ID:      meta.ID,
		Model:   meta.Model,
		T0:      meta.T0,
		Dt:      meta.Dt,
		Steps:   meta.Steps,
		Params:  meta.Params,
		Labels:  meta.Labels,
		Times:   make([]Number, len(traj)),
		States:  make([][]Number, len(traj)),
		Metrics: finiteOnly(meta.Metrics),
	}

	for i, s := range traj {
		data.Times[i] = Number(s.T)
		row := make([]Number, len(s.Y))
		for j, v := range s.Y {
			row[j] = Number(v)
		}
		data.States[i] = row
	}

	return data
}

func ExportJSON(w io.Writer, meta *RunMetadata, traj dynamo.Trajectory) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(meta, traj))
}
