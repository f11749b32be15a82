package viz

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/lotkasim/internal/dynamo"
	"github.com/san-kum/lotkasim/internal/integrators"
	"github.com/san-kum/lotkasim/internal/physics"
)

func TestWriteTableReferenceFormat(t *testing.T) {
	traj := dynamo.Trajectory{
		{T: 0, Y: dynamo.State{40, 9}},
		{T: 0.1, Y: dynamo.State{39.67049570606905, 9.272577678817102}},
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, traj, []string{"prey", "predator"}); err != nil {
		t.Fatal(err)
	}

	want := "Time\tPrey\tPredator\n0.00\t40.00\t9.00\n0.10\t39.67\t9.27\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWriteTableReferenceRun(t *testing.T) {
	lv := physics.NewLotkaVolterra()
	traj, err := integrators.SolveSystem(lv, 0, dynamo.State{40, 9}, 0.1, 100)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteTable(&buf, traj, lv.StateLabels()); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 102 {
		t.Fatalf("expected header plus 101 rows, got %d lines", len(lines))
	}
	if lines[101] != "10.00\t2.90\t17.85" {
		t.Errorf("unexpected final row %q", lines[101])
	}
}

func TestWriteTableNonFinite(t *testing.T) {
	traj := dynamo.Trajectory{{T: 0, Y: dynamo.State{math.NaN(), math.Inf(1)}}}

	var buf bytes.Buffer
	if err := WriteTable(&buf, traj, nil); err != nil {
		t.Fatal(err)
	}
	want := "Time\tX0\tX1\n0.00\tNaN\t+Inf\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestPlotAll(t *testing.T) {
	lv := physics.NewLotkaVolterra()
	traj, _ := integrators.SolveSystem(lv, 0, lv.DefaultState(), 0.1, 50)

	out := PlotAll(traj, 40, 10, "populations")
	if !strings.Contains(out, "populations") {
		t.Error("expected caption in plot")
	}
	if PlotAll(nil, 40, 10, "") != "" {
		t.Error("empty trajectory should not plot")
	}
	if PlotComponent(traj, 5, 40, 10, "") != "" {
		t.Error("out of range component should not plot")
	}
	if PlotComponent(traj, 0, 40, 10, "prey") == "" {
		t.Error("expected prey plot")
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("empty sparkline = %q", got)
	}
	out := Sparkline([]float64{1, 2, math.NaN(), 4}, 4)
	if !strings.Contains(out, "▁") || !strings.Contains(out, "█") {
		t.Errorf("expected low and high bars in %q", out)
	}
}

func newTestPlayback(t *testing.T) Playback {
	t.Helper()
	lv := physics.NewLotkaVolterra()
	traj, err := integrators.SolveSystem(lv, 0, lv.DefaultState(), 0.1, 3)
	if err != nil {
		t.Fatal(err)
	}
	return NewPlayback("lotka-volterra", lv, traj, time.Millisecond)
}

func update(p Playback, msg tea.Msg) (Playback, tea.Cmd) {
	m, cmd := p.Update(msg)
	return m.(Playback), cmd
}

func TestPlaybackAdvancesAndStops(t *testing.T) {
	p := newTestPlayback(t)
	tick := TickMsg(time.Now())

	for i := 0; i < 10; i++ {
		p, _ = update(p, tick)
	}
	if p.Frame() != 3 || !p.Finished() {
		t.Errorf("expected playback to stop at last frame, at %d", p.Frame())
	}
	if !strings.Contains(p.View(), "DONE") {
		t.Error("finished playback should say DONE")
	}
}

func TestPlaybackKeys(t *testing.T) {
	p := newTestPlayback(t)

	p, _ = update(p, tea.KeyMsg{Type: tea.KeySpace})
	if p.Running() {
		t.Fatal("space should pause")
	}
	p, _ = update(p, TickMsg(time.Now()))
	if p.Frame() != 0 {
		t.Error("paused playback must not advance")
	}

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyRight})
	if p.Frame() != 1 {
		t.Errorf("right should step forward, at %d", p.Frame())
	}

	p, _ = update(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if p.Frame() != 0 || !p.Running() {
		t.Error("r should restart playback")
	}

	_, cmd := update(p, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestPlaybackView(t *testing.T) {
	p := newTestPlayback(t)
	view := p.View()
	for _, want := range []string{"lotka-volterra", "prey", "predator", "invariant", "RUNNING"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
