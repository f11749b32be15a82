package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/lotkasim/internal/dynamo"
)

const (
	playbackWidth  = 60
	playbackHeight = 14
)

type TickMsg time.Time

// Playback animates a solved trajectory one sample per tick. It never
// integrates; the trajectory is computed up front.
type Playback struct {
	traj      dynamo.Trajectory
	labels    []string
	title     string
	frame     int
	running   bool
	interval  time.Duration
	invariant func(dynamo.State) float64
}

// NewPlayback creates a playback over traj. sys supplies labels and, when
// conservative, the invariant shown next to the state.
func NewPlayback(title string, sys dynamo.System, traj dynamo.Trajectory, interval time.Duration) Playback {
	p := Playback{
		traj:     traj,
		labels:   dynamo.Labels(sys),
		title:    title,
		running:  true,
		interval: interval,
	}
	if c, ok := sys.(dynamo.Conserved); ok {
		p.invariant = c.Invariant
	}
	if p.interval <= 0 {
		p.interval = time.Second / 30
	}
	return p
}

func (p Playback) Frame() int     { return p.frame }
func (p Playback) Running() bool  { return p.running }
func (p Playback) Finished() bool { return p.frame >= len(p.traj)-1 }

func (p Playback) tick() tea.Cmd {
	return tea.Tick(p.interval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (p Playback) Init() tea.Cmd {
	return p.tick()
}

func (p Playback) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return p, tea.Quit
		case " ":
			p.running = !p.running
		case "r":
			p.frame = 0
			p.running = true
		case "right", "l":
			p.frame = min(p.frame+1, max(len(p.traj)-1, 0))
		case "left", "h":
			p.frame = max(p.frame-1, 0)
		}
	case TickMsg:
		if p.running && !p.Finished() {
			p.frame++
		}
		return p, p.tick()
	}
	return p, nil
}

func (p Playback) View() string {
	if len(p.traj) == 0 {
		return "no samples\n"
	}

	cur := p.traj[p.frame]
	window := p.traj[:p.frame+1]

	var graph string
	if len(window) > 1 {
		graph = PlotAll(window, playbackWidth, playbackHeight, "")
	}

	var stats strings.Builder
	stats.WriteString(titleStyle.Render(p.title) + "\n\n")
	stats.WriteString(labelStyle.Render("t") + valueStyle.Render(fmt.Sprintf("%.2f", cur.T)) + "\n")
	for i, label := range p.labels {
		if i >= len(cur.Y) {
			break
		}
		stats.WriteString(labelStyle.Render(label) + valueStyle.Render(fmt.Sprintf("%.4f", cur.Y[i])) + "\n")
		stats.WriteString(labelStyle.Render("") + Sparkline(window.Component(i), 24) + "\n")
	}
	if p.invariant != nil {
		stats.WriteString(labelStyle.Render("invariant") + valueStyle.Render(fmt.Sprintf("%.6f", p.invariant(cur.Y))) + "\n")
	}

	status := statusPaused.Render("PAUSED")
	if p.running {
		status = statusRunning.Render("RUNNING")
	}
	if p.Finished() {
		status = statusPaused.Render("DONE")
	}

	progress := 1.0
	if len(p.traj) > 1 {
		progress = float64(p.frame) / float64(len(p.traj)-1)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, graph, "  ", panelStyle.Render(stats.String()))
	return fmt.Sprintf("%s\n%s %s\n%s\n",
		body,
		ProgressBar(progress, 40),
		status,
		keyHint.Render("space pause · r restart · ←/→ step · q quit"),
	)
}
