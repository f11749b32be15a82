// Package viz renders trajectories for the terminal: the reference table,
// asciigraph line plots and an interactive bubbletea playback.
package viz
