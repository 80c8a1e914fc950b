// Package viz renders run summaries and series for the terminal: lipgloss
// panels for summaries and asciigraph line plots for per-step series.
package viz
