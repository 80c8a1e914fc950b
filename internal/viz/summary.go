package viz

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/pursuitsim/internal/experiment"
)

// Summary renders an evaluation summary, its metrics and a sparkline of
// episode returns inside a panel.
func Summary(title string, s experiment.Summary, metrics map[string]float64, returns []float64) string {
	rows := []string{
		row("episodes", fmt.Sprintf("%d", s.Episodes)),
		row("steps", fmt.Sprintf("%d", s.TotalSteps)),
		row("mean return", fmt.Sprintf("%.3f ± %.3f", s.MeanReturn, s.StdReturn)),
		row("mean length", fmt.Sprintf("%.1f", s.MeanLength)),
		row("mean distance", fmt.Sprintf("%.3f", s.MeanDistance)),
		row("elapsed", s.Elapsed.String()),
	}

	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		rows = append(rows, row(name, fmt.Sprintf("%.6f", metrics[name])))
	}

	if len(returns) > 1 {
		rows = append(rows, "", Subtle.Render("returns ")+Sparkline(returns, 40))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return Panel.Render(Title.Render(title) + "\n\n" + body)
}

func row(label, value string) string {
	return MetricLabel.Render(fmt.Sprintf("%-16s", label)) + MetricValue.Render(value)
}

// Plot draws a series as an asciigraph line chart.
func Plot(data []float64, caption string, height, width int) string {
	if len(data) == 0 {
		return ""
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
	)
}

// PlotMany overlays several equal-purpose series, e.g. per-episode distance.
func PlotMany(series [][]float64, caption string, height, width int) string {
	if len(series) == 0 {
		return ""
	}
	colors := []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Yellow, asciigraph.Green, asciigraph.Magenta, asciigraph.Red}
	used := make([]asciigraph.AnsiColor, len(series))
	for i := range series {
		used[i] = colors[i%len(colors)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(used...),
	)
}

// Table lays out rows under a header with lipgloss column widths.
func Table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i := range widths {
			if i < len(r) {
				widths[i] = max(widths[i], lipgloss.Width(r[i]))
			}
		}
	}

	render := func(cells []string, style lipgloss.Style) string {
		parts := make([]string, len(widths))
		for i, w := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			parts[i] = style.Width(w + 2).Render(cell)
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, parts...), " ")
	}

	lines := []string{render(header, Title)}
	for _, r := range rows {
		lines = append(lines, render(r, lipgloss.NewStyle()))
	}
	return strings.Join(lines, "\n")
}
