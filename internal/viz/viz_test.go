package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/pursuitsim/internal/experiment"
)

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil, 5); got != "─────" {
		t.Errorf("expected flat line, got %q", got)
	}
	if got := Sparkline([]float64{1, 2, 3}, 0); got != "" {
		t.Errorf("expected empty for zero width, got %q", got)
	}

	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i)
	}
	got := Sparkline(values, 20)
	if w := lipgloss.Width(got); w != 20 {
		t.Errorf("expected width 20, got %d", w)
	}
	if !strings.Contains(got, "▁") || !strings.Contains(got, "▇") {
		t.Errorf("expected low and high bars in %q", got)
	}
}

func TestSummary(t *testing.T) {
	s := experiment.Summary{
		Episodes:     3,
		MeanReturn:   -120.5,
		StdReturn:    4.25,
		MeanLength:   1000,
		MeanDistance: 88.125,
		TotalSteps:   3000,
		Elapsed:      1500 * time.Millisecond,
	}
	out := Summary("eval follow", s, map[string]float64{"capture_rate": 0.125}, []float64{-130, -120, -111})

	for _, want := range []string{"eval follow", "-120.500 ± 4.250", "3000", "88.125", "capture_rate", "0.125000", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestPlot(t *testing.T) {
	if Plot(nil, "x", 5, 20) != "" {
		t.Error("expected empty plot for no data")
	}
	out := Plot([]float64{1, 3, 2, 5}, "distance", 5, 20)
	if !strings.Contains(out, "distance") {
		t.Errorf("expected caption in plot:\n%s", out)
	}

	many := PlotMany([][]float64{{1, 2, 3}, {3, 2, 1}}, "episodes", 5, 20)
	if !strings.Contains(many, "episodes") {
		t.Errorf("expected caption in plot:\n%s", many)
	}
}

func TestTable(t *testing.T) {
	out := Table([]string{"VALUE", "RETURN"}, [][]string{{"0.5", "-10.0"}, {"1.0", "-123.4"}})
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[2], "-123.4") {
		t.Errorf("expected last row value, got %q", lines[2])
	}
}
