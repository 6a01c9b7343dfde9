package charts_test

import (
	"strings"
	"testing"

	"github.com/mediboard/mediboard/internal/charts"
)

func TestBarsRendersSVG(t *testing.T) {
	svg, err := charts.Bars(0, 0, []float64{3, 7, 2}, []string{"FR", "BE", "DE"}, charts.BarOpts{
		Title: "Requests by country",
	})
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	markup := string(svg)
	if !strings.HasPrefix(markup, "<svg") || !strings.HasSuffix(markup, "</svg>") {
		t.Fatalf("expected svg document")
	}
	for _, label := range []string{"FR", "BE", "DE"} {
		if !strings.Contains(markup, label) {
			t.Fatalf("expected label %s in markup", label)
		}
	}
	if !strings.Contains(markup, "Requests by country") {
		t.Fatalf("expected title in markup")
	}
	if strings.Count(markup, "<rect") != 3 {
		t.Fatalf("expected one bar per label, got %d rects", strings.Count(markup, "<rect"))
	}
}

func TestBarsRejectsMismatchedLabels(t *testing.T) {
	if _, err := charts.Bars(0, 0, []float64{1, 2}, []string{"a"}, charts.BarOpts{}); err == nil {
		t.Fatalf("expected length mismatch error")
	}
	if _, err := charts.Bars(0, 0, nil, nil, charts.BarOpts{}); err == nil {
		t.Fatalf("expected empty series error")
	}
}

func TestGroupedBarsRendersLegend(t *testing.T) {
	svg, err := charts.GroupedBars(0, 0,
		[]float64{10, 20},
		[]float64{1, 2},
		[]string{"9", "10"},
		charts.BarOpts{SeriesALabel: "Minutes", SeriesBLabel: "Active users"},
	)
	if err != nil {
		t.Fatalf("grouped bars: %v", err)
	}
	markup := string(svg)
	if !strings.Contains(markup, "Minutes") || !strings.Contains(markup, "Active users") {
		t.Fatalf("expected legend labels in markup")
	}
	// Two bars per group plus two legend swatches.
	if strings.Count(markup, "<rect") != 6 {
		t.Fatalf("expected 6 rects, got %d", strings.Count(markup, "<rect"))
	}
}

func TestBarsEscapesLabels(t *testing.T) {
	svg, err := charts.Bars(0, 0, []float64{1}, []string{`<script>"x"</script>`}, charts.BarOpts{})
	if err != nil {
		t.Fatalf("bars: %v", err)
	}
	if strings.Contains(string(svg), "<script>") {
		t.Fatalf("labels must be escaped")
	}
}
