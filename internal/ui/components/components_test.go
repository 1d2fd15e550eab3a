package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
)

func TestSpinner(t *testing.T) {
	s := NewSpinner("Loading")
	if s.Label() != "Loading" {
		t.Errorf("Label() = %q, want Loading", s.Label())
	}

	s.SetLabel("Running queries")
	if !strings.Contains(s.ViewWithLabel(), "Running queries") {
		t.Error("ViewWithLabel should contain the label")
	}
	if s.View() == "" {
		t.Error("View returned empty")
	}
	if s.Init() == nil {
		t.Error("Init should return the tick command")
	}
	if _, cmd := s.Update(spinner.TickMsg{}); cmd == nil {
		t.Error("Update should schedule the next tick")
	}

	s.SetLabel("")
	if s.ViewWithLabel() != s.View() {
		t.Error("ViewWithLabel without label should equal View")
	}
}

func TestRenderSpinnerCentered(t *testing.T) {
	view := RenderSpinnerCentered(NewSpinner("Loading..."), 30, 5)
	if !strings.Contains(view, "Loading...") {
		t.Errorf("centered spinner lost its label: %q", view)
	}
	if got := strings.Count(view, "\n") + 1; got != 5 {
		t.Errorf("centered spinner height = %d, want 5", got)
	}
}

func TestRenderLineChart(t *testing.T) {
	tests := []struct {
		name string
		data []float64
		want string
	}{
		{"empty", nil, "No data available"},
		{"single point", []float64{42}, "tokens"},
		{"series", []float64{1, 2, 3, 4}, "tokens"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderLineChart(tt.data, 30, 5, "tokens")
			if !strings.Contains(got, tt.want) {
				t.Errorf("RenderLineChart() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestRenderBarChart(t *testing.T) {
	if got := RenderBarChart(nil, 40, lipgloss.Color("39")); got != "" {
		t.Errorf("empty chart = %q, want empty", got)
	}

	got := RenderBarChart([]Bar{
		{Label: "Cloud", Value: 1500},
		{Label: "Desktop", Value: 500},
	}, 60, lipgloss.Color("39"))

	lines := strings.Split(got, "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if !strings.Contains(lines[0], "Cloud") || !strings.Contains(lines[0], "1,500") {
		t.Errorf("first bar = %q", lines[0])
	}
	if strings.Count(lines[0], "█") <= strings.Count(lines[1], "█") {
		t.Error("larger value should draw the longer bar")
	}
}

func TestRenderBarChart_ZeroValues(t *testing.T) {
	got := RenderBarChart([]Bar{{Label: "a", Value: 0}}, 40, lipgloss.Color("39"))
	if strings.Contains(got, "█") {
		t.Errorf("zero value drew a bar: %q", got)
	}
}

func TestRenderSparkline(t *testing.T) {
	if RenderSparkline(nil, 10) != "" {
		t.Error("empty sparkline should be empty")
	}
	got := RenderSparkline([]float64{0, 5, 10}, 10)
	if got != "▁▄█" {
		t.Errorf("RenderSparkline() = %q, want ▁▄█", got)
	}
	if n := len([]rune(RenderSparkline(make([]float64, 50), 10))); n != 10 {
		t.Errorf("sampled sparkline has %d runes, want 10", n)
	}
}

func TestRenderLegend(t *testing.T) {
	s := RenderLegend([]LegendItem{
		{Label: "Usecase 1", Color: lipgloss.Color("#ffffff")},
		{Label: "Usecase 2", Color: lipgloss.Color("#000000")},
	})
	if !strings.Contains(s, "Usecase 1") || !strings.Contains(s, "Usecase 2") {
		t.Errorf("legend = %q", s)
	}
}

func TestFormatTokens(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{1234567, "1,234,567"},
		{1234.5, "1,234.5"},
		{0.125, "0.13"},
	}
	for _, tt := range tests {
		if got := FormatTokens(tt.in); got != tt.want {
			t.Errorf("FormatTokens(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("a very long label", 8); got != "a ver..." {
		t.Errorf("truncate = %q, want %q", got, "a ver...")
	}
}

func TestShareBar(t *testing.T) {
	got := ShareBar(25, "Usecase 1", 50)
	if !strings.Contains(got, "Usecase 1") || !strings.Contains(got, "25%") {
		t.Errorf("ShareBar() = %q", got)
	}
}

func TestRenderGradientBar(t *testing.T) {
	if RenderGradientBar(50, 0) != "" {
		t.Error("zero width bar should be empty")
	}
	tests := []struct {
		percent    float64
		wantFilled int
	}{
		{0, 0},
		{50, 5},
		{100, 10},
		{150, 10},
		{-10, 0},
	}
	for _, tt := range tests {
		got := RenderGradientBar(tt.percent, 10)
		if n := strings.Count(got, "█"); n != tt.wantFilled {
			t.Errorf("RenderGradientBar(%v) filled %d, want %d", tt.percent, n, tt.wantFilled)
		}
	}
}

func TestLoadingBar(t *testing.T) {
	for _, frame := range []int{0, 30, 60, 119} {
		got := LoadingBar(20, frame, lipgloss.Color("39"))
		if n := strings.Count(got, "▓") + strings.Count(got, "▒") + strings.Count(got, "░"); n != 20 {
			t.Errorf("frame %d: bar has %d cells, want 20", frame, n)
		}
	}
}

func TestNewShareProgress(t *testing.T) {
	p := NewShareProgress(4)
	if p.Width != 10 {
		t.Errorf("Width = %d, want minimum 10", p.Width)
	}
	if p.ViewAs(0.5) == "" {
		t.Error("ViewAs returned empty")
	}
}

func TestInterpolateColor(t *testing.T) {
	if got := interpolateColor("#000000", "#ffffff", 0); got != "#000000" {
		t.Errorf("t=0 gave %s", got)
	}
	if got := interpolateColor("#000000", "#ffffff", 1); got != "#ffffff" {
		t.Errorf("t=1 gave %s", got)
	}
	if got := hexToRGB("nothex"); got != [3]int{0, 0, 0} {
		t.Errorf("invalid hex gave %v", got)
	}
}
