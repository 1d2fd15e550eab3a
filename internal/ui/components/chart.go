// Package components provides reusable UI components for the TUI.
package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/j-veylop/tokenflex-dashboard/internal/ui/styles"
)

var sparkChars = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// RenderLineChart creates a single-series ASCII line chart.
func RenderLineChart(data []float64, width, height int, caption string) string {
	if len(data) == 0 {
		return styles.HelpStyle.Render("No data available")
	}

	// Ensure minimum dimensions
	width = max(width, 20)
	height = max(height, 3)

	// asciigraph needs two points to draw a line
	if len(data) == 1 {
		data = []float64{data[0], data[0]}
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(caption),
		asciigraph.SeriesColors(asciigraph.DodgerBlue),
	)
}

// Bar is one labelled value of a bar chart.
type Bar struct {
	Label string
	Value float64
}

// RenderBarChart creates a horizontal bar chart, largest value full width.
func RenderBarChart(bars []Bar, width int, color lipgloss.Color) string {
	if len(bars) == 0 {
		return ""
	}

	maxVal := 0.0
	maxLabelLen := 0
	for _, b := range bars {
		maxVal = math.Max(maxVal, b.Value)
		maxLabelLen = max(maxLabelLen, lipgloss.Width(b.Label))
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	maxLabelLen = min(maxLabelLen, max(width/3, 8))

	barWidth := max(width-maxLabelLen-14, 10)
	barStyle := lipgloss.NewStyle().Foreground(color)

	lines := make([]string, 0, len(bars))
	for _, b := range bars {
		label := truncate(b.Label, maxLabelLen)
		barLen := max(int(b.Value/maxVal*float64(barWidth)), 0)

		lines = append(lines, fmt.Sprintf("%-*s │%s %s",
			maxLabelLen, label,
			barStyle.Render(strings.Repeat("█", barLen)),
			styles.HelpStyle.Render(FormatTokens(b.Value)),
		))
	}

	return strings.Join(lines, "\n")
}

// RenderSparkline creates a compact inline sparkline chart.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	maxVal := 0.0
	for _, v := range values {
		maxVal = math.Max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	// Sample values to fit width
	var result strings.Builder
	step := math.Max(float64(len(values))/float64(width), 1)

	for i := 0; i < width && int(float64(i)*step) < len(values); i++ {
		val := values[int(float64(i)*step)]
		idx := int(val / maxVal * float64(len(sparkChars)-1))
		idx = min(max(idx, 0), len(sparkChars)-1)
		result.WriteRune(sparkChars[idx])
	}

	return result.String()
}

// RenderLegend creates a chart legend.
func RenderLegend(items []LegendItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		colorBox := lipgloss.NewStyle().Foreground(item.Color).Render("■")
		parts = append(parts, fmt.Sprintf("%s %s", colorBox, item.Label))
	}
	return strings.Join(parts, "  ")
}

// LegendItem represents a single legend entry.
type LegendItem struct {
	Label string
	Color lipgloss.Color
}

// FormatTokens renders a token amount with thousands separators and at
// most two decimals.
func FormatTokens(v float64) string {
	return humanize.Commaf(math.Round(v*100) / 100)
}

func truncate(s string, width int) string {
	if width <= 0 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return string(r[:min(width, len(r))])
	}
	return string(r[:width-3]) + "..."
}
