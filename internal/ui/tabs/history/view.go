package history

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tokenflex-dashboard/internal/ui/components"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/styles"
)

// View renders the history tab.
func (m *Model) View() string {
	if m.state.IsLoading("history") {
		return m.render(styles.HelpStyle.Render("Loading history..."))
	}

	account, batches := m.batches()
	if account == "" {
		return m.render(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("History"),
			styles.HelpStyle.Render("Select a contract on the dashboard to see its past batches."),
		))
	}
	if len(batches) == 0 {
		return m.render(lipgloss.JoinVertical(lipgloss.Left,
			styles.TitleStyle.Render("History of "+account),
			styles.HelpStyle.Render("No batches recorded yet."),
			styles.HelpStyle.Render("Batches appear here after usage queries complete on the server."),
		))
	}

	m.syncRows()

	totals := make([]float64, len(batches))
	for i, b := range batches {
		totals[i] = b.TotalTokens()
	}
	chartWidth := max(m.width-20, 20)
	chart := components.RenderLineChart(totals, chartWidth, max(m.height/2-8, 4), "total tokens per batch")

	header := fmt.Sprintf("%s  %s",
		styles.TitleStyle.Render("History of "+account),
		styles.HelpStyle.Render(fmt.Sprintf("%d batches  %s", len(batches), components.RenderSparkline(totals, 20))),
	)

	return m.render(lipgloss.JoinVertical(lipgloss.Left,
		header,
		m.table.View(),
		"",
		styles.CardStyle.Render(chart),
	))
}

func (m *Model) render(content string) string {
	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(content)
}
