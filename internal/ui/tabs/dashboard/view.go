package dashboard

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/j-veylop/tokenflex-dashboard/internal/models"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/components"
	"github.com/j-veylop/tokenflex-dashboard/internal/ui/styles"
)

// maxBarsPerPanel caps the categories drawn per usecase.
const maxBarsPerPanel = 8

// View renders the dashboard component.
func (m *Model) View() string {
	if m.state.IsInitialLoading() {
		return components.RenderSpinnerCentered(m.spinner, m.width, m.height)
	}

	contentWidth := max(m.width-6, 40)

	sections := []string{
		m.renderTitle(),
		m.renderContracts(contentWidth),
		m.renderUsage(contentWidth),
	}

	m.viewport.SetContent(lipgloss.JoinVertical(lipgloss.Left, sections...))

	return styles.DocStyle.
		Width(m.width).
		Height(m.height).
		Render(m.viewport.View())
}

func (m *Model) renderTitle() string {
	title := styles.TitleStyle.Render("Token Flex Dashboard")
	subtitle := styles.HelpStyle.Render("Contract usage from the Autodesk Token Flex API")
	return lipgloss.JoinVertical(lipgloss.Left, title, subtitle, "")
}

func (m *Model) renderContracts(width int) string {
	contracts := m.state.GetContracts()

	titleIcon := lipgloss.NewStyle().Foreground(styles.Primary).Render("◈")
	rows := []string{fmt.Sprintf("%s %s", titleIcon, styles.CardTitleStyle.Render("Contracts")), ""}

	if len(contracts) == 0 {
		emptyIcon := lipgloss.NewStyle().Foreground(styles.Subtle).Render("○")
		rows = append(rows,
			fmt.Sprintf("  %s %s", emptyIcon, styles.HelpStyle.Render("No contracts available")),
			styles.InfoTextStyle.Render("  ╰─▶ Press r to reload once the server is logged in"),
		)
		return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	}

	selected := m.state.GetSelectedIndex()
	loaded := m.state.GetBatch()
	for i, c := range contracts {
		marker := "  "
		name := c.ContractNumber
		if i == selected {
			marker = styles.FocusedStyle.Render("▸ ")
			name = styles.SelectedListItemStyle.Render(name)
		}

		line := marker + name
		if loaded != nil && loaded.AccountID == c.ContractNumber {
			line += " " + styles.SuccessTextStyle.Render("● loaded")
		}
		rows = append(rows, line)
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderUsage(width int) string {
	if m.state.IsLoading("batch") {
		return m.renderUsageLoading(width)
	}

	batch := m.state.GetBatch()
	if batch.Len() == 0 {
		hint := styles.HelpStyle.Render("Select a contract and press enter to run the usage queries.")
		return styles.CardStyle.Width(width).Render(hint)
	}

	sections := []string{m.renderSummary(batch, width)}

	panelWidth := width
	if width >= 120 {
		panelWidth = (width - 2) / 2
	}
	panels := make([]string, 0, batch.Len())
	for i, r := range batch.Results {
		panels = append(panels, m.renderPanel(i, r, panelWidth))
	}
	sections = append(sections, layoutPanels(panels, panelWidth < width)...)
	sections = append(sections, m.renderFocusedChart(batch, width))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderUsageLoading(width int) string {
	account, _ := m.state.SelectedAccount()
	rows := []string{
		styles.CardTitleStyle.Render(fmt.Sprintf("Running usage queries for %s", account)),
		"",
	}
	for i := range models.DefaultQuerySpecs() {
		label := lipgloss.NewStyle().Width(12).Render(fmt.Sprintf("Usecase %d", i+1))
		rows = append(rows, label+components.LoadingBar(width-18, m.animationFrame+i*10, styles.PanelColor(i)))
	}
	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderSummary(batch *models.UsageBatch, width int) string {
	total := batch.TotalTokens()

	header := fmt.Sprintf("%s  %s",
		styles.CardTitleStyle.Render("Contract "+batch.AccountID),
		styles.HelpStyle.Render("fetched "+batch.FetchedAt.Local().Format("2006-01-02 15:04:05")),
	)
	rows := []string{
		header,
		fmt.Sprintf("Total tokens: %s across %d usecases",
			lipgloss.NewStyle().Bold(true).Render(components.FormatTokens(total)), batch.Len()),
		"",
	}

	for i, r := range batch.Results {
		share := 0.0
		if total > 0 {
			share = r.TotalTokens() / total * 100
		}
		rows = append(rows, components.ShareBar(share, fmt.Sprintf("Usecase %d", i+1), width-4))
	}

	return styles.CardStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (m *Model) renderPanel(i int, r models.QueryResult, width int) string {
	color := styles.PanelColor(i)
	title := lipgloss.NewStyle().Foreground(color).Bold(true).Render(fmt.Sprintf("Usecase %d", i+1))
	if i == m.focusedPanel {
		title += styles.HelpStyle.Render("  (charted below)")
	}

	body := styles.HelpStyle.Render("No rows returned")
	if bars := panelBars(r, maxBarsPerPanel); len(bars) > 0 {
		body = components.RenderBarChart(bars, width-4, color)
	}

	border := styles.CardStyle
	if i == m.focusedPanel {
		border = border.BorderForeground(color)
	}
	return border.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body))
}

func (m *Model) renderFocusedChart(batch *models.UsageBatch, width int) string {
	idx := min(m.focusedPanel, batch.Len()-1)
	r := batch.Results[idx]

	values := make([]float64, 0, len(r.Result))
	for _, row := range r.Result {
		v, _ := row.Tokens()
		values = append(values, v)
	}

	caption := fmt.Sprintf("Usecase %d: tokens per row", idx+1)
	chart := components.RenderLineChart(values, width-14, 8, caption)
	return styles.CardStyle.Width(width).Render(chart)
}

// layoutPanels arranges panels one per row, or two per row when wide.
func layoutPanels(panels []string, twoColumns bool) []string {
	if !twoColumns {
		return panels
	}
	rows := make([]string, 0, (len(panels)+1)/2)
	for i := 0; i < len(panels); i += 2 {
		if i+1 < len(panels) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, panels[i], " ", panels[i+1]))
		} else {
			rows = append(rows, panels[i])
		}
	}
	return rows
}

// panelBars sums a result's tokens per row label, largest first.
func panelBars(r models.QueryResult, limit int) []components.Bar {
	index := make(map[string]int)
	var bars []components.Bar
	for _, row := range r.Result {
		v, ok := row.Tokens()
		if !ok {
			continue
		}
		label := strings.TrimSpace(row.Label())
		if label == "" {
			label = "(unlabelled)"
		}
		if i, seen := index[label]; seen {
			bars[i].Value += v
			continue
		}
		index[label] = len(bars)
		bars = append(bars, components.Bar{Label: label, Value: v})
	}

	slices.SortStableFunc(bars, func(a, b components.Bar) int {
		return cmp.Compare(b.Value, a.Value)
	})
	if limit > 0 && len(bars) > limit {
		bars = bars[:limit]
	}
	return bars
}
