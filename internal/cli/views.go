package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"sophie-analyst/agents"
	"sophie-analyst/internal/screens"
	"sophie-analyst/internal/settings"
	"sophie-analyst/models"
)

// Palette
const (
	bullishGreen = "#4CAF50"
	bearishRed   = "#E53935"
	neutralAmber = "#FFA000"
	accentPurple = "#7C3AED"
	mutedGray    = "#9E9E9E"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(accentPurple)).
			MarginBottom(1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(mutedGray)).
			Width(22)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(mutedGray))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(bearishRed)).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color(accentPurple)).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(mutedGray)).
			Padding(0, 1)

	bookmarkStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD600"))
)

func colored(color, s string) string {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render(s)
}

// scoreColor picks the SOPHIE score color for its band
func scoreColor(score int) string {
	switch models.ScoreBandFor(score) {
	case models.ScoreHigh:
		return "#4CAF50"
	case models.ScoreMediumHigh:
		return "#3949AB"
	case models.ScoreMediumLow:
		return "#FFB300"
	default:
		return "#E53935"
	}
}

// directionColor colors signals and news sentiment labels
func directionColor(signal string) string {
	switch strings.ToLower(signal) {
	case "positive":
		return bullishGreen
	case "negative":
		return bearishRed
	}
	switch models.SignalDirection(signal) {
	case models.DirectionBullish:
		return bullishGreen
	case models.DirectionBearish:
		return bearishRed
	default:
		return neutralAmber
	}
}

func formatChange(change float64) string {
	if change >= 0 {
		return colored(bullishGreen, fmt.Sprintf("+%.2f%%", change))
	}
	return colored(bearishRed, fmt.Sprintf("%.2f%%", change))
}

func formatScore(score int) string {
	return colored(scoreColor(score), fmt.Sprintf("%d", score))
}

// formatLarge abbreviates market caps and revenues
func formatLarge(v int64) string {
	f := float64(v)
	switch {
	case f >= 1e12:
		return fmt.Sprintf("$%.2fT", f/1e12)
	case f >= 1e9:
		return fmt.Sprintf("$%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("$%.2fM", f/1e6)
	default:
		return fmt.Sprintf("$%d", v)
	}
}

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// optional renders a nullable number, or N/A
func optional[T int64 | float64](v *T, format string) string {
	if v == nil {
		return mutedStyle.Render("N/A")
	}
	return fmt.Sprintf(format, *v)
}

// RenderStockList renders a titled table of stocks. Bookmarked tickers get a star.
func RenderStockList(title string, stocks []models.Stock, bookmarked map[string]bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	if len(stocks) == 0 {
		b.WriteString(mutedStyle.Render("No stocks to show"))
		b.WriteString("\n")
		return b.String()
	}

	for _, s := range stocks {
		star := " "
		if bookmarked[s.Ticker] {
			star = bookmarkStyle.Render("★")
		}
		name := s.Name
		if len(name) > 28 {
			name = name[:27] + "…"
		}
		fmt.Fprintf(&b, "%s %-6s %-28s %10.2f  %s  score %s\n",
			star, s.Ticker, name, s.Price, formatChange(s.Change), formatScore(s.SophieScore))
	}
	return b.String()
}

// RenderDetails renders the details screen with its selected tab
func RenderDetails(state screens.DetailsState) string {
	if state.Error != "" {
		return errorStyle.Render(state.Error) + "\n"
	}
	if state.StockDetail == nil {
		return mutedStyle.Render("No data for "+state.Ticker) + "\n"
	}
	d := state.StockDetail

	var b strings.Builder
	header := fmt.Sprintf("%s  %s", d.Ticker, d.Name)
	if state.IsBookmarked {
		header += " " + bookmarkStyle.Render("★")
	}
	b.WriteString(titleStyle.Render(header))
	b.WriteString("\n")
	fmt.Fprintf(&b, "$%.2f  %s\n\n", d.Price, formatChange(d.Change))

	tabs := make([]string, 0, len(models.AllAnalysisTabs()))
	for _, tab := range models.AllAnalysisTabs() {
		if tab == state.SelectedTab {
			tabs = append(tabs, activeTabStyle.Render(tab.Title()))
		} else {
			tabs = append(tabs, tabStyle.Render(tab.Title()))
		}
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	b.WriteString("\n")

	var body string
	switch state.SelectedTab {
	case models.TabTechnical:
		body = renderTechnicals(d.Technicals)
	case models.TabFundamental:
		body = renderFundamentals(d.Fundamentals)
	case models.TabSentiment:
		body = renderSentiment(d.Sentiment)
	case models.TabAgents:
		body = renderAgents(d.AgentSignals)
	default:
		body = renderSophie(d.SophieAnalysis)
	}
	b.WriteString(panelStyle.Render(body))
	b.WriteString("\n")
	return b.String()
}

func renderSophie(a models.SophieAnalysis) string {
	lines := []string{
		row("Signal", colored(models.SignalColor(a.Signal), a.Signal)),
		row("SOPHIE score", formatScore(a.OverallScore)+"/100"),
		row("Confidence", fmt.Sprintf("%d%%", a.Confidence)),
		"",
		a.Reasoning,
		"",
		row("Short term", a.ShortTermOutlook),
		row("Medium term", a.MediumTermOutlook),
		row("Long term", a.LongTermOutlook),
	}
	lines = append(lines, bulletList("Bullish factors", bullishGreen, a.BullishFactors)...)
	lines = append(lines, bulletList("Bearish factors", bearishRed, a.BearishFactors)...)
	lines = append(lines, bulletList("Risks", neutralAmber, a.Risks)...)
	return strings.Join(lines, "\n")
}

func bulletList(title, color string, items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := []string{"", colored(color, title)}
	for _, item := range items {
		out = append(out, "  • "+item)
	}
	return out
}

func renderTechnicals(t *models.Technicals) string {
	if t == nil {
		return mutedStyle.Render("No technical data available")
	}
	return strings.Join([]string{
		row("RSI (14)", optional(t.RSI, "%.1f")),
		row("MACD", optional(t.MACD, "%.2f")),
		row("SMA 50", optional(t.SMA50, "%.2f")),
		row("SMA 200", optional(t.SMA200, "%.2f")),
		row("52 week high", optional(t.FiftyTwoWeekHigh, "%.2f")),
		row("52 week low", optional(t.FiftyTwoWeekLow, "%.2f")),
		row("Volume", optional(t.Volume, "%d")),
		row("Average volume", optional(t.AverageVolume, "%d")),
	}, "\n")
}

func renderFundamentals(f *models.Fundamentals) string {
	if f == nil {
		return mutedStyle.Render("No fundamental data available")
	}
	large := func(v *int64) string {
		if v == nil {
			return mutedStyle.Render("N/A")
		}
		return formatLarge(*v)
	}
	return strings.Join([]string{
		row("P/E ratio", optional(f.PERatio, "%.2f")),
		row("EPS", optional(f.EPS, "%.2f")),
		row("Dividend yield", optional(f.DividendYield, "%.2f%%")),
		row("Market cap", large(f.MarketCap)),
		row("Revenue", large(f.Revenue)),
		row("Gross margin", optional(f.GrossMargin, "%.1f%%")),
		row("Operating margin", optional(f.OperatingMargin, "%.1f%%")),
		row("Net income margin", optional(f.NetIncomeMargin, "%.1f%%")),
		row("Debt to equity", optional(f.DebtToEquity, "%.2f")),
	}, "\n")
}

func renderSentiment(s *models.Sentiment) string {
	if s == nil {
		return mutedStyle.Render("No sentiment data available")
	}
	lines := []string{
		row("Analyst consensus", colored(directionColor(s.AnalystConsensus), s.AnalystConsensus)),
		row("Analyst rating", optional(s.AnalystRating, "%.1f")),
		row("Price target", optional(s.AnalystPriceTarget, "$%.2f")),
		row("Social sentiment", optional(s.SocialMediaSentiment, "%.2f")),
	}
	if len(s.NewsHeadlines) > 0 {
		lines = append(lines, "", titleStyle.UnsetMarginBottom().Render("Headlines"))
		for _, h := range s.NewsHeadlines {
			lines = append(lines, fmt.Sprintf("%s %s %s",
				colored(directionColor(h.Sentiment), "●"), h.Title, mutedStyle.Render("("+h.Source+", "+h.Date+")")))
		}
	}
	return strings.Join(lines, "\n")
}

func renderAgents(signals []models.AgentSignal) string {
	if len(signals) == 0 {
		return mutedStyle.Render("No agent signals available")
	}
	blocks := make([]string, 0, len(signals))
	for _, s := range signals {
		name := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(agents.Color(s.Agent))).Render(s.AgentDisplayName)
		blocks = append(blocks, strings.Join([]string{
			fmt.Sprintf("%s  %s  %s", name, colored(directionColor(s.Signal), strings.ToUpper(s.Signal)),
				mutedStyle.Render(fmt.Sprintf("%d%% confidence, %s", s.Confidence, s.Date))),
			s.Reasoning,
		}, "\n"))
	}
	return strings.Join(blocks, "\n\n")
}

// RenderDiagnostics renders the connection test status, endpoint list and logs
func RenderDiagnostics(state screens.DiagnosticsState) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Connection Diagnostics"))
	b.WriteString("\n")

	statusColor := neutralAmber
	switch state.Status {
	case screens.StatusConnected:
		statusColor = bullishGreen
	case screens.StatusFailed:
		statusColor = bearishRed
	}
	b.WriteString(row("Status", colored(statusColor, state.Status)) + "\n")
	b.WriteString(row("Last test", state.LastTestTime) + "\n")
	if state.CurrentEndpoint != "" {
		b.WriteString(row("Current endpoint", state.CurrentEndpoint) + "\n")
	}

	if len(state.Endpoints) > 0 {
		b.WriteString("\nEndpoints\n")
		for _, e := range state.Endpoints {
			marker := "  "
			if e == state.CurrentEndpoint {
				marker = colored(bullishGreen, "→") + " "
			}
			b.WriteString(marker + e + "\n")
		}
	}

	if len(state.Logs) > 0 {
		b.WriteString("\nLog\n")
		for _, line := range state.Logs {
			b.WriteString(mutedStyle.Render("  "+line) + "\n")
		}
	}

	if len(state.FailureLog) > 0 {
		b.WriteString("\nFailures\n")
		for _, f := range state.FailureLog {
			b.WriteString(colored(bearishRed, "  "+f.String()) + "\n")
		}
	}

	if state.NetworkInfo != nil {
		b.WriteString("\nNetwork interfaces\n")
		for _, iface := range state.NetworkInfo.Interfaces {
			fmt.Fprintf(&b, "  %-10s %s\n", iface.Name, strings.Join(iface.Addresses, ", "))
		}
		b.WriteString("\nReachability\n")
		for _, r := range state.NetworkInfo.Reachability {
			if r.Reachable {
				fmt.Fprintf(&b, "  %s %s %s\n", colored(bullishGreen, "✓"), r.Target, mutedStyle.Render(r.Latency.String()))
			} else {
				fmt.Fprintf(&b, "  %s %s %s\n", colored(bearishRed, "✗"), r.Target, mutedStyle.Render(r.Error))
			}
		}
		for _, e := range state.NetworkInfo.Errors {
			b.WriteString(errorStyle.Render("  "+e) + "\n")
		}
	}
	return b.String()
}

// SettingsView is what `settings show` prints
type SettingsView struct {
	Path             string   `json:"path"`
	GraphQLEndpoints []string `json:"graphql_endpoints"`
	StoredEndpoints  bool     `json:"stored_endpoints"`
	APIToken         string   `json:"api_token"`
	UseMock          bool     `json:"use_mock"`
	UpdatedAt        string   `json:"updated_at,omitempty"`
}

func RenderSettings(v SettingsView) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Settings"))
	b.WriteString("\n")
	b.WriteString(row("File", v.Path) + "\n")

	source := "defaults"
	if v.StoredEndpoints {
		source = "stored"
	}
	b.WriteString(row("Endpoints", mutedStyle.Render("("+source+")")) + "\n")
	for i, e := range v.GraphQLEndpoints {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, e)
	}

	token := v.APIToken
	if token == "" {
		token = mutedStyle.Render("not set")
	}
	b.WriteString(row("API token", token) + "\n")
	b.WriteString(row("Mock data", fmt.Sprintf("%t", v.UseMock)) + "\n")
	if v.UpdatedAt != "" {
		b.WriteString(row("Updated", v.UpdatedAt) + "\n")
	}
	return b.String()
}

func RenderValidation(results []settings.ValidationResult) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Endpoint validation"))
	b.WriteString("\n")
	for _, r := range results {
		if r.Valid {
			fmt.Fprintf(&b, "%s %s %s\n", colored(bullishGreen, "✓"), r.Endpoint,
				mutedStyle.Render(fmt.Sprintf("%dms", r.Latency.Milliseconds())))
		} else {
			fmt.Fprintf(&b, "%s %s %s\n", colored(bearishRed, "✗"), r.Endpoint, errorStyle.Render(r.Message))
		}
	}
	return b.String()
}
