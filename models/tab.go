package models

import (
	"fmt"
	"strings"
)

// AnalysisTab selects which section of a stock detail is shown
type AnalysisTab string

const (
	TabSophie      AnalysisTab = "SOPHIE"
	TabTechnical   AnalysisTab = "TECHNICAL"
	TabFundamental AnalysisTab = "FUNDAMENTAL"
	TabSentiment   AnalysisTab = "SENTIMENT"
	TabAgents      AnalysisTab = "AGENTS"
)

// AllAnalysisTabs returns the tabs in display order
func AllAnalysisTabs() []AnalysisTab {
	return []AnalysisTab{TabSophie, TabTechnical, TabFundamental, TabSentiment, TabAgents}
}

// ParseAnalysisTab resolves a tab name case-insensitively
func ParseAnalysisTab(s string) (AnalysisTab, error) {
	want := AnalysisTab(strings.ToUpper(strings.TrimSpace(s)))
	for _, tab := range AllAnalysisTabs() {
		if tab == want {
			return tab, nil
		}
	}
	return "", fmt.Errorf("unknown analysis tab %q", s)
}

// Title is the label shown for the tab
func (t AnalysisTab) Title() string {
	switch t {
	case TabSophie:
		return "SOPHIE"
	case TabAgents:
		return "AI Agents"
	default:
		return strings.ToUpper(string(t[:1])) + strings.ToLower(string(t[1:]))
	}
}
