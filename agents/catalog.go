package agents

import "strings"

// Agent is an analyst persona whose latest signal can be queried from the backend
type Agent struct {
	ID            string
	DisplayName   string
	OperationName string
}

// Backend agents queried for per-ticker signals, in display order
var (
	ValueAgent     = Agent{ID: "value_agent", DisplayName: "Value Agent", OperationName: "ValueAgent"}
	TechnicalAgent = Agent{ID: "technical_agent", DisplayName: "Technical Agent", OperationName: "TechnicalAgent"}
	SentimentAgent = Agent{ID: "sentiment_agent", DisplayName: "Sentiment Agent", OperationName: "SentimentAgent"}
)

// Catalog returns the agents whose signals make up a stock detail
func Catalog() []Agent {
	return []Agent{ValueAgent, TechnicalAgent, SentimentAgent}
}

// Investor personas served by the offline fixture
const (
	WarrenBuffett        = "warren_buffett"
	CathieWood           = "cathie_wood"
	BenGraham            = "ben_graham"
	StanleyDruckenmiller = "stanley_druckenmiller"
	CharlieMunger        = "charlie_munger"
)

var displayNames = map[string]string{
	ValueAgent.ID:        ValueAgent.DisplayName,
	TechnicalAgent.ID:    TechnicalAgent.DisplayName,
	SentimentAgent.ID:    SentimentAgent.DisplayName,
	WarrenBuffett:        "Warren Buffett",
	CathieWood:           "Cathie Wood",
	BenGraham:            "Benjamin Graham",
	StanleyDruckenmiller: "Stanley Druckenmiller",
	CharlieMunger:        "Charlie Munger",
}

var colors = map[string]string{
	WarrenBuffett:        "#1E88E5",
	CathieWood:           "#43A047",
	BenGraham:            "#5E35B1",
	StanleyDruckenmiller: "#E53935",
	CharlieMunger:        "#6D4C41",
}

// DisplayName resolves an agent id. Unknown ids are title-cased from snake case.
func DisplayName(id string) string {
	if name, ok := displayNames[id]; ok {
		return name
	}
	words := strings.FieldsFunc(id, func(r rune) bool { return r == '_' || r == '-' || r == ' ' })
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

// Color is the accent used when rendering an agent's card
func Color(id string) string {
	if c, ok := colors[id]; ok {
		return c
	}
	return "#757575"
}
