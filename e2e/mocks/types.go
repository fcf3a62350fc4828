package mocks

// Price is one daily close
type Price struct {
	Close float64 `json:"close"`
}

// Company identifies the issuer of a stock
type Company struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// AnalysisSummary is the score attached to list rows
type AnalysisSummary struct {
	OverallScore int    `json:"overall_score"`
	Signal       string `json:"signal"`
}

// Stock is a batchStocks row
type Stock struct {
	Ticker               string           `json:"ticker"`
	Company              Company          `json:"company"`
	Prices               []Price          `json:"prices"`
	LatestSophieAnalysis *AnalysisSummary `json:"latestSophieAnalysis"`
}

// Fundamentals mirrors latestFundamentals. OverallSignal is sent as a string like the live backend.
type Fundamentals struct {
	PERatio          float64 `json:"pe_ratio"`
	EarningsPerShare float64 `json:"earnings_per_share"`
	OverallSignal    string  `json:"overall_signal"`
	DebtToEquity     float64 `json:"debt_to_equity"`
}

// Technicals mirrors latestTechnicals
type Technicals struct {
	RSI14       float64 `json:"rsi_14"`
	VolumeRatio float64 `json:"volume_ratio"`
}

// Analysis mirrors latestSophieAnalysis
type Analysis struct {
	Signal            string   `json:"signal"`
	Confidence        int      `json:"confidence"`
	OverallScore      int      `json:"overall_score"`
	Reasoning         string   `json:"reasoning"`
	ShortTermOutlook  string   `json:"short_term_outlook"`
	MediumTermOutlook string   `json:"medium_term_outlook"`
	LongTermOutlook   string   `json:"long_term_outlook"`
	BullishFactors    []string `json:"bullish_factors"`
	BearishFactors    []string `json:"bearish_factors"`
	Risks             []string `json:"risks"`
}

// AgentSignal mirrors latestAgentSignal
type AgentSignal struct {
	Agent      string `json:"agent"`
	Signal     string `json:"signal"`
	Reasoning  string `json:"reasoning"`
	Confidence int    `json:"confidence"`
	BizDate    string `json:"biz_date"`
}

// TickerData is everything the server knows about one ticker
type TickerData struct {
	Stock        Stock
	Fundamentals *Fundamentals
	Technicals   *Technicals
	Analysis     *Analysis
	// AgentSignals is keyed by agent id
	AgentSignals map[string]AgentSignal
}

// Fixtures is the data set served by a GraphQLServer
type Fixtures struct {
	// Covered lists the tickers returned by coveredTickers, in order
	Covered []string
	Tickers map[string]TickerData
}

// RequestLog records an incoming GraphQL request
type RequestLog struct {
	OperationName string
	Variables     map[string]any
	Authorization string
}

func closes(values ...float64) []Price {
	out := make([]Price, len(values))
	for i, v := range values {
		out[i] = Price{Close: v}
	}
	return out
}

// DefaultFixtures serves three covered tickers with full detail for AAPL and NVDA
func DefaultFixtures() Fixtures {
	return Fixtures{
		Covered: []string{"AAPL", "NVDA", "MSFT"},
		Tickers: map[string]TickerData{
			"AAPL": {
				Stock: Stock{
					Ticker:               "AAPL",
					Company:              Company{Ticker: "AAPL", Name: "Apple Inc."},
					Prices:               closes(181.20, 184.23, 187.68),
					LatestSophieAnalysis: &AnalysisSummary{OverallScore: 78, Signal: "BULLISH"},
				},
				Fundamentals: &Fundamentals{PERatio: 30.56, EarningsPerShare: 6.14, OverallSignal: "0.62", DebtToEquity: 1.79},
				Technicals:   &Technicals{RSI14: 61.2, VolumeRatio: 1.1},
				Analysis: &Analysis{
					Signal:            "BULLISH",
					Confidence:        74,
					OverallScore:      78,
					Reasoning:         "Services growth offsets slower hardware cycles.",
					ShortTermOutlook:  "Range bound ahead of earnings.",
					MediumTermOutlook: "Margin expansion from services.",
					LongTermOutlook:   "Ecosystem lock-in supports pricing power.",
					BullishFactors:    []string{"Services revenue growth", "Buyback program"},
					BearishFactors:    []string{"China demand"},
					Risks:             []string{"Regulatory pressure on the App Store"},
				},
				AgentSignals: map[string]AgentSignal{
					"value_agent":     {Agent: "value_agent", Signal: "NEUTRAL", Reasoning: "Fairly valued on earnings.", Confidence: 60, BizDate: "2026-10-16"},
					"technical_agent": {Agent: "technical_agent", Signal: "BULLISH", Reasoning: "Above the 50 day average.", Confidence: 68, BizDate: "2026-10-16"},
				},
			},
			"NVDA": {
				Stock: Stock{
					Ticker:               "NVDA",
					Company:              Company{Ticker: "NVDA", Name: "NVIDIA Corporation"},
					Prices:               closes(890.10, 907.40, 953.86),
					LatestSophieAnalysis: &AnalysisSummary{OverallScore: 92, Signal: "BULLISH"},
				},
				Fundamentals: &Fundamentals{PERatio: 72.4, EarningsPerShare: 12.96, OverallSignal: "0.81", DebtToEquity: 0.22},
				Technicals:   &Technicals{RSI14: 71.8, VolumeRatio: 1.6},
				Analysis: &Analysis{
					Signal:            "BULLISH",
					Confidence:        88,
					OverallScore:      92,
					Reasoning:         "Data center demand keeps outrunning supply.",
					ShortTermOutlook:  "Momentum remains strong.",
					MediumTermOutlook: "New architecture ramps through next year.",
					LongTermOutlook:   "Platform position in accelerated computing.",
					BullishFactors:    []string{"Data center growth", "Software moat"},
					BearishFactors:    []string{"Valuation"},
					Risks:             []string{"Export controls", "Customer concentration"},
				},
				AgentSignals: map[string]AgentSignal{
					"value_agent":     {Agent: "value_agent", Signal: "BEARISH", Reasoning: "Priced for perfection.", Confidence: 55, BizDate: "2026-10-16"},
					"technical_agent": {Agent: "technical_agent", Signal: "BULLISH", Reasoning: "Trend intact with rising volume.", Confidence: 80, BizDate: "2026-10-16"},
					"sentiment_agent": {Agent: "sentiment_agent", Signal: "BULLISH", Reasoning: "Coverage overwhelmingly positive.", Confidence: 77, BizDate: "2026-10-16"},
				},
			},
			"MSFT": {
				Stock: Stock{
					Ticker:               "MSFT",
					Company:              Company{Ticker: "MSFT", Name: "Microsoft Corporation"},
					Prices:               closes(394.00, 400.00, 405.32),
					LatestSophieAnalysis: &AnalysisSummary{OverallScore: 85, Signal: "BULLISH"},
				},
			},
		},
	}
}
