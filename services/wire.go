package services

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Wire types mirror the backend schema. Pointers mark fields the backend may leave null.

type wireTicker struct {
	Ticker string `json:"ticker"`
}

type wireCompany struct {
	Ticker *string `json:"ticker"`
	Name   *string `json:"name"`
}

type wirePrice struct {
	Close decimal.Decimal `json:"close"`
}

type wireAnalysisSummary struct {
	OverallScore *int    `json:"overall_score"`
	Signal       *string `json:"signal"`
}

type wireStock struct {
	Ticker               string               `json:"ticker"`
	Company              *wireCompany         `json:"company"`
	Prices               []wirePrice          `json:"prices"`
	LatestSophieAnalysis *wireAnalysisSummary `json:"latestSophieAnalysis"`
}

type wireDetailStock struct {
	Company *wireCompany `json:"company"`
	Prices  []wirePrice  `json:"prices"`
}

type wireFundamentals struct {
	PERatio          *float64 `json:"pe_ratio"`
	EarningsPerShare *float64 `json:"earnings_per_share"`
	// overall_signal arrives as either a number or a numeric string
	OverallSignal json.RawMessage `json:"overall_signal"`
	DebtToEquity  *float64        `json:"debt_to_equity"`
}

type wireTechnicals struct {
	RSI14       *float64 `json:"rsi_14"`
	VolumeRatio *float64 `json:"volume_ratio"`
}

type wireAnalysis struct {
	Signal            *string  `json:"signal"`
	Confidence        *int     `json:"confidence"`
	OverallScore      *int     `json:"overall_score"`
	Reasoning         *string  `json:"reasoning"`
	ShortTermOutlook  *string  `json:"short_term_outlook"`
	MediumTermOutlook *string  `json:"medium_term_outlook"`
	LongTermOutlook   *string  `json:"long_term_outlook"`
	BullishFactors    []string `json:"bullish_factors"`
	BearishFactors    []string `json:"bearish_factors"`
	Risks             []string `json:"risks"`
}

type wireAgentSignal struct {
	Agent      *string `json:"agent"`
	Signal     *string `json:"signal"`
	Reasoning  *string `json:"reasoning"`
	Confidence *int    `json:"confidence"`
	BizDate    *string `json:"biz_date"`
}

type trendingStocksData struct {
	CoveredTickers []wireTicker `json:"coveredTickers"`
	BatchStocks    []wireStock  `json:"batchStocks"`
}

type batchStocksData struct {
	BatchStocks []wireStock `json:"batchStocks"`
}

type stockDetailData struct {
	Stock                *wireDetailStock  `json:"stock"`
	LatestFundamentals   *wireFundamentals `json:"latestFundamentals"`
	LatestTechnicals     *wireTechnicals   `json:"latestTechnicals"`
	LatestSophieAnalysis *wireAnalysis     `json:"latestSophieAnalysis"`
}

type sophieAnalysisData struct {
	LatestSophieAnalysis *wireAnalysis `json:"latestSophieAnalysis"`
}

type agentSignalData struct {
	LatestAgentSignal *wireAgentSignal `json:"latestAgentSignal"`
}

type searchStocksData struct {
	SearchStocks []wireTicker `json:"searchStocks"`
}
