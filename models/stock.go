package models

// Stock is the summary row shown in trending, search and bookmark lists
type Stock struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Change      float64 `json:"change"` // percent change between the two latest closes
	SophieScore int     `json:"sophie_score"`
	Color       string  `json:"color"`
}

// StockDetail is the full per-ticker view. Nil sections mean the backend had no data.
type StockDetail struct {
	Ticker         string         `json:"ticker"`
	Name           string         `json:"name"`
	Price          float64        `json:"price"`
	Change         float64        `json:"change"`
	SophieAnalysis SophieAnalysis `json:"sophie_analysis"`
	Fundamentals   *Fundamentals  `json:"fundamentals,omitempty"`
	Technicals     *Technicals    `json:"technicals,omitempty"`
	Sentiment      *Sentiment     `json:"sentiment,omitempty"`
	AgentSignals   []AgentSignal  `json:"agent_signals"`
}

// Summary returns the list view of a detail. Color is left empty.
func (d *StockDetail) Summary() Stock {
	return Stock{
		Ticker:      d.Ticker,
		Name:        d.Name,
		Price:       d.Price,
		Change:      d.Change,
		SophieScore: d.SophieAnalysis.OverallScore,
		Color:       "",
	}
}

type Fundamentals struct {
	PERatio         *float64 `json:"pe_ratio,omitempty"`
	EPS             *float64 `json:"eps,omitempty"`
	DividendYield   *float64 `json:"dividend_yield,omitempty"`
	MarketCap       *int64   `json:"market_cap,omitempty"`
	Revenue         *int64   `json:"revenue,omitempty"`
	GrossMargin     *float64 `json:"gross_margin,omitempty"`
	OperatingMargin *float64 `json:"operating_margin,omitempty"`
	NetIncomeMargin *float64 `json:"net_income_margin,omitempty"`
	DebtToEquity    *float64 `json:"debt_to_equity,omitempty"`
}

type Technicals struct {
	MACD             *float64 `json:"macd,omitempty"`
	RSI              *float64 `json:"rsi,omitempty"`
	SMA50            *float64 `json:"sma_50,omitempty"`
	SMA200           *float64 `json:"sma_200,omitempty"`
	FiftyTwoWeekHigh *float64 `json:"fifty_two_week_high,omitempty"`
	FiftyTwoWeekLow  *float64 `json:"fifty_two_week_low,omitempty"`
	Volume           *int64   `json:"volume,omitempty"`
	AverageVolume    *int64   `json:"average_volume,omitempty"`
}

type Sentiment struct {
	AnalystConsensus     string         `json:"analyst_consensus"`
	AnalystRating        *float64       `json:"analyst_rating,omitempty"`
	AnalystPriceTarget   *float64       `json:"analyst_price_target,omitempty"`
	NewsHeadlines        []NewsHeadline `json:"news_headlines"`
	SocialMediaSentiment *float64       `json:"social_media_sentiment,omitempty"`
}

type NewsHeadline struct {
	Title     string `json:"title"`
	Source    string `json:"source"`
	Date      string `json:"date"`
	URL       string `json:"url"`
	Sentiment string `json:"sentiment"`
}

// Ptr returns a pointer to v. Used to fill nullable fields.
func Ptr[T any](v T) *T {
	return &v
}
