package services

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"sophie-analyst/models"
)

var hundred = decimal.NewFromInt(100)

// PercentChange is the percent move between the last two prices of a series.
// It is 0 for fewer than two prices or a non-positive previous price.
func PercentChange(prices []decimal.Decimal) float64 {
	if len(prices) < 2 {
		return 0
	}
	prev := prices[len(prices)-2]
	last := prices[len(prices)-1]
	if !prev.IsPositive() {
		return 0
	}
	change, _ := last.Sub(prev).Div(prev).Mul(hundred).Float64()
	return change
}

// LatestPrice returns the last price of a series, or 0 when empty
func LatestPrice(prices []decimal.Decimal) float64 {
	if len(prices) == 0 {
		return 0
	}
	price, _ := prices[len(prices)-1].Float64()
	return price
}

func closes(prices []wirePrice) []decimal.Decimal {
	out := make([]decimal.Decimal, len(prices))
	for i, p := range prices {
		out[i] = p.Close
	}
	return out
}

func stringOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func intOr(i *int, def int) int {
	if i == nil {
		return def
	}
	return *i
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

// mapStock converts a batch stock row into a list summary
func mapStock(w wireStock) models.Stock {
	series := closes(w.Prices)

	name := ""
	if w.Company != nil {
		name = stringOr(w.Company.Name, "")
	}

	score := 50
	signal := models.SignalNeutral
	if w.LatestSophieAnalysis != nil {
		score = intOr(w.LatestSophieAnalysis.OverallScore, 50)
		signal = stringOr(w.LatestSophieAnalysis.Signal, models.SignalNeutral)
	}

	return models.Stock{
		Ticker:      w.Ticker,
		Name:        name,
		Price:       LatestPrice(series),
		Change:      PercentChange(series),
		SophieScore: score,
		Color:       models.SignalColor(signal),
	}
}

// mapAnalysis converts a wire analysis, substituting the neutral default when absent
func mapAnalysis(w *wireAnalysis) models.SophieAnalysis {
	if w == nil {
		return models.DefaultSophieAnalysis()
	}
	return models.SophieAnalysis{
		Signal:            stringOr(w.Signal, ""),
		Confidence:        intOr(w.Confidence, 50),
		OverallScore:      intOr(w.OverallScore, 50),
		Reasoning:         stringOr(w.Reasoning, ""),
		ShortTermOutlook:  stringOr(w.ShortTermOutlook, ""),
		MediumTermOutlook: stringOr(w.MediumTermOutlook, ""),
		LongTermOutlook:   stringOr(w.LongTermOutlook, ""),
		BullishFactors:    nonNil(w.BullishFactors),
		BearishFactors:    nonNil(w.BearishFactors),
		Risks:             nonNil(w.Risks),
	}
}

// mapFundamentals keeps the ratios the backend publishes. The rest stay nil.
func mapFundamentals(w *wireFundamentals) *models.Fundamentals {
	if w == nil {
		return nil
	}
	return &models.Fundamentals{
		PERatio:         w.PERatio,
		EPS:             w.EarningsPerShare,
		OperatingMargin: parseLooseFloat(w.OverallSignal),
		DebtToEquity:    w.DebtToEquity,
	}
}

// parseLooseFloat reads a JSON number or numeric string; anything else is nil
func parseLooseFloat(raw json.RawMessage) *float64 {
	s := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

// mapTechnicals keeps RSI and the volume ratio (truncated to an integer)
func mapTechnicals(w *wireTechnicals) *models.Technicals {
	if w == nil {
		return nil
	}
	t := &models.Technicals{RSI: w.RSI14}
	if w.VolumeRatio != nil {
		t.Volume = models.Ptr(int64(*w.VolumeRatio))
	}
	return t
}

// mapAgentSignal converts a wire signal under the given display name
func mapAgentSignal(w *wireAgentSignal, agentID, displayName string) models.AgentSignal {
	return models.AgentSignal{
		Agent:            stringOr(w.Agent, agentID),
		AgentDisplayName: displayName,
		Signal:           stringOr(w.Signal, models.SignalNeutral),
		Reasoning:        stringOr(w.Reasoning, ""),
		Confidence:       intOr(w.Confidence, 50),
		Date:             stringOr(w.BizDate, ""),
	}
}

// mapStockDetail assembles a detail from the StockDetail query. Sentiment is not
// served by the backend and stays nil.
func mapStockDetail(ticker string, data stockDetailData, signals []models.AgentSignal) models.StockDetail {
	detail := models.StockDetail{
		Ticker:         ticker,
		SophieAnalysis: mapAnalysis(data.LatestSophieAnalysis),
		Fundamentals:   mapFundamentals(data.LatestFundamentals),
		Technicals:     mapTechnicals(data.LatestTechnicals),
		Sentiment:      nil,
		AgentSignals:   signals,
	}
	if detail.AgentSignals == nil {
		detail.AgentSignals = []models.AgentSignal{}
	}

	if stock := data.Stock; stock != nil {
		if stock.Company != nil {
			detail.Ticker = stringOr(stock.Company.Ticker, ticker)
			detail.Name = stringOr(stock.Company.Name, "")
		}
		series := closes(stock.Prices)
		detail.Price = LatestPrice(series)
		detail.Change = PercentChange(series)
	}
	return detail
}

// DefaultStocks is the placeholder list served when the backend cannot be read
func DefaultStocks(tickers []string) []models.Stock {
	stocks := make([]models.Stock, 0, len(tickers))
	for i, ticker := range tickers {
		color := models.ColorPositive
		if i%2 != 0 {
			color = models.ColorNeutral
		}
		stocks = append(stocks, models.Stock{
			Ticker:      ticker,
			Name:        CompanyName(ticker),
			Price:       100 + float64(i)*50,
			Change:      -2 + float64(i)*0.5,
			SophieScore: 50 + i*5,
			Color:       color,
		})
	}
	return stocks
}

var companyNames = map[string]string{
	"AAPL":  "Apple Inc.",
	"MSFT":  "Microsoft Corporation",
	"GOOGL": "Alphabet Inc.",
	"GOOG":  "Alphabet Inc.",
	"AMZN":  "Amazon.com, Inc.",
	"META":  "Meta Platforms, Inc.",
	"NVDA":  "NVIDIA Corporation",
	"TSLA":  "Tesla, Inc.",
	"AMD":   "Advanced Micro Devices, Inc.",
	"NFLX":  "Netflix, Inc.",
	"PYPL":  "PayPal Holdings, Inc.",
	"INTC":  "Intel Corporation",
	"CRM":   "Salesforce, Inc.",
	"CSCO":  "Cisco Systems, Inc.",
	"ADBE":  "Adobe Inc.",
}

// CompanyName returns a known company name, or "<TICKER> Corporation"
func CompanyName(ticker string) string {
	if name, ok := companyNames[ticker]; ok {
		return name
	}
	return ticker + " Corporation"
}
