package services

import (
	"sophie-analyst/agents"
	"sophie-analyst/models"
)

var mockStockColors = map[string]string{
	"AAPL":  "from-blue-500 to-cyan-500",
	"MSFT":  "from-emerald-500 to-green-500",
	"NVDA":  "from-green-500 to-lime-500",
	"AMZN":  "from-red-500 to-orange-500",
	"GOOGL": "from-blue-400 to-indigo-500",
	"META":  "from-blue-500 to-blue-700",
	"TSLA":  "from-red-500 to-red-700",
}

func mockTrendingStocks() []models.Stock {
	rows := []models.Stock{
		{Ticker: "AAPL", Name: "Apple Inc.", Price: 187.68, Change: 3.45, SophieScore: 78},
		{Ticker: "MSFT", Name: "Microsoft Corporation", Price: 405.32, Change: 2.87, SophieScore: 85},
		{Ticker: "NVDA", Name: "NVIDIA Corporation", Price: 953.86, Change: 5.12, SophieScore: 92},
		{Ticker: "AMZN", Name: "Amazon.com, Inc.", Price: 182.75, Change: 1.98, SophieScore: 81},
		{Ticker: "GOOGL", Name: "Alphabet Inc.", Price: 167.21, Change: -0.75, SophieScore: 76},
		{Ticker: "META", Name: "Meta Platforms, Inc.", Price: 478.22, Change: 1.25, SophieScore: 83},
		{Ticker: "TSLA", Name: "Tesla, Inc.", Price: 187.11, Change: -2.45, SophieScore: 65},
	}
	for i := range rows {
		rows[i].Color = mockStockColors[rows[i].Ticker]
	}
	return rows
}

func mockStockDetails() map[string]models.StockDetail {
	return map[string]models.StockDetail{
		"AAPL": {
			Ticker: "AAPL",
			Name:   "Apple Inc.",
			Price:  187.68,
			Change: 3.45,
			SophieAnalysis: models.SophieAnalysis{
				Signal:            "bullish",
				Confidence:        78,
				OverallScore:      78,
				Reasoning:         "Apple continues to demonstrate strong ecosystem lock-in, high margins, and loyal customer base. While facing competition in hardware, their services segment shows promising growth.",
				ShortTermOutlook:  "Stable with potential upside from new product releases",
				MediumTermOutlook: "Positive with services growth offsetting hardware maturation",
				LongTermOutlook:   "Strong core business with new market opportunities",
				BullishFactors: []string{
					"Strong services revenue growth",
					"High customer loyalty and retention",
					"Robust ecosystem integration",
					"Healthy cash reserves",
				},
				BearishFactors: []string{
					"Maturing smartphone market",
					"Regulatory scrutiny on App Store",
					"Competition from other tech giants",
				},
				Risks: []string{
					"Supply chain disruptions",
					"Slowing innovation cycle",
					"Increased competition in wearables",
				},
			},
			Fundamentals: &models.Fundamentals{
				PERatio:         models.Ptr(30.56),
				EPS:             models.Ptr(6.14),
				DividendYield:   models.Ptr(0.53),
				MarketCap:       models.Ptr(int64(2_940_000_000_000)),
				Revenue:         models.Ptr(int64(383_000_000_000)),
				GrossMargin:     models.Ptr(43.8),
				OperatingMargin: models.Ptr(29.2),
				NetIncomeMargin: models.Ptr(25.3),
				DebtToEquity:    models.Ptr(1.86),
			},
			Technicals: &models.Technicals{
				MACD:             models.Ptr(1.24),
				RSI:              models.Ptr(65.2),
				SMA50:            models.Ptr(182.4),
				SMA200:           models.Ptr(175.8),
				FiftyTwoWeekHigh: models.Ptr(196.38),
				FiftyTwoWeekLow:  models.Ptr(143.90),
				Volume:           models.Ptr(int64(64_500_000)),
				AverageVolume:    models.Ptr(int64(58_200_000)),
			},
			Sentiment: &models.Sentiment{
				AnalystConsensus:   "buy",
				AnalystRating:      models.Ptr(4.2),
				AnalystPriceTarget: models.Ptr(205.0),
				NewsHeadlines: []models.NewsHeadline{
					{Title: "Apple's services business continues to impress", Source: "MarketWatch", Date: "2025-05-05", URL: "https://example.com/news1", Sentiment: "positive"},
					{Title: "New iPhone models expected to drive upgrade cycle", Source: "Bloomberg", Date: "2025-05-03", URL: "https://example.com/news2", Sentiment: "positive"},
					{Title: "Concerns about Apple's hardware sales in emerging markets", Source: "Reuters", Date: "2025-05-01", URL: "https://example.com/news3", Sentiment: "negative"},
				},
				SocialMediaSentiment: models.Ptr(72.8),
			},
			AgentSignals: mockAgentSignals("AAPL"),
		},
		"NVDA": {
			Ticker: "NVDA",
			Name:   "NVIDIA Corporation",
			Price:  953.86,
			Change: 5.12,
			SophieAnalysis: models.SophieAnalysis{
				Signal:            "bullish",
				Confidence:        92,
				OverallScore:      92,
				Reasoning:         "NVIDIA continues to dominate AI chipsets market with strong data center growth and leadership in GPU technology. Sustained demand for AI infrastructure provides strong tailwinds.",
				ShortTermOutlook:  "Strong momentum to continue with AI investments",
				MediumTermOutlook: "Dominant position in growing AI infrastructure market",
				LongTermOutlook:   "Well-positioned for sustained AI and computing revolution",
				BullishFactors: []string{
					"Market leadership in AI chips",
					"Strong data center revenue growth",
					"Expanding product ecosystem",
					"High margins and strong cash flow",
				},
				BearishFactors: []string{
					"High valuation multiples",
					"Cyclical semiconductor industry",
					"Increasing competition from AMD and Intel",
				},
				Risks: []string{
					"Potential AI spending slowdown",
					"Manufacturing capacity constraints",
					"Regulatory concerns over Arm acquisition",
				},
			},
			Fundamentals: &models.Fundamentals{
				PERatio:         models.Ptr(68.2),
				EPS:             models.Ptr(14.0),
				DividendYield:   models.Ptr(0.03),
				MarketCap:       models.Ptr(int64(2_350_000_000_000)),
				Revenue:         models.Ptr(int64(60_500_000_000)),
				GrossMargin:     models.Ptr(74.5),
				OperatingMargin: models.Ptr(54.3),
				NetIncomeMargin: models.Ptr(45.8),
				DebtToEquity:    models.Ptr(0.41),
			},
			Technicals: &models.Technicals{
				MACD:             models.Ptr(22.4),
				RSI:              models.Ptr(72.1),
				SMA50:            models.Ptr(908.6),
				SMA200:           models.Ptr(780.2),
				FiftyTwoWeekHigh: models.Ptr(983.45),
				FiftyTwoWeekLow:  models.Ptr(640.20),
				Volume:           models.Ptr(int64(42_300_000)),
				AverageVolume:    models.Ptr(int64(36_800_000)),
			},
			Sentiment: &models.Sentiment{
				AnalystConsensus:   "strong buy",
				AnalystRating:      models.Ptr(4.8),
				AnalystPriceTarget: models.Ptr(1050.0),
				NewsHeadlines: []models.NewsHeadline{
					{Title: "NVIDIA sees continued strong demand for AI chips", Source: "Financial Times", Date: "2025-05-05", URL: "https://example.com/news1", Sentiment: "positive"},
					{Title: "NVIDIA announces next-generation GPU architecture", Source: "TechCrunch", Date: "2025-05-02", URL: "https://example.com/news2", Sentiment: "positive"},
					{Title: "Supply constraints may limit NVIDIA's growth", Source: "Wall Street Journal", Date: "2025-04-28", URL: "https://example.com/news3", Sentiment: "negative"},
				},
				SocialMediaSentiment: models.Ptr(85.6),
			},
			AgentSignals: mockAgentSignals("NVDA"),
		},
	}
}

type personaView struct {
	signal     string
	reasoning  string
	confidence int
}

type persona struct {
	id   string
	date string
	aapl personaView
	nvda personaView
	rest personaView
}

var mockPersonas = []persona{
	{
		id:   agents.WarrenBuffett,
		date: "2025-05-05",
		aapl: personaView{"bullish", "Strong brand moat, consistent cash flows, and reasonable valuation compared to other tech giants.", 85},
		nvda: personaView{"neutral", "Excellent business, but current valuation requires perfect execution for many years. Prefer to wait for better entry point.", 65},
		rest: personaView{"neutral", "Need more information about long-term competitive advantages and current valuation metrics.", 60},
	},
	{
		id:   agents.CathieWood,
		date: "2025-05-04",
		aapl: personaView{"neutral", "Solid company but lacks the disruptive innovation we seek. Looking for more transformative technology plays.", 55},
		nvda: personaView{"bullish", "Central to the AI revolution. Their chips power the infrastructure needed for the next wave of technological innovation.", 95},
		rest: personaView{"neutral", "Evaluating potential disruptive capabilities within their product roadmap.", 60},
	},
	{
		id:   agents.BenGraham,
		date: "2025-05-03",
		aapl: personaView{"neutral", "Solid fundamentals but trading above my preferred margin of safety. Would consider on significant pullbacks.", 70},
		nvda: personaView{"bearish", "Current price significantly exceeds intrinsic value based on traditional metrics. Speculation appears to be driving prices rather than fundamental analysis.", 80},
		rest: personaView{"neutral", "Need to establish a clearer margin of safety based on tangible asset value and earnings consistency.", 60},
	},
	{
		id:   agents.StanleyDruckenmiller,
		date: "2025-05-02",
		aapl: personaView{"bullish", "Current market positioning and services growth trajectory suggest continued outperformance relative to broader market.", 75},
		nvda: personaView{"bullish", "Leading technology paradigm shift in AI with strong institutional adoption. Momentum likely to continue despite high valuations.", 90},
		rest: personaView{"neutral", "Monitoring macro trends that could impact business model and institutional positioning.", 60},
	},
	{
		id:   agents.CharlieMunger,
		date: "2025-05-01",
		aapl: personaView{"bullish", "Exceptional business quality with durable competitive advantages. Patience with high-quality businesses is rewarded over time.", 85},
		nvda: personaView{"neutral", "Brilliant business, but remember that price is what you pay, value is what you get. Current price requires extraordinarily high expectations to be met.", 60},
		rest: personaView{"neutral", "Avoid complex predictions when simple observations will suffice. More analysis needed on competitive position.", 60},
	},
}

func mockAgentSignals(ticker string) []models.AgentSignal {
	signals := make([]models.AgentSignal, 0, len(mockPersonas))
	for _, p := range mockPersonas {
		view := p.rest
		switch ticker {
		case "AAPL":
			view = p.aapl
		case "NVDA":
			view = p.nvda
		}
		signals = append(signals, models.AgentSignal{
			Agent:            p.id,
			AgentDisplayName: agents.DisplayName(p.id),
			Signal:           view.signal,
			Reasoning:        view.reasoning,
			Confidence:       view.confidence,
			Date:             p.date,
		})
	}
	return signals
}

// mockPlaceholderDetail stands in for tickers without a fixture
func mockPlaceholderDetail(ticker string) models.StockDetail {
	detail := models.StockDetail{
		Ticker:         ticker,
		Name:           CompanyName(ticker),
		SophieAnalysis: models.DefaultSophieAnalysis(),
		AgentSignals:   mockAgentSignals(ticker),
	}
	for _, s := range mockTrendingStocks() {
		if s.Ticker == ticker {
			detail.Name = s.Name
			detail.Price = s.Price
			detail.Change = s.Change
			detail.SophieAnalysis.OverallScore = s.SophieScore
			break
		}
	}
	return detail
}
