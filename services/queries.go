package services

import (
	"fmt"

	"sophie-analyst/agents"
)

const stockFields = `
    ticker
    company {
      name
    }
    prices {
      close
    }
    latestSophieAnalysis {
      overall_score
      signal
    }`

const analysisFields = `
    signal
    confidence
    overall_score
    reasoning
    short_term_outlook
    medium_term_outlook
    long_term_outlook
    bullish_factors
    bearish_factors
    risks`

const trendingStocksQuery = `query TrendingStocks($start_date: String!, $end_date: String!) {
  coveredTickers {
    ticker
  }
  batchStocks(tickers: [], start_date: $start_date, end_date: $end_date) {` + stockFields + `
  }
}`

const batchStocksQuery = `query BatchStocks($tickers: [String!]!, $start_date: String!, $end_date: String!) {
  batchStocks(tickers: $tickers, start_date: $start_date, end_date: $end_date) {` + stockFields + `
  }
}`

const stockDetailQuery = `query StockDetail($ticker: String!) {
  stock(ticker: $ticker) {
    company {
      ticker
      name
    }
    prices {
      close
    }
  }
  latestFundamentals(ticker: $ticker) {
    pe_ratio
    earnings_per_share
    overall_signal
    debt_to_equity
  }
  latestTechnicals(ticker: $ticker) {
    rsi_14
    volume_ratio
  }
  latestSophieAnalysis(ticker: $ticker) {` + analysisFields + `
  }
}`

const sophieAnalysisQuery = `query SophieAnalysis($ticker: String!) {
  latestSophieAnalysis(ticker: $ticker) {` + analysisFields + `
  }
}`

// agentSignalQuery is specialised per agent by agentSignalOperation
const agentSignalQuery = `query %s($ticker: String!) {
  latestAgentSignal(ticker: $ticker, agent: "%s") {
    agent
    signal
    reasoning
    confidence
    biz_date
  }
}`

const searchStocksQuery = `query SearchStocks($query: String!) {
  searchStocks(query: $query) {
    ticker
  }
}`

const probeQuery = `query Probe {
  __typename
}`

func trendingStocksOperation(startDate, endDate string) Operation {
	return Operation{
		Name:      "TrendingStocks",
		Query:     trendingStocksQuery,
		Variables: map[string]any{"start_date": startDate, "end_date": endDate},
	}
}

func batchStocksOperation(tickers []string, startDate, endDate string) Operation {
	return Operation{
		Name:      "BatchStocks",
		Query:     batchStocksQuery,
		Variables: map[string]any{"tickers": tickers, "start_date": startDate, "end_date": endDate},
	}
}

func stockDetailOperation(ticker string) Operation {
	return Operation{
		Name:      "StockDetail",
		Query:     stockDetailQuery,
		Variables: map[string]any{"ticker": ticker},
	}
}

func sophieAnalysisOperation(ticker string) Operation {
	return Operation{
		Name:      "SophieAnalysis",
		Query:     sophieAnalysisQuery,
		Variables: map[string]any{"ticker": ticker},
	}
}

func agentSignalOperation(agent agents.Agent, ticker string) Operation {
	return Operation{
		Name:      agent.OperationName,
		Query:     fmt.Sprintf(agentSignalQuery, agent.OperationName, agent.ID),
		Variables: map[string]any{"ticker": ticker},
	}
}

func searchStocksOperation(query string) Operation {
	return Operation{
		Name:      "SearchStocks",
		Query:     searchStocksQuery,
		Variables: map[string]any{"query": query},
	}
}

func probeOperation() Operation {
	return Operation{Name: "Probe", Query: probeQuery}
}
