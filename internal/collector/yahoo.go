package collector

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"sort"
	"time"

	"StockSentinel/internal/model"
)

// DefaultYahooBaseURL is the public Yahoo Finance API host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

// YahooFetcher implements Fetcher using the Yahoo Finance public API.
type YahooFetcher struct {
	BaseURL   string
	Client    *HTTPClient
	SymbolMap map[string]string // maps internal symbol to Yahoo ticker
}

// NewYahooFetcher creates a new Yahoo Finance fetcher.
func NewYahooFetcher(baseURL string, client *HTTPClient) *YahooFetcher {
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}
	return &YahooFetcher{
		BaseURL: baseURL,
		Client:  client,
		SymbolMap: map[string]string{
			"SPX500": "^GSPC",
			"SPX":    "^GSPC",
			"NIFTY":  "^NSEI",
		},
	}
}

func (f *YahooFetcher) Name() string { return "yahoo" }

func (f *YahooFetcher) yahooSymbol(symbol string) string {
	if mapped, ok := f.SymbolMap[symbol]; ok {
		return mapped
	}
	return symbol
}

// yahooChart is the response structure from the chart API. Null entries
// decode to nil pointers.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func valueAt(vals []*float64, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return math.NaN()
	}
	return *vals[i]
}

func yahooRange(days int) string {
	switch {
	case days <= 30:
		return "1mo"
	case days <= 90:
		return "3mo"
	case days <= 180:
		return "6mo"
	case days <= 365:
		return "1y"
	case days <= 730:
		return "2y"
	default:
		return "5y"
	}
}

// FetchDailyBars returns adjusted daily bars. Close is the adjusted close
// when Yahoo provides one.
func (f *YahooFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s&events=div%%2Csplit",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)), yahooRange(days))

	var chart yahooChart
	if err := f.Client.GetJSON(ctx, u, nil, &chart); err != nil {
		return nil, fmt.Errorf("yahoo chart %s: %w", symbol, err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error: %s", chart.Chart.Error.Description)
	}
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 ||
		len(chart.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("yahoo %s: %w", symbol, ErrNoData)
	}

	result := chart.Chart.Result[0]
	quote := result.Indicators.Quote[0]
	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	bars := make([]model.OHLCV, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		t := time.Unix(ts, 0).UTC()
		if t.Before(cutoff) {
			continue
		}
		o, h, l, c := valueAt(quote.Open, i), valueAt(quote.High, i), valueAt(quote.Low, i), valueAt(quote.Close, i)
		if model.Missing(o) && model.Missing(h) && model.Missing(l) && model.Missing(c) {
			continue // holiday rows carry no prices at all
		}
		// Scale the bar so its close matches the adjusted close.
		if a := valueAt(adj, i); !model.Missing(a) && !model.Missing(c) && c != 0 {
			ratio := a / c
			o, h, l, c = o*ratio, h*ratio, l*ratio, a
		}
		bars = append(bars, model.OHLCV{
			Time:   t,
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: valueAt(quote.Volume, i),
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

type yahooRaw struct {
	Raw *float64 `json:"raw"`
}

type yahooQuoteSummary struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE yahooRaw `json:"trailingPE"`
			} `json:"summaryDetail"`
			DefaultKeyStatistics struct {
				PriceToBook yahooRaw `json:"priceToBook"`
			} `json:"defaultKeyStatistics"`
			FinancialData struct {
				ReturnOnEquity yahooRaw `json:"returnOnEquity"`
				ProfitMargins  yahooRaw `json:"profitMargins"`
				RevenueGrowth  yahooRaw `json:"revenueGrowth"`
			} `json:"financialData"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchFundamentals reads valuation ratios from the quoteSummary API.
func (f *YahooFetcher) FetchFundamentals(ctx context.Context, symbol string) (model.FundamentalSnapshot, error) {
	u := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryDetail%%2CdefaultKeyStatistics%%2CfinancialData",
		f.BaseURL, url.PathEscape(f.yahooSymbol(symbol)))

	var qs yahooQuoteSummary
	if err := f.Client.GetJSON(ctx, u, nil, &qs); err != nil {
		return model.FundamentalSnapshot{}, fmt.Errorf("yahoo quoteSummary %s: %w", symbol, err)
	}
	if qs.QuoteSummary.Error != nil {
		return model.FundamentalSnapshot{}, fmt.Errorf("yahoo api error: %s", qs.QuoteSummary.Error.Description)
	}
	if len(qs.QuoteSummary.Result) == 0 {
		return model.FundamentalSnapshot{}, nil
	}
	r := qs.QuoteSummary.Result[0]
	return model.FundamentalSnapshot{
		PERatio:       ratioOrNil(r.SummaryDetail.TrailingPE.Raw),
		PBRatio:       ratioOrNil(r.DefaultKeyStatistics.PriceToBook.Raw),
		ROE:           ratioOrNil(r.FinancialData.ReturnOnEquity.Raw),
		ProfitMargin:  ratioOrNil(r.FinancialData.ProfitMargins.Raw),
		RevenueGrowth: ratioOrNil(r.FinancialData.RevenueGrowth.Raw),
	}, nil
}
