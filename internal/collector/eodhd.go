package collector

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"StockSentinel/internal/model"
)

// DefaultEODHDBaseURL is the base URL for the EODHD API.
const DefaultEODHDBaseURL = "https://eodhd.com/api"

// EODHDFetcher implements Fetcher using the EODHD REST API.
type EODHDFetcher struct {
	BaseURL string
	APIKey  string
	Client  *HTTPClient
}

// NewEODHDFetcher creates a fetcher for the EODHD API.
func NewEODHDFetcher(baseURL, apiKey string, client *HTTPClient) *EODHDFetcher {
	if baseURL == "" {
		baseURL = DefaultEODHDBaseURL
	}
	return &EODHDFetcher{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey, Client: client}
}

func (f *EODHDFetcher) Name() string { return "eodhd" }

var eodhdExchanges = map[string]string{
	".NS": ".NSE",
	".BO": ".BSE",
	".L":  ".LSE",
	".AX": ".AU",
}

// eodhdSymbol converts a Yahoo-style ticker to TICKER.EXCHANGE.
func eodhdSymbol(symbol string) string {
	if i := strings.LastIndex(symbol, "."); i > 0 {
		if ex, ok := eodhdExchanges[strings.ToUpper(symbol[i:])]; ok {
			return symbol[:i] + ex
		}
		return symbol
	}
	return symbol + ".US"
}

type eodhdBar struct {
	Date          string   `json:"date"`
	Open          *float64 `json:"open"`
	High          *float64 `json:"high"`
	Low           *float64 `json:"low"`
	Close         *float64 `json:"close"`
	AdjustedClose *float64 `json:"adjusted_close"`
	Volume        *float64 `json:"volume"`
}

func (f *EODHDFetcher) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", f.APIKey)
	params.Set("fmt", "json")
	return f.Client.GetJSON(ctx, f.BaseURL+path+"?"+params.Encode(), nil, out)
}

// FetchDailyBars uses /eod with the adjusted close as Close.
func (f *EODHDFetcher) FetchDailyBars(ctx context.Context, symbol string, days int) ([]model.OHLCV, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", time.Now().AddDate(0, 0, -days).Format("2006-01-02"))

	var raw []eodhdBar
	if err := f.get(ctx, "/eod/"+url.PathEscape(eodhdSymbol(symbol)), params, &raw); err != nil {
		return nil, fmt.Errorf("eodhd eod %s: %w", symbol, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("eodhd %s: %w", symbol, ErrNoData)
	}

	bars := make([]model.OHLCV, 0, len(raw))
	for _, r := range raw {
		t, err := time.Parse("2006-01-02", r.Date)
		if err != nil {
			continue
		}
		o, h, l, c := orNaN(r.Open), orNaN(r.High), orNaN(r.Low), orNaN(r.Close)
		if a := orNaN(r.AdjustedClose); !model.Missing(a) && !model.Missing(c) && c != 0 {
			ratio := a / c
			o, h, l, c = o*ratio, h*ratio, l*ratio, a
		}
		bars = append(bars, model.OHLCV{Time: t, Open: o, High: h, Low: l, Close: c, Volume: orNaN(r.Volume)})
	}
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	return bars, nil
}

type eodhdFundamentals struct {
	Highlights struct {
		PERatio                   *float64 `json:"PERatio"`
		ProfitMargin              *float64 `json:"ProfitMargin"`
		ReturnOnEquityTTM         *float64 `json:"ReturnOnEquityTTM"`
		QuarterlyRevenueGrowthYOY *float64 `json:"QuarterlyRevenueGrowthYOY"`
	} `json:"Highlights"`
	Valuation struct {
		PriceBookMRQ *float64 `json:"PriceBookMRQ"`
	} `json:"Valuation"`
}

// FetchFundamentals reads the Highlights and Valuation sections.
func (f *EODHDFetcher) FetchFundamentals(ctx context.Context, symbol string) (model.FundamentalSnapshot, error) {
	params := url.Values{}
	params.Set("filter", "Highlights,Valuation")

	var resp eodhdFundamentals
	if err := f.get(ctx, "/fundamentals/"+url.PathEscape(eodhdSymbol(symbol)), params, &resp); err != nil {
		return model.FundamentalSnapshot{}, fmt.Errorf("eodhd fundamentals %s: %w", symbol, err)
	}
	return model.FundamentalSnapshot{
		PERatio:       ratioOrNil(resp.Highlights.PERatio),
		PBRatio:       ratioOrNil(resp.Valuation.PriceBookMRQ),
		ROE:           ratioOrNil(resp.Highlights.ReturnOnEquityTTM),
		ProfitMargin:  ratioOrNil(resp.Highlights.ProfitMargin),
		RevenueGrowth: ratioOrNil(resp.Highlights.QuarterlyRevenueGrowthYOY),
	}, nil
}
