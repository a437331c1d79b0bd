package collector

import (
	"fmt"
	"strings"
	"time"
)

// SourceOptions selects and configures a data source.
type SourceOptions struct {
	Provider       string // yahoo, eodhd, alpaca or mock
	APIKey         string
	APISecret      string
	BaseURL        string
	RequestsPerSec int
	Timeout        time.Duration
	ProxyURL       string
	MockPrice      float64

	// Cache wraps the source in Redis when Cache.Addr is set.
	Cache CacheOptions
}

// NewFetcher builds the Fetcher named by opts.Provider.
func NewFetcher(opts SourceOptions) (Fetcher, error) {
	client := NewHTTPClient(HTTPOptions{
		Timeout:        opts.Timeout,
		RequestsPerSec: opts.RequestsPerSec,
		ProxyURL:       opts.ProxyURL,
	})

	var f Fetcher
	switch strings.ToLower(opts.Provider) {
	case "", "yahoo":
		f = NewYahooFetcher(opts.BaseURL, client)
	case "eodhd":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("eodhd provider requires an API key")
		}
		f = NewEODHDFetcher(opts.BaseURL, opts.APIKey, client)
	case "alpaca":
		f = NewAlpacaFetcher(opts.APIKey, opts.APISecret, opts.BaseURL)
	case "mock":
		price := opts.MockPrice
		if price <= 0 {
			price = 100
		}
		f = &MockFetcher{Price: price}
	default:
		return nil, fmt.Errorf("unknown data provider %q", opts.Provider)
	}

	if opts.Cache.Addr != "" {
		f = NewCachedFetcher(f, opts.Cache)
	}
	return f, nil
}
