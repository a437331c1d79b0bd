package analyzer

import (
	"net/url"
	"strings"
)

const chartBaseURL = "https://www.tradingview.com/chart/"

var exchangeSuffixes = []struct {
	Suffix   string
	Exchange string
}{
	{".NS", "NSE"},
	{".BO", "BSE"},
}

// ChartLink returns the TradingView chart URL for symbol.
func ChartLink(symbol string) string {
	ticker := symbol
	for _, e := range exchangeSuffixes {
		if strings.HasSuffix(strings.ToUpper(symbol), e.Suffix) {
			ticker = e.Exchange + ":" + symbol[:len(symbol)-len(e.Suffix)]
			break
		}
	}
	return chartBaseURL + "?symbol=" + url.QueryEscape(ticker)
}
