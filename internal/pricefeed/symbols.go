package pricefeed

import "fmt"

// Chainlink feeds.
const (
	SymbolChainlinkBTCUSD = "btc/usd"
	SymbolChainlinkETHUSD = "eth/usd"
	SymbolChainlinkSOLUSD = "sol/usd"
	SymbolChainlinkXRPUSD = "xrp/usd"
)

// Binance pairs.
const (
	SymbolBinanceBTCUSDT = "btcusdt"
	SymbolBinanceETHUSDT = "ethusdt"
	SymbolBinanceSOLUSDT = "solusdt"
	SymbolBinanceXRPUSDT = "xrpusdt"
)

const (
	SourceChainlink = "chainlink"
	SourceBinance   = "binance"
)

var tickerSymbols = map[string]map[string]string{
	SourceChainlink: {
		"btc": SymbolChainlinkBTCUSD,
		"eth": SymbolChainlinkETHUSD,
		"sol": SymbolChainlinkSOLUSD,
		"xrp": SymbolChainlinkXRPUSD,
	},
	SourceBinance: {
		"btc": SymbolBinanceBTCUSDT,
		"eth": SymbolBinanceETHUSDT,
		"sol": SymbolBinanceSOLUSDT,
		"xrp": SymbolBinanceXRPUSDT,
	},
}

// TickerSymbol maps a short crypto ticker ("btc") and source to the feed
// symbol for that source.
func TickerSymbol(ticker, source string) (string, error) {
	symbols, ok := tickerSymbols[source]
	if !ok {
		return "", fmt.Errorf("invalid source: %s", source)
	}
	symbol, ok := symbols[ticker]
	if !ok {
		return "", fmt.Errorf("invalid ticker %s for source %s", ticker, source)
	}
	return symbol, nil
}
