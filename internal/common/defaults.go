// Package common provides shared utilities and default configuration.
package common

// DefaultNewsQuery is the NewsAPI search expression used when none is configured.
// It covers the tracked crypto assets plus the macro topics that move them.
const DefaultNewsQuery = `crypto OR bitcoin OR ethereum OR xrp OR solana OR cardano OR bnb OR blockchain OR nasdaq OR s&p500 OR fed OR "interest rate" OR inflation OR recession OR "stock market" OR defi OR nft OR binance OR coinbase OR kraken OR grayscale OR microstrategy OR sec OR cftc OR regulation OR etf OR volatility OR "bull market" OR "bear market" OR correction OR sentiment OR halving OR staking OR polkadot OR chainlink OR avalanche OR polygon OR tether OR usdc OR litecoin`

// DefaultConfigFiles are probed in order when no -config flag is given
var DefaultConfigFiles = []string{
	"newswatch.toml",
	"deployments/local/newswatch.toml",
}
