package analyzer

// DefaultTiers returns the built-in importance tiers
func DefaultTiers() []Tier {
	return []Tier{
		{Name: "Critical", Min: 7},
		{Name: "High", Min: 5},
		{Name: "Medium", Min: 3},
		{Name: "Low", Min: 0},
	}
}

// DefaultAssets returns the tracked coins, symbol -> alias
func DefaultAssets() map[string]string {
	return map[string]string{
		"btc":   "bitcoin",
		"eth":   "ethereum",
		"sol":   "solana",
		"xrp":   "ripple",
		"doge":  "dogecoin",
		"shib":  "shiba inu",
		"ada":   "cardano",
		"avax":  "avalanche",
		"dot":   "polkadot",
		"link":  "chainlink",
		"matic": "polygon",
		"bnb":   "binance coin",
		"ltc":   "litecoin",
		"bch":   "bitcoin cash",
	}
}

// DefaultKeywords returns the built-in importance keywords and their weights.
// Weights run from 3 for market-moving events down to 1 for background reading.
func DefaultKeywords() map[string]int {
	keywords := make(map[string]int, 200)
	add := func(weight int, phrases ...string) {
		for _, p := range phrases {
			keywords[p] = weight
		}
	}

	// Breaking news and regulators
	add(3, "breaking", "alert", "urgent", "flash",
		"sec", "cftc", "doj", "fincen",
		"regulation", "enforcement", "compliance", "clampdown", "crackdown",
		"lawsuit", "settlement", "indictment", "subpoena", "freeze",
		"government", "ban", "sanctions", "investigation",
		"major", "significant", "critical")

	// Security and solvency
	add(3, "hack", "exploit", "vulnerability", "security breach", "51% attack", "double spend", "rug pull",
		"insolvency", "bankruptcy", "default", "liquidity crisis",
		"listing", "delisting", "trading halt")

	// Corporate and institutional
	add(3, "partnership", "acquisition", "merger", "takeover",
		"institutional adoption", "institutional investment", "custody",
		"launch", "mainnet", "protocol upgrade",
		"upgrade", "fork", "hard fork", "halving")

	// Monetary policy and price shocks
	add(3, "fed", "fomc", "interest rate decision", "rate hike", "rate cut", "monetary policy", "quantitative easing", "qt",
		"crash", "surge", "rally", "plummet", "nosedive", "squeeze", "liquidations",
		"etf approval", "etf rejection", "etf launch",
		"cbdc", "central bank digital currency")

	// Market context
	add(2, "analysis", "research", "prediction", "forecast", "projection",
		"price", "market", "trend", "outlook", "momentum",
		"update", "report", "earnings", "revenue", "profit",
		"investment", "funding", "capital", "raise", "venture capital", "vc",
		"volatility", "correction", "dip", "rebound", "recovery", "consolidation",
		"bull market", "bull", "bullish", "bear market", "bear", "bearish", "sentiment",
		"inflation", "cpi", "ppi", "gdp", "unemployment", "recession risk", "economic data")

	// Ecosystem
	add(2, "stablecoin", "algorithmic stablecoin", "depeg", "peg",
		"defi", "decentralized finance", "nft", "non-fungible token", "metaverse", "web3",
		"staking", "yield", "liquidity pool", "apy", "apr",
		"mining", "hashrate",
		"layer 2", "l2", "scaling solution", "gas fees",
		"interoperability", "cross-chain", "bridge",
		"governance", "dao", "proposal", "vote",
		"oracle",
		"binance", "coinbase", "kraken", "grayscale", "microstrategy", "blackrock", "fidelity", "ark invest",
		"tether", "usdt", "circle", "usdc",
		"roadmap", "milestone")

	// Background content
	add(1, "opinion", "viewpoint", "perspective",
		"guide", "tutorial", "how-to", "explanation", "definition", "glossary",
		"community", "social media", "reddit", "twitter", "telegram", "discord",
		"discussion", "debate", "ama",
		"poll", "survey", "data",
		"beginners", "introduction", "basics",
		"conference", "event", "webinar", "summit", "meetup",
		"review", "comparison", "alternative",
		"podcast", "blog post", "article",
		"whitepaper")

	return keywords
}
