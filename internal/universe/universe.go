package universe

// Default is the candidate symbol set considered for trading when the
// config does not supply its own list: large-cap US equities.
var Default = []string{
	"AAPL", "ABBV", "ABT", "ACN", "ADBE", "AIG", "AMD", "AMGN", "AMT",
	"AMZN", "AVGO", "AXP", "BA", "BAC", "BK", "BKNG", "BLK", "BMY",
	"C", "CAT", "CHTR", "CL", "CMCSA", "COF", "COP", "COST", "CRM",
	"CSCO", "CVS", "CVX", "DHR", "DIS", "DUK", "EMR", "EXC", "F",
	"FDX", "GD", "GE", "GILD", "GM", "GOOG", "GS", "HD", "HON",
	"IBM", "INTC", "JNJ", "JPM", "KO", "LIN", "LLY", "LMT", "LOW",
	"MA", "MCD", "MDLZ", "MDT", "MET", "META", "MMM", "MO", "MRK",
	"MS", "MSFT", "NEE", "NFLX", "NKE", "NVDA", "ORCL", "PEP", "PFE",
	"PG", "PM", "PYPL", "QCOM", "RTX", "SBUX", "SO", "SPG", "T",
	"TGT", "TMO", "TSLA", "TXN", "UNH", "UNP", "UPS", "USB", "V",
	"VZ", "WBA", "WFC", "WMT", "XOM",
}
