// Package signal
package signal

// Type is a signal direction.
type Type string

const (
	Buy  Type = "BUY"
	Sell Type = "SELL"
)

// Signal is one strategy-detected trading opportunity at a specific bar.
// Immutable once produced: price levels are rounded to 4 decimals,
// confidence to 1, RSI to 2.
type Signal struct {
	Type        Type    `json:"type"`
	Symbol      string  `json:"symbol"`
	Price       float64 `json:"price"`
	StopLoss    float64 `json:"sl"`
	TargetPrice float64 `json:"tp"`
	RSI         float64 `json:"rsi"`
	ATR         float64 `json:"atr"`
	Confidence  float64 `json:"confidence"`
	Strategy    string  `json:"strategy"`
	Time        int64   `json:"time"`
	// ExpectedBars is the estimated bars to target; zero means unset.
	ExpectedBars float64 `json:"target_bars,omitempty"`
}
