package signal

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignal_JSON(t *testing.T) {
	sig := Signal{
		Type:        Buy,
		Symbol:      "BTC-USDT",
		Price:       100.1235,
		StopLoss:    98.1358,
		TargetPrice: 104.0988,
		RSI:         63.46,
		ATR:         1.9877,
		Confidence:  74.2,
		Strategy:    "pro_mtf",
		Time:        1748779200,
	}

	data, err := sonic.Marshal(sig)
	require.NoError(t, err)

	body := string(data)
	assert.Contains(t, body, `"type":"BUY"`)
	assert.Contains(t, body, `"sl":98.1358`)
	assert.Contains(t, body, `"tp":104.0988`)
	assert.NotContains(t, body, "target_bars", "unset expected bars stays off the wire")

	sig.ExpectedBars = 8
	data, err = sonic.Marshal(sig)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"target_bars":8`)
}
