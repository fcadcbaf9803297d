package fetch

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderOptionsDefaults(t *testing.T) {
	opts := RenderOptions{}.withDefaults()
	require.Equal(t, DefaultRenderAttempts, opts.Attempts)
	require.Equal(t, DefaultNetworkIdleTimeout, opts.NetworkIdleTimeout)

	// patience escalates with each attempt
	require.Equal(t, 15*time.Second, opts.loadTimeout(0))
	require.Equal(t, 25*time.Second, opts.loadTimeout(1))
	require.Equal(t, 35*time.Second, opts.loadTimeout(2))
	require.Equal(t, 35*time.Second, opts.loadTimeout(5))

	opts = RenderOptions{Attempts: 2, LoadTimeouts: []time.Duration{time.Second}}.withDefaults()
	require.Equal(t, 2, opts.Attempts)
	require.Equal(t, time.Second, opts.loadTimeout(1))
}

func TestRenderSessionTimeout(t *testing.T) {
	opts := RenderOptions{NetworkIdleTimeout: 2 * time.Second}.withDefaults()
	require.Equal(t, 17*time.Second, opts.sessionTimeout(opts.loadTimeout(0)))

	opts = RenderOptions{}.withDefaults()
	require.Equal(t, 35*time.Second+DefaultNetworkIdleTimeout, opts.sessionTimeout(opts.loadTimeout(2)))
}

func TestCollectedDecoding(t *testing.T) {
	raw := `{
		"html": "<html><body></body></html>",
		"text": "어비스\n0\n4",
		"widgets": [{"label": "어비스", "groups": [[{"state": "0", "text": ""}, {"state": "4", "text": "4"}], [{"state": "5", "text": "5"}, {"state": "9", "text": "9"}]]}]
	}`
	var out collected
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	require.Len(t, out.Widgets, 1)

	v, ok := out.Widgets[0].Value()
	require.True(t, ok)
	require.Equal(t, "00:04:59", v.String())
}

func TestCollectScriptEmbedded(t *testing.T) {
	require.Contains(t, collectScript, "JSON.stringify")
	require.Contains(t, collectScript, "--value")
}
