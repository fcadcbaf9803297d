// Package config holds the settings of an update run.
package config

import (
	"os"
	"slices"
	"strings"
	"time"

	"deephole/internal/fetch"
	"deephole/internal/locator"
	"deephole/lib/configutil"
)

const (
	EnvURL   = "TRACKER_URL"
	EnvDebug = "TRACKER_DEBUG"
)

type RenderConfig struct {
	Enabled             bool   `json:"enabled"`
	RemoteURL           string `json:"remote_url"`
	Attempts            int    `json:"attempts"`
	LoadTimeoutsSeconds []int  `json:"load_timeouts_seconds"`
	// NetworkIdleSeconds bounds the wait for requests to settle after load.
	NetworkIdleSeconds int `json:"network_idle_seconds"`
}

type Config struct {
	Sources             []string     `json:"sources"`
	Output              string       `json:"output"`
	SourceName          string       `json:"source_name"`
	CardSelector        string       `json:"card_selector"`
	CountdownSelector   string       `json:"countdown_selector"`
	ProximityWindow     int          `json:"proximity_window"`
	FetchTimeoutSeconds int          `json:"fetch_timeout_seconds"`
	Render              RenderConfig `json:"render"`
	Debug               bool         `json:"debug"`
}

func Default() Config {
	return Config{
		Sources: []string{
			"https://mabimobi.life/",
			"https://mabimobi.life/tracker/v2",
			"https://mabimobi.life/ranking",
		},
		Output:              "today.json",
		SourceName:          "mabimobi",
		CardSelector:        locator.DefaultCardSelector,
		CountdownSelector:   locator.DefaultCountdownSelector,
		ProximityWindow:     locator.DefaultProximityWindow,
		FetchTimeoutSeconds: int(fetch.DefaultStaticTimeout / time.Second),
		Render: RenderConfig{
			Attempts:            fetch.DefaultRenderAttempts,
			LoadTimeoutsSeconds: []int{15, 25, 35},
			NetworkIdleSeconds:  int(fetch.DefaultNetworkIdleTimeout / time.Second),
		},
	}
}

// Load reads the json5 file at path (and its .local override) over the
// defaults, then applies the environment. A missing file is not an error,
// an unreadable or malformed one returns the defaults (with the environment
// applied) along with the reason.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadWithDefaults(path, Default())
	if err != nil {
		return Default().ApplyEnv(os.LookupEnv), err
	}
	return cfg.ApplyEnv(os.LookupEnv), nil
}

func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "no", "off":
		return false
	}
	return true
}

// ApplyEnv replaces the first source with TRACKER_URL and turns debug
// logging on with TRACKER_DEBUG.
func (c Config) ApplyEnv(lookup func(string) (string, bool)) Config {
	c.Sources = slices.Clone(c.Sources)
	if url, ok := lookup(EnvURL); ok && strings.TrimSpace(url) != "" {
		url = strings.TrimSpace(url)
		if len(c.Sources) == 0 {
			c.Sources = []string{url}
		} else {
			c.Sources[0] = url
		}
	}
	if debug, ok := lookup(EnvDebug); ok && truthy(debug) {
		c.Debug = true
	}
	return c
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

func (c Config) FetchTimeout() time.Duration {
	return seconds(c.FetchTimeoutSeconds)
}

func (c Config) RenderOptions() fetch.RenderOptions {
	timeouts := make([]time.Duration, 0, len(c.Render.LoadTimeoutsSeconds))
	for _, s := range c.Render.LoadTimeoutsSeconds {
		if s > 0 {
			timeouts = append(timeouts, seconds(s))
		}
	}
	return fetch.RenderOptions{
		RemoteURL:          c.Render.RemoteURL,
		Attempts:           c.Render.Attempts,
		LoadTimeouts:       timeouts,
		NetworkIdleTimeout: seconds(c.Render.NetworkIdleSeconds),
	}
}

func (c Config) LocatorOptions() locator.Options {
	return locator.Options{
		CardSelector:      c.CardSelector,
		CountdownSelector: c.CountdownSelector,
		ProximityWindow:   c.ProximityWindow,
	}
}
