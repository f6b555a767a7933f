// Package config loads the runtime's flat environment-variable
// configuration surface, applying the same bounds-checking the runtime
// depends on for correct poll timing.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	ACPURL             string
	APIKey             string
	WebSocketURL       string
	PollEnabled        bool
	PollInterval       time.Duration
	PollPageSize       int
	DeliveryRoot       string
	PagerDutyRouting   string
	OfferingsRoot      string
	ConfigStorePath    string
	DebugAPIAddr       string
}

const (
	defaultACPURL          = "https://acpx.virtuals.io"
	defaultPollIntervalMS  = 15000
	minPollIntervalMS      = 2000
	defaultPollPageSize    = 50
	minPollPageSize        = 1
	maxPollPageSize        = 200
)

// Load reads the environment (after loading an optional .env file in
// the current directory) into a Config, clamping out-of-range values
// to their documented bounds rather than rejecting them.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("config: no .env file found, using environment defaults")
	}

	acpURL := getEnv("ACP_URL", defaultACPURL)

	cfg := Config{
		ACPURL:           acpURL,
		APIKey:           getEnv("ACP_API_KEY", ""),
		WebSocketURL:     getEnv("ACP_WS_URL", toWebSocketURL(acpURL)),
		PollEnabled:      getEnv("ACP_SELLER_POLL", "1") != "0",
		PollInterval:     clampDurationMS(getEnvInt("ACP_SELLER_POLL_INTERVAL_MS", defaultPollIntervalMS), minPollIntervalMS),
		PollPageSize:     clampInt(getEnvInt("ACP_SELLER_POLL_PAGE_SIZE", defaultPollPageSize), minPollPageSize, maxPollPageSize),
		DeliveryRoot:     getEnv("ACP_DELIVERY_ROOT", ""),
		PagerDutyRouting: getEnv("PAGERDUTY_ROUTING_KEY", ""),
		OfferingsRoot:    getEnv("ACP_OFFERINGS_ROOT", "offerings"),
		ConfigStorePath:  getEnv("ACP_CONFIG_STORE_PATH", ".acp-seller-store"),
		DebugAPIAddr:     getEnv("ACP_DEBUG_API_ADDR", "127.0.0.1:9091"),
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Warn().Str("key", key).Str("value", raw).Msg("config: invalid integer, using default")
		return fallback
	}
	return n
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampDurationMS(ms, minMS int) time.Duration {
	if ms < minMS {
		ms = minMS
	}
	return time.Duration(ms) * time.Millisecond
}

// toWebSocketURL derives a ws(s):// endpoint from the configured HTTP
// backend URL when ACP_WS_URL is not set explicitly.
func toWebSocketURL(httpURL string) string {
	switch {
	case len(httpURL) >= 8 && httpURL[:8] == "https://":
		return "wss://" + httpURL[8:]
	case len(httpURL) >= 7 && httpURL[:7] == "http://":
		return "ws://" + httpURL[7:]
	default:
		return httpURL
	}
}
