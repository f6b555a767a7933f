package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.ACPURL != defaultACPURL {
		t.Fatalf("ACPURL = %q", cfg.ACPURL)
	}
	if cfg.PollInterval != defaultPollIntervalMS*time.Millisecond {
		t.Fatalf("PollInterval = %v", cfg.PollInterval)
	}
	if cfg.PollPageSize != defaultPollPageSize {
		t.Fatalf("PollPageSize = %d", cfg.PollPageSize)
	}
	if !cfg.PollEnabled {
		t.Fatal("expected polling enabled by default")
	}
}

func TestLoadClampsPollIntervalBelowMinimum(t *testing.T) {
	t.Setenv("ACP_SELLER_POLL_INTERVAL_MS", "500")
	cfg := Load()
	if cfg.PollInterval != minPollIntervalMS*time.Millisecond {
		t.Fatalf("PollInterval = %v, want clamped to %dms", cfg.PollInterval, minPollIntervalMS)
	}
}

func TestLoadClampsPageSizeToBounds(t *testing.T) {
	t.Setenv("ACP_SELLER_POLL_PAGE_SIZE", "9999")
	cfg := Load()
	if cfg.PollPageSize != maxPollPageSize {
		t.Fatalf("PollPageSize = %d, want %d", cfg.PollPageSize, maxPollPageSize)
	}

	t.Setenv("ACP_SELLER_POLL_PAGE_SIZE", "0")
	cfg = Load()
	if cfg.PollPageSize != minPollPageSize {
		t.Fatalf("PollPageSize = %d, want %d", cfg.PollPageSize, minPollPageSize)
	}
}

func TestLoadPollDisabled(t *testing.T) {
	t.Setenv("ACP_SELLER_POLL", "0")
	cfg := Load()
	if cfg.PollEnabled {
		t.Fatal("expected polling disabled")
	}
}

func TestToWebSocketURLDerivesFromHTTPS(t *testing.T) {
	if got := toWebSocketURL("https://acpx.virtuals.io"); got != "wss://acpx.virtuals.io" {
		t.Fatalf("got %q", got)
	}
}

func TestToWebSocketURLDerivesFromHTTP(t *testing.T) {
	if got := toWebSocketURL("http://localhost:8080"); got != "ws://localhost:8080" {
		t.Fatalf("got %q", got)
	}
}
