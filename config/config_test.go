package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Fetcher.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want 3", cfg.Fetcher.MaxAttempts)
	}
	if cfg.Fetcher.DelayMin != 3*time.Second || cfg.Fetcher.DelayMax != 7*time.Second {
		t.Errorf("delay range = [%v, %v], want [3s, 7s]", cfg.Fetcher.DelayMin, cfg.Fetcher.DelayMax)
	}
	if cfg.Proxy.Enabled {
		t.Error("proxies must be opt-in")
	}
	if !cfg.Policy.RespectRobots {
		t.Error("robots gate must default on")
	}
	if len(cfg.Proxy.Sources) != 3 {
		t.Errorf("proxy sources = %d, want 3", len(cfg.Proxy.Sources))
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GLEANER_MAX_ATTEMPTS", "5")
	t.Setenv("GLEANER_DELAY_MIN", "100ms")
	t.Setenv("GLEANER_USE_PROXIES", "true")
	t.Setenv("GLEANER_PROXY_SOURCES", "https://a.example/, https://b.example/")

	cfg := Load()
	if cfg.Fetcher.MaxAttempts != 5 {
		t.Errorf("MaxAttempts = %d, want 5", cfg.Fetcher.MaxAttempts)
	}
	if cfg.Fetcher.DelayMin != 100*time.Millisecond {
		t.Errorf("DelayMin = %v, want 100ms", cfg.Fetcher.DelayMin)
	}
	if !cfg.Proxy.Enabled {
		t.Error("GLEANER_USE_PROXIES=true not applied")
	}
	if len(cfg.Proxy.Sources) != 2 || cfg.Proxy.Sources[1] != "https://b.example/" {
		t.Errorf("Sources = %v", cfg.Proxy.Sources)
	}
}

func TestLoad_MalformedEnvFallsBack(t *testing.T) {
	t.Setenv("GLEANER_MAX_ATTEMPTS", "many")
	t.Setenv("GLEANER_REQUEST_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Fetcher.MaxAttempts != 3 {
		t.Errorf("MaxAttempts = %d, want default 3", cfg.Fetcher.MaxAttempts)
	}
	if cfg.Fetcher.Timeout != 15*time.Second {
		t.Errorf("Timeout = %v, want default 15s", cfg.Fetcher.Timeout)
	}
}
