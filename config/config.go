package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Fetcher  FetcherConfig
	Proxy    ProxyConfig
	Policy   PolicyConfig
	Identity IdentityConfig
	Output   OutputConfig
	Log      LogConfig
}

// FetcherConfig controls the resilient fetch loop.
type FetcherConfig struct {
	// MaxAttempts bounds the identity+proxy attempt loop per fetch.
	MaxAttempts int // default: 3

	// Timeout is the per-attempt request deadline.
	Timeout time.Duration // default: 15s

	// DelayMin/DelayMax bound the random pre-request delay.
	DelayMin time.Duration // default: 3s
	DelayMax time.Duration // default: 7s

	// MinBodyBytes is the plausibility floor: a 2xx response with a
	// smaller body is treated as disguised blocking, not success.
	MinBodyBytes int // default: 2048

	// RatePerSecond / RateBurst feed the per-scraper request limiter.
	RatePerSecond float64 // default: 0.5
	RateBurst     int     // default: 1
}

// ProxyConfig controls proxy-pool discovery and rotation.
type ProxyConfig struct {
	// Enabled toggles proxy discovery; disabled means direct-only.
	Enabled bool // default: false

	// MaxPool caps the pool size, direct connection included.
	MaxPool int // default: 10

	// Sources are proxy-list pages parsed for ip:port rows.
	Sources []string

	// ProbeURL is the echo endpoint candidates are validated against.
	ProbeURL string // default: "https://httpbin.org/ip"

	// ProbeTimeout is the per-candidate validation deadline.
	ProbeTimeout time.Duration // default: 5s

	// SourceTimeout is the deadline for fetching one source page.
	SourceTimeout time.Duration // default: 10s

	// ValidateLimit bounds concurrent validation probes.
	ValidateLimit int // default: 10
}

// PolicyConfig controls the robots.txt gate.
type PolicyConfig struct {
	// RespectRobots toggles the gate. When false, every URL is allowed
	// without any network access.
	RespectRobots bool // default: true

	// FetchTimeout is the deadline for retrieving one ruleset.
	FetchTimeout time.Duration // default: 10s
}

// IdentityConfig controls browser-identity rotation.
type IdentityConfig struct {
	// DynamicUA toggles the dynamic user-agent source. The hard-coded
	// profile pool is always available as a fallback.
	DynamicUA bool // default: true
}

// OutputConfig controls export and debug artifacts.
type OutputConfig struct {
	// Dir is where export artifacts are written.
	Dir string // default: "gleaner_data"

	// SaveRawHTML persists fetched markup verbatim under Dir/debug,
	// keyed by page identity, for offline inspection.
	SaveRawHTML bool // default: false
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "text"
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Fetcher: FetcherConfig{
			MaxAttempts:   envIntOr("GLEANER_MAX_ATTEMPTS", 3),
			Timeout:       envDurationOr("GLEANER_REQUEST_TIMEOUT", 15*time.Second),
			DelayMin:      envDurationOr("GLEANER_DELAY_MIN", 3*time.Second),
			DelayMax:      envDurationOr("GLEANER_DELAY_MAX", 7*time.Second),
			MinBodyBytes:  envIntOr("GLEANER_MIN_BODY_BYTES", 2048),
			RatePerSecond: envFloatOr("GLEANER_RATE_RPS", 0.5),
			RateBurst:     envIntOr("GLEANER_RATE_BURST", 1),
		},
		Proxy: ProxyConfig{
			Enabled: envBoolOr("GLEANER_USE_PROXIES", false),
			MaxPool: envIntOr("GLEANER_MAX_PROXIES", 10),
			Sources: envSliceOr("GLEANER_PROXY_SOURCES", []string{
				"https://www.sslproxies.org/",
				"https://free-proxy-list.net/",
				"https://www.us-proxy.org/",
			}),
			ProbeURL:      envOr("GLEANER_PROXY_PROBE_URL", "https://httpbin.org/ip"),
			ProbeTimeout:  envDurationOr("GLEANER_PROXY_PROBE_TIMEOUT", 5*time.Second),
			SourceTimeout: envDurationOr("GLEANER_PROXY_SOURCE_TIMEOUT", 10*time.Second),
			ValidateLimit: envIntOr("GLEANER_PROXY_VALIDATE_LIMIT", 10),
		},
		Policy: PolicyConfig{
			RespectRobots: envBoolOr("GLEANER_RESPECT_ROBOTS", true),
			FetchTimeout:  envDurationOr("GLEANER_ROBOTS_TIMEOUT", 10*time.Second),
		},
		Identity: IdentityConfig{
			DynamicUA: envBoolOr("GLEANER_DYNAMIC_UA", true),
		},
		Output: OutputConfig{
			Dir:         envOr("GLEANER_OUTPUT_DIR", "gleaner_data"),
			SaveRawHTML: envBoolOr("GLEANER_SAVE_RAW_HTML", false),
		},
		Log: LogConfig{
			Level:  envOr("GLEANER_LOG_LEVEL", "info"),
			Format: envOr("GLEANER_LOG_FORMAT", "text"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
