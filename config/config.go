package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Browser   BrowserConfig
	Scraper   ScraperConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 3000
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds HTTP drain plus browser teardown.
	ShutdownTimeout time.Duration // default: 10s
}

// BrowserConfig controls the shared Chromium process and the identity
// applied to every per-request browsing context.
type BrowserConfig struct {
	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// Proxy is passed to the browser process for all contexts.
	Proxy string

	// UserAgent is the fixed user-agent of every session.
	UserAgent string

	ViewportWidth  int // default: 1920
	ViewportHeight int // default: 1080

	// AcceptLanguage is sent as an extra header on every navigation.
	AcceptLanguage string // default: "en-US,en;q=0.9"

	// Stealth injects go-rod/stealth evasions into each new document.
	Stealth bool // default: false

	// BlockResources lists resource types sessions refuse to load.
	BlockResources []string // default: ["Image", "Font", "Media"]

	// BlockAds fails requests to known ad and tracking hosts.
	BlockAds bool // default: false

	// MaxSessions caps concurrently open browsing contexts.
	MaxSessions int // default: 4

	// LaunchOnStart launches Chromium at startup instead of on first use.
	LaunchOnStart bool // default: true
}

// ScraperConfig controls the scrape pipeline timings.
type ScraperConfig struct {
	// RequestTimeout is the hard deadline for one whole scrape.
	RequestTimeout time.Duration // default: 60s

	// NavigationTimeout bounds navigation up to DOMContentLoaded.
	NavigationTimeout time.Duration // default: 30s

	// ContentWaitTimeout bounds the soft wait for ready selectors.
	ContentWaitTimeout time.Duration // default: 10s

	// ReadySelectors are raced after navigation; the first match ends the wait.
	ReadySelectors []string
}

// RateLimitConfig controls per-client rate limiting on /scrape.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per client IP.
	RequestsPerSecond float64 // default: 1

	// Burst is the maximum burst size per client IP.
	Burst int // default: 10
}

// CORSConfig controls cross-origin access.
type CORSConfig struct {
	// AllowOrigins lists allowed origins; "*" allows any.
	AllowOrigins []string // default: ["*"]
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is a desktop Chrome identity.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// DefaultReadySelectors signal that ranking content has rendered.
var DefaultReadySelectors = []string{
	"table tbody tr",
	".zone-name",
	".boss-name",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            envOr("RANKSCRAPE_HOST", "0.0.0.0"),
			Port:            envIntOr("RANKSCRAPE_PORT", 3000),
			Mode:            envOr("RANKSCRAPE_MODE", "release"),
			ShutdownTimeout: envDurationOr("RANKSCRAPE_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Browser: BrowserConfig{
			Headless:       envBoolOr("RANKSCRAPE_HEADLESS", true),
			NoSandbox:      envBoolOr("RANKSCRAPE_NO_SANDBOX", false),
			BrowserBin:     os.Getenv("RANKSCRAPE_BROWSER_BIN"),
			Proxy:          os.Getenv("RANKSCRAPE_PROXY"),
			UserAgent:      envOr("RANKSCRAPE_USER_AGENT", DefaultUserAgent),
			ViewportWidth:  envIntOr("RANKSCRAPE_VIEWPORT_WIDTH", 1920),
			ViewportHeight: envIntOr("RANKSCRAPE_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: envOr("RANKSCRAPE_ACCEPT_LANGUAGE", "en-US,en;q=0.9"),
			Stealth:        envBoolOr("RANKSCRAPE_STEALTH", false),
			BlockResources: envSliceOr("RANKSCRAPE_BLOCK_RESOURCES", []string{"Image", "Font", "Media"}),
			BlockAds:       envBoolOr("RANKSCRAPE_BLOCK_ADS", false),
			MaxSessions:    envIntOr("RANKSCRAPE_MAX_SESSIONS", 4),
			LaunchOnStart:  envBoolOr("RANKSCRAPE_LAUNCH_ON_START", true),
		},
		Scraper: ScraperConfig{
			RequestTimeout:     envDurationOr("RANKSCRAPE_REQUEST_TIMEOUT", 60*time.Second),
			NavigationTimeout:  envDurationOr("RANKSCRAPE_NAV_TIMEOUT", 30*time.Second),
			ContentWaitTimeout: envDurationOr("RANKSCRAPE_CONTENT_WAIT_TIMEOUT", 10*time.Second),
			ReadySelectors:     envSliceOr("RANKSCRAPE_READY_SELECTORS", DefaultReadySelectors),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("RANKSCRAPE_RATE_RPS", 1.0),
			Burst:             envIntOr("RANKSCRAPE_RATE_BURST", 10),
		},
		CORS: CORSConfig{
			AllowOrigins: envSliceOr("RANKSCRAPE_CORS_ORIGINS", []string{"*"}),
		},
		Log: LogConfig{
			Level:  envOr("RANKSCRAPE_LOG_LEVEL", "info"),
			Format: envOr("RANKSCRAPE_LOG_FORMAT", "json"),
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
