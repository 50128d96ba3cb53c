package engine

import (
	"context"
	"errors"
)

// ErrClosed is returned by NewSession after the engine has been shut down.
var ErrClosed = errors.New("engine: closed")

// ErrNetwork marks navigation failures reported by the browser itself
// (DNS, connection refused, TLS), as opposed to deadline expiry.
var ErrNetwork = errors.New("engine: network error")

// Engine is the browser automation capability the scrape pipeline consumes.
// Implementations must be safe for concurrent use.
type Engine interface {
	// Start launches the underlying browser process. Calling it more than
	// once is a no-op; NewSession calls it lazily if needed.
	Start(ctx context.Context) error

	// NewSession opens one isolated browsing context with the given identity.
	NewSession(ctx context.Context, id Identity) (Session, error)

	// Close waits (bounded by ctx) for open sessions, then shuts the
	// browser process down.
	Close(ctx context.Context) error
}

// Session is an exclusively-owned, isolated browsing context.
// A Session is not safe for concurrent use.
type Session interface {
	// Navigate loads url and returns once the DOM is constructed.
	Navigate(ctx context.Context, url string) error

	// WaitForAny blocks until an element matching any selector exists,
	// returning the selector that matched.
	WaitForAny(ctx context.Context, selectors []string) (string, error)

	// HTML returns the serialized DOM of the current document.
	HTML(ctx context.Context) (string, error)

	// Close releases the context. It must not depend on any request context.
	Close() error
}

// Identity is the fixed fingerprint applied to every session.
type Identity struct {
	UserAgent      string
	AcceptLanguage string
	ViewportWidth  int
	ViewportHeight int
	Stealth        bool

	// BlockResources names resource types the session refuses to load
	// (Image, Stylesheet, Font, Media). Unknown names are ignored.
	BlockResources []string

	// BlockAds fails requests to known ad and tracking hosts.
	BlockAds bool
}
