package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
)

// closeTimeout bounds teardown of one session. Teardown runs on its own
// context so an expired request deadline cannot block the release.
const closeTimeout = 5 * time.Second

// RodConfig controls how the shared Chromium process is launched.
type RodConfig struct {
	Headless   bool
	NoSandbox  bool
	BrowserBin string
	Proxy      string
}

// RodEngine owns one shared Chromium process and hands out incognito
// contexts on top of it.
//
// Lifecycle rules:
//   - The process is launched by Start, or lazily by the first NewSession.
//   - Launch and shutdown are serialized by mu; concurrent first requests
//     never launch twice.
//   - Close refuses new sessions, waits for open ones (bounded by ctx), then
//     kills the process.
type RodEngine struct {
	cfg RodConfig

	mu       sync.Mutex
	launcher *launcher.Launcher
	browser  *rod.Browser
	closed   bool

	// inflight counts sessions that have not been closed yet.
	inflight sync.WaitGroup
}

// NewRodEngine creates an engine. No process is started until Start or the
// first NewSession.
func NewRodEngine(cfg RodConfig) *RodEngine {
	return &RodEngine{cfg: cfg}
}

// Start launches the browser if it is not running yet.
func (e *RodEngine) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.launchLocked()
}

// launchLocked starts Chromium and connects to it. Caller must hold e.mu.
func (e *RodEngine) launchLocked() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New().
		Headless(e.cfg.Headless).
		NoSandbox(e.cfg.NoSandbox)

	if e.cfg.BrowserBin != "" {
		l = l.Bin(e.cfg.BrowserBin)
	}
	if e.cfg.Proxy != "" {
		l = l.Proxy(e.cfg.Proxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return fmt.Errorf("connect to browser: %w", err)
	}

	e.launcher = l
	e.browser = browser
	slog.Info("browser launched", "controlURL", controlURL, "headless", e.cfg.Headless)
	return nil
}

// NewSession opens a fresh incognito context with one page carrying id.
func (e *RodEngine) NewSession(ctx context.Context, id Identity) (Session, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, ErrClosed
	}
	if err := e.launchLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	browser := e.browser
	e.inflight.Add(1)
	e.mu.Unlock()

	sess, err := openRodSession(ctx, browser, id)
	if err != nil {
		e.inflight.Done()
		return nil, err
	}
	sess.done = e.inflight.Done
	return sess, nil
}

// Close shuts the browser down once every open session has been released
// or ctx expires, whichever comes first.
func (e *RodEngine) Close(ctx context.Context) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	browser, l := e.browser, e.launcher
	e.mu.Unlock()

	drained := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		slog.Info("browser shutdown: all sessions released")
	case <-ctx.Done():
		slog.Warn("browser shutdown: sessions still open, forcing close")
	}

	if browser == nil {
		return nil
	}
	err := browser.Close()
	if l != nil {
		l.Kill()
		l.Cleanup()
	}
	slog.Info("browser closed")
	return err
}

// rodSession is one incognito browser context plus its single page.
type rodSession struct {
	incognito *rod.Browser
	page      *rod.Page
	blocker   *rod.HijackRouter
	once      sync.Once
	done      func()
}

func openRodSession(ctx context.Context, browser *rod.Browser, id Identity) (*rodSession, error) {
	incognito, err := browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	// Detach from the request context so teardown still works after it expires.
	incognito = incognito.Context(context.Background())

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	s := &rodSession{incognito: incognito, page: page}
	if err := s.applyIdentity(id); err != nil {
		_ = s.teardown()
		return nil, err
	}
	s.blocker = installBlocker(page, newBlockPolicy(id.BlockResources, id.BlockAds))
	return s, nil
}

// applyIdentity must run before the first navigation.
func (s *rodSession) applyIdentity(id Identity) error {
	if id.UserAgent != "" {
		if err := s.page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      id.UserAgent,
			AcceptLanguage: id.AcceptLanguage,
		}); err != nil {
			return fmt.Errorf("set user agent: %w", err)
		}
	}

	if id.ViewportWidth > 0 && id.ViewportHeight > 0 {
		if err := s.page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
			Width:             id.ViewportWidth,
			Height:            id.ViewportHeight,
			DeviceScaleFactor: 1,
		}); err != nil {
			return fmt.Errorf("set viewport: %w", err)
		}
	}

	if id.AcceptLanguage != "" {
		_ = proto.NetworkSetExtraHTTPHeaders{
			Headers: proto.NetworkHeaders{"Accept-Language": gson.New(id.AcceptLanguage)},
		}.Call(s.page)
	}

	if id.Stealth {
		if _, err := s.page.EvalOnNewDocument(stealth.JS); err != nil {
			slog.Warn("stealth injection failed, proceeding without stealth", "error", err)
		}
	}
	return nil
}

// Navigate loads url and waits for DOMContentLoaded only; full network idle
// never arrives on pages that hold background connections open.
func (s *rodSession) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)

	// The lifecycle listener must be registered before navigating.
	wait := p.WaitNavigation(proto.PageLifecycleEventNameDOMContentLoaded)

	if err := p.Navigate(url); err != nil {
		var navErr *rod.NavigationError
		if errors.As(err, &navErr) {
			return fmt.Errorf("%w: %s", ErrNetwork, navErr.Reason)
		}
		return err
	}

	wait()
	return ctx.Err()
}

// WaitForAny races one element query per selector.
func (s *rodSession) WaitForAny(ctx context.Context, selectors []string) (string, error) {
	if len(selectors) == 0 {
		return "", errors.New("no selectors to wait for")
	}

	var matched string
	race := s.page.Context(ctx).Race()
	for _, sel := range selectors {
		sel := sel
		race = race.Element(sel).Handle(func(*rod.Element) error {
			matched = sel
			return nil
		})
	}
	if _, err := race.Do(); err != nil {
		return "", err
	}
	return matched, nil
}

func (s *rodSession) HTML(ctx context.Context) (string, error) {
	return s.page.Context(ctx).HTML()
}

// Close tears the context down exactly once.
func (s *rodSession) Close() error {
	var err error
	s.once.Do(func() {
		err = s.teardown()
		if s.done != nil {
			s.done()
		}
	})
	return err
}

func (s *rodSession) teardown() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	var errs []error
	if s.blocker != nil {
		if err := s.blocker.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop request blocker: %w", err))
		}
	}
	if err := s.page.Context(ctx).Close(); err != nil {
		errs = append(errs, fmt.Errorf("close page: %w", err))
	}
	if err := s.incognito.Context(ctx).Close(); err != nil {
		errs = append(errs, fmt.Errorf("dispose browser context: %w", err))
	}
	return errors.Join(errs...)
}
