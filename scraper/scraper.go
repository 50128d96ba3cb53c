package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/use-agent/rankscrape/config"
	"github.com/use-agent/rankscrape/engine"
	"github.com/use-agent/rankscrape/extract"
	"github.com/use-agent/rankscrape/models"
)

// Report is the successful output of one pipeline run.
type Report struct {
	Record *models.ScrapedRecord
	Wait   WaitOutcome
}

// Scraper runs the scrape pipeline:
//
//	validate → acquire → navigate → wait → extract → release
//
// Within one call the stages are strictly sequential. Separate calls are
// independent and may run concurrently, each on its own session.
type Scraper struct {
	sessions  *SessionManager
	waiter    *Waiter
	extractor *extract.Extractor

	requestTimeout time.Duration
	navTimeout     time.Duration

	now func() time.Time
}

// New wires a Scraper on top of eng.
func New(eng engine.Engine, browserCfg config.BrowserConfig, scraperCfg config.ScraperConfig, ex *extract.Extractor) *Scraper {
	id := engine.Identity{
		UserAgent:      browserCfg.UserAgent,
		AcceptLanguage: browserCfg.AcceptLanguage,
		ViewportWidth:  browserCfg.ViewportWidth,
		ViewportHeight: browserCfg.ViewportHeight,
		Stealth:        browserCfg.Stealth,
		BlockResources: browserCfg.BlockResources,
		BlockAds:       browserCfg.BlockAds,
	}
	return &Scraper{
		sessions:       NewSessionManager(eng, id, browserCfg.MaxSessions),
		waiter:         NewWaiter(scraperCfg.ReadySelectors, scraperCfg.ContentWaitTimeout),
		extractor:      ex,
		requestTimeout: scraperCfg.RequestTimeout,
		navTimeout:     scraperCfg.NavigationTimeout,
		now:            time.Now,
	}
}

// Sessions exposes session accounting.
func (s *Scraper) Sessions() *SessionManager {
	return s.sessions
}

// Scrape runs the full pipeline for rawURL. Invalid input is rejected
// before any browser resource is touched. Content absence is not an error.
func (s *Scraper) Scrape(ctx context.Context, rawURL string) (*Report, error) {
	start := time.Now()

	u, err := ValidateURL(rawURL)
	if err != nil {
		slog.Info("scrape rejected", "url", rawURL, "reason", models.AsScrapeError(err).Message)
		return nil, err
	}
	target := u.String()

	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	var rep Report
	err = s.sessions.WithSession(ctx, func(sess engine.Session) error {
		if err := s.navigate(ctx, sess, target); err != nil {
			return err
		}

		rep.Wait = s.waiter.Wait(ctx, sess)
		if ctx.Err() != nil {
			return deadlineError(ctx, target)
		}

		capturedAt := s.now()
		rawHTML, err := sess.HTML(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return deadlineError(ctx, target)
			}
			return models.NewScrapeError(
				models.ErrCodeExtractionFailed,
				"page became unusable before extraction",
				err,
			).WithURL(target)
		}

		rec := s.extractor.Extract(rawHTML, capturedAt)
		rep.Record = &rec
		return nil
	})

	duration := time.Since(start).Round(time.Millisecond)
	if err != nil {
		se := models.AsScrapeError(err)
		slog.Warn("scrape failed",
			"url", target,
			"code", se.Code,
			"duration", duration,
			"error", err,
		)
		return nil, err
	}

	slog.Info("scrape completed",
		"url", target,
		"zone", rep.Record.ZoneName,
		"boss", rep.Record.BossName,
		"rows", len(rep.Record.TableRows),
		"wait", rep.Wait.String(),
		"duration", duration,
	)
	return &rep, nil
}

// navigate bounds navigation by the navigation timeout on top of ctx.
func (s *Scraper) navigate(ctx context.Context, sess engine.Session, target string) error {
	navCtx := ctx
	if s.navTimeout > 0 {
		var cancel context.CancelFunc
		navCtx, cancel = context.WithTimeout(ctx, s.navTimeout)
		defer cancel()
	}

	err := sess.Navigate(navCtx, target)
	if err == nil {
		return nil
	}
	return categorizeError(ctx, err, target, s.navTimeout)
}

// categorizeError maps a raw navigation error to a typed ScrapeError.
// ctx is the request context, not the navigation sub-context.
func categorizeError(ctx context.Context, err error, target string, navTimeout time.Duration) *models.ScrapeError {
	switch {
	case errors.Is(ctx.Err(), context.Canceled):
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", err).WithURL(target)
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewScrapeError(
			models.ErrCodeNavigationTimeout,
			fmt.Sprintf("navigation to %s timed out after %s", target, navTimeout),
			err,
		).WithURL(target)
	case errors.Is(err, engine.ErrNetwork):
		reason := strings.TrimPrefix(err.Error(), engine.ErrNetwork.Error()+": ")
		return models.NewScrapeError(
			models.ErrCodeNavigation,
			fmt.Sprintf("navigation to %s failed: %s", target, reason),
			err,
		).WithURL(target)
	default:
		return models.NewScrapeError(
			models.ErrCodeNavigation,
			fmt.Sprintf("navigation to %s failed", target),
			err,
		).WithURL(target)
	}
}

// deadlineError reports expiry of the whole-request bound.
func deadlineError(ctx context.Context, target string) *models.ScrapeError {
	if errors.Is(ctx.Err(), context.Canceled) {
		return models.NewScrapeError(models.ErrCodeTimeout, "request canceled", ctx.Err()).WithURL(target)
	}
	return models.NewScrapeError(
		models.ErrCodeTimeout,
		fmt.Sprintf("scrape of %s exceeded the request deadline", target),
		ctx.Err(),
	).WithURL(target)
}
