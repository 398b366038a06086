// Package browser drives the site through Playwright and implements
// the pipeline's profile reader. Selectors live here and nowhere else.
package browser

import (
	"context"
	"os"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/scoutline/scout-cli/internal/config"
	"github.com/scoutline/scout-cli/internal/resilience"
)

// Session owns the Playwright stack for one CLI invocation. Navigation
// goes through a rate limiter so the site never sees request bursts.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	bctx    playwright.BrowserContext
	page    playwright.Page

	baseURL   string
	statePath string
	limiter   *rate.Limiter
	timeoutMS float64
}

// NewSession launches Chromium and opens one page. A saved storage
// state is loaded when present so logins survive across invocations.
func NewSession(cfg config.BrowserConfig, baseURL string) (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "browser: start playwright")
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(cfg.Headless),
	})
	if err != nil {
		pw.Stop()
		return nil, eris.Wrap(err, "browser: launch chromium")
	}

	ctxOpts := playwright.BrowserNewContextOptions{}
	if cfg.StatePath != "" {
		if _, statErr := os.Stat(cfg.StatePath); statErr == nil {
			ctxOpts.StorageStatePath = playwright.String(cfg.StatePath)
			zap.L().Debug("browser: loading saved session state",
				zap.String("path", cfg.StatePath))
		}
	}

	bctx, err := b.NewContext(ctxOpts)
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, eris.Wrap(err, "browser: new context")
	}

	timeoutMS := float64(cfg.NavTimeoutSecs) * 1000
	if timeoutMS <= 0 {
		timeoutMS = 30000
	}
	bctx.SetDefaultTimeout(timeoutMS)

	page, err := bctx.NewPage()
	if err != nil {
		bctx.Close()
		b.Close()
		pw.Stop()
		return nil, eris.Wrap(err, "browser: new page")
	}

	perMinute := cfg.NavPerMinute
	if perMinute <= 0 {
		perMinute = 20
	}

	return &Session{
		pw:        pw,
		browser:   b,
		bctx:      bctx,
		page:      page,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		statePath: cfg.StatePath,
		limiter:   rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), 2),
		timeoutMS: timeoutMS,
	}, nil
}

// SaveState persists cookies and local storage for later sessions.
func (s *Session) SaveState() error {
	if s.statePath == "" {
		return nil
	}
	if _, err := s.bctx.StorageState(s.statePath); err != nil {
		return eris.Wrapf(err, "browser: save state to %s", s.statePath)
	}
	return nil
}

// Close tears the whole stack down. Errors during shutdown are logged,
// not returned; there is nothing useful a caller can do with them.
func (s *Session) Close() {
	if err := s.bctx.Close(); err != nil {
		zap.L().Debug("browser: context close", zap.Error(err))
	}
	if err := s.browser.Close(); err != nil {
		zap.L().Debug("browser: browser close", zap.Error(err))
	}
	if err := s.pw.Stop(); err != nil {
		zap.L().Debug("browser: playwright stop", zap.Error(err))
	}
}

// nav rate-limits and performs one page navigation. Transient network
// failures are retried; the limiter gates each attempt.
func (s *Session) nav(ctx context.Context, url string) error {
	return resilience.Do(ctx, resilience.DefaultRetryConfig(), "browser.goto",
		func(ctx context.Context) error {
			if err := s.limiter.Wait(ctx); err != nil {
				return eris.Wrap(err, "browser: rate limit wait")
			}
			if _, err := s.page.Goto(url, playwright.PageGotoOptions{
				WaitUntil: playwright.WaitUntilStateDomcontentloaded,
				Timeout:   playwright.Float(s.timeoutMS),
			}); err != nil {
				return eris.Wrapf(err, "browser: goto %s", url)
			}
			return nil
		})
}

func (s *Session) absoluteURL(href string) string {
	if href == "" || strings.HasPrefix(href, "http") {
		return href
	}
	return s.baseURL + href
}
