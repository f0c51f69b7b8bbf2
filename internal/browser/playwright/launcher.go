// Package playwright drives Twitter and Facebook through a headless Chromium.
package playwright

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/orgball2608/technews-autopilot/pkg/config"
	"github.com/orgball2608/technews-autopilot/pkg/logger"
	"github.com/orgball2608/technews-autopilot/pkg/retry"
	"github.com/playwright-community/playwright-go"
)

// Launcher owns the playwright process and one Chromium instance.
// The browser starts on first use so that runs without browser platforms never spawn it.
type Launcher struct {
	cfg    *config.Config
	logger logger.Logger

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewLauncher(cfg *config.Config, log logger.Logger) *Launcher {
	return &Launcher{
		cfg:    cfg,
		logger: log.WithComponent("Playwright"),
	}
}

func (l *Launcher) Browser() (playwright.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.browser != nil {
		return l.browser, nil
	}

	l.logger.Info("Starting playwright")
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.cfg.Browser.Headless),
		Args: []string{
			"--no-sandbox",
			"--disable-setuid-sandbox",
			"--disable-dev-shm-usage",
			"--disable-accelerated-2d-canvas",
			"--no-first-run",
			"--no-zygote",
			"--disable-gpu",
			"--disable-blink-features=AutomationControlled",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch browser: %w", err)
	}

	l.pw, l.browser = pw, browser
	l.logger.Info("Chromium launched", "headless", l.cfg.Browser.Headless)
	return browser, nil
}

func (l *Launcher) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.pw == nil {
		return nil
	}

	l.logger.Info("Shutting down playwright browser")
	if err := l.browser.Close(); err != nil {
		l.logger.Error("Failed to close playwright browser", "error", err)
	}
	err := l.pw.Stop()
	l.pw, l.browser = nil, nil
	if err != nil {
		l.logger.Error("Failed to stop playwright", "error", err)
		return err
	}
	return nil
}

// page is one authenticated browser context with a single tab.
type page struct {
	launcher *Launcher
	logger   logger.Logger
	timeout  time.Duration

	ctx playwright.BrowserContext
	tab playwright.Page
}

func (p *page) open() error {
	if p.tab != nil {
		return nil
	}

	browser, err := p.launcher.Browser()
	if err != nil {
		return err
	}

	brContext, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(p.launcher.cfg.Browser.UserAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
	})
	if err != nil {
		return fmt.Errorf("could not create browser context: %w", err)
	}
	brContext.SetDefaultTimeout(float64(p.timeout.Milliseconds()))

	pg, err := brContext.NewPage()
	if err != nil {
		_ = brContext.Close()
		return fmt.Errorf("could not create new page: %w", err)
	}

	p.ctx, p.tab = brContext, pg
	return nil
}

func (p *page) navigate(ctx context.Context, url string) error {
	if err := p.open(); err != nil {
		return err
	}

	_, err := retry.Do(ctx, p.logger, "PageGoto", retry.Navigation, func(context.Context) (playwright.Response, error) {
		return p.tab.Goto(url, playwright.PageGotoOptions{
			Timeout:   playwright.Float(float64(p.timeout.Milliseconds())),
			WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		})
	})
	if err != nil {
		return fmt.Errorf("could not goto page '%s' after retries: %w", url, err)
	}
	return nil
}

// visible waits up to timeout for selector and reports whether it appeared.
func (p *page) visible(selector string, timeout time.Duration) bool {
	_, err := p.tab.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	return err == nil
}

// typeHuman types text key by key with a jittered delay.
func (p *page) typeHuman(locator playwright.Locator, text string) error {
	return locator.PressSequentially(text, playwright.LocatorPressSequentiallyOptions{
		Delay: playwright.Float(float64(50 + randIntn(100))),
	})
}

func (p *page) loadCookies(state json.RawMessage) error {
	if err := p.open(); err != nil {
		return err
	}

	var cookies []cookie
	if err := json.Unmarshal(state, &cookies); err != nil {
		return fmt.Errorf("malformed session state: %w", err)
	}
	if len(cookies) == 0 {
		return nil
	}

	optional := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		optional = append(optional, c.optional())
	}
	return p.ctx.AddCookies(optional)
}

func (p *page) exportCookies() (json.RawMessage, error) {
	if p.ctx == nil {
		return nil, fmt.Errorf("browser context is not open")
	}

	raw, err := p.ctx.Cookies()
	if err != nil {
		return nil, fmt.Errorf("could not read cookies: %w", err)
	}

	cookies := make([]cookie, 0, len(raw))
	for _, c := range raw {
		cookies = append(cookies, fromPlaywright(c))
	}
	return json.Marshal(cookies)
}

func (p *page) close() error {
	if p.ctx == nil {
		return nil
	}
	err := p.ctx.Close()
	p.ctx, p.tab = nil, nil
	debug.FreeOSMemory()
	return err
}
