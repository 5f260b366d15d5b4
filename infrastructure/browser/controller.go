package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"
)

// Options configures how the engine launches the browser
type Options struct {
	Headless       bool
	SlowMo         time.Duration
	DefaultTimeout time.Duration
	Width          int
	Height         int
	DriverPath     string
	ChromeBinary   string
}

func (o Options) viewport() (int, int) {
	w, h := o.Width, o.Height
	if w <= 0 {
		w = 1280
	}
	if h <= 0 {
		h = 720
	}
	return w, h
}

type playwrightController struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    playwright.Page
	logger  *logrus.Logger
}

// NewPlaywrightController - starts playwright, launches Chromium and opens one page
func NewPlaywrightController(opts Options, logger *logrus.Logger) (interfaces.Page, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("failed to start playwright: %w", err)
	}

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	}
	if opts.SlowMo > 0 {
		launch.SlowMo = playwright.Float(float64(opts.SlowMo.Milliseconds()))
	}
	if opts.ChromeBinary != "" {
		launch.ExecutablePath = playwright.String(opts.ChromeBinary)
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	width, height := opts.viewport()
	bctx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: width, Height: height},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}

	c := newPlaywrightPage(page, logger)
	c.pw = pw
	c.browser = browser
	c.context = bctx
	if opts.DefaultTimeout > 0 {
		page.SetDefaultTimeout(float64(opts.DefaultTimeout.Milliseconds()))
	}
	return c, nil
}

// newPlaywrightPage wraps an existing page; used by the controller and by tests
// that own the browser lifecycle themselves
func newPlaywrightPage(page playwright.Page, logger *logrus.Logger) *playwrightController {
	page.OnDialog(func(dialog playwright.Dialog) {
		logger.Debugf("Accepting %s dialog: %s", dialog.Type(), dialog.Message())
		dialog.Accept()
	})
	return &playwrightController{page: page, logger: logger}
}

func (b *playwrightController) Engine() string { return "playwright" }

// Navigate - navigates to the specified URL
func (b *playwrightController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Locator - returns a lazy element handle for the selector
func (b *playwrightController) Locator(sel entities.Selector) interfaces.Element {
	return &playwrightElement{page: b.page, sel: sel}
}

// Screenshot - captures the page as png
func (b *playwrightController) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(fullPage),
	})
}

// WaitForIdle - waits until there are no network connections for at least 500 ms
func (b *playwrightController) WaitForIdle(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := b.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if errors.Is(err, playwright.ErrTimeout) {
		return &entities.TimeoutError{Selector: "page", State: "network idle", Timeout: timeout, Err: err}
	}
	return err
}

// URL - returns the current page URL
func (b *playwrightController) URL(ctx context.Context) (string, error) {
	return b.page.URL(), ctx.Err()
}

// Title - returns the current page title
func (b *playwrightController) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return b.page.Title()
}

// Reload - refreshes the current page
func (b *playwrightController) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := b.page.Reload()
	return err
}

// Close - closes the page, context, browser and the playwright driver
func (b *playwrightController) Close() error {
	var closeErr error
	record := func(what string, err error) {
		if err == nil || isClosedError(err) {
			return
		}
		if closeErr != nil {
			closeErr = fmt.Errorf("%v; failed to close %s: %w", closeErr, what, err)
		} else {
			closeErr = fmt.Errorf("failed to close %s: %w", what, err)
		}
	}

	if b.page != nil {
		record("page", b.page.Close())
	}
	if b.context != nil {
		record("context", b.context.Close())
		b.context = nil
	}
	if b.browser != nil {
		record("browser", b.browser.Close())
		b.browser = nil
	}
	if b.pw != nil {
		record("playwright", b.pw.Stop())
		b.pw = nil
	}
	return closeErr
}

func isClosedError(err error) bool {
	if errors.Is(err, playwright.ErrTargetClosed) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "closed") || strings.Contains(errStr, "target closed")
}

type playwrightElement struct {
	page playwright.Page
	sel  entities.Selector
}

// locator re-resolves the selector against the current page on every call
func (e *playwrightElement) locator() playwright.Locator {
	return e.page.Locator(e.sel.String())
}

func (e *playwrightElement) Selector() entities.Selector { return e.sel }

// visible matches only the displayed nodes of the selector
func (e *playwrightElement) visible() playwright.Locator {
	return e.page.Locator(e.sel.String() + " >> visible=true")
}

// target is the node actions apply to: the first visible match, or the first
// match when none is visible yet
func (e *playwrightElement) target() (playwright.Locator, error) {
	visible := e.visible()
	n, err := visible.Count()
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return visible.First(), nil
	}
	return e.locator().First(), nil
}

func (e *playwrightElement) WaitVisible(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	// any visible match satisfies the wait, not only the first one in document order
	err := e.visible().First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return timeoutError(e.sel, timeout, err)
	}
	return e.wrap("wait", err)
}

func (e *playwrightElement) Click(ctx context.Context) error {
	return e.act(ctx, "click", func(l playwright.Locator) error { return l.Click() })
}

func (e *playwrightElement) DoubleClick(ctx context.Context) error {
	return e.act(ctx, "dblclick", func(l playwright.Locator) error { return l.Dblclick() })
}

func (e *playwrightElement) Fill(ctx context.Context, text string) error {
	return e.act(ctx, "fill", func(l playwright.Locator) error { return l.Fill(text) })
}

func (e *playwrightElement) ScrollIntoView(ctx context.Context) error {
	return e.act(ctx, "scroll", func(l playwright.Locator) error { return l.ScrollIntoViewIfNeeded() })
}

func (e *playwrightElement) act(ctx context.Context, op string, fn func(playwright.Locator) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := e.target()
	if err != nil {
		return e.wrap(op, err)
	}
	return e.wrap(op, fn(target))
}

func (e *playwrightElement) TextContent(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	target, err := e.target()
	if err != nil {
		return "", false, e.wrap("textContent", err)
	}
	text, err := target.TextContent()
	if err != nil {
		return "", false, e.wrap("textContent", err)
	}
	return text, text != "", nil
}

func (e *playwrightElement) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n, err := e.locator().Count()
	if err != nil {
		return 0, e.wrap("count", err)
	}
	return n, nil
}

func (e *playwrightElement) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, playwright.ErrTimeout) {
		return &entities.TimeoutError{Selector: e.sel.String(), State: "actionable", Err: err}
	}
	return &entities.InteractionError{Op: op, Selector: e.sel.String(), Err: err}
}
