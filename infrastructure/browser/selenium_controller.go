package browser

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
	"github.com/tebeka/selenium"
	"github.com/tebeka/selenium/chrome"
)

type seleniumController struct {
	wd      selenium.WebDriver
	service *selenium.Service
	logger  *logrus.Logger
	slowMo  time.Duration
}

// findChromeDriver - finds ChromeDriver executable path
func findChromeDriver(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit, nil
		}
		return "", fmt.Errorf("chromedriver not found at %s", explicit)
	}

	commonPaths := []string{
		"/usr/local/bin/chromedriver",
		"/usr/bin/chromedriver",
		"/opt/homebrew/bin/chromedriver",
		filepath.Join(os.Getenv("HOME"), "bin", "chromedriver"),
	}

	for _, path := range commonPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	if path, err := exec.LookPath("chromedriver"); err == nil {
		return path, nil
	}

	return "", fmt.Errorf("chromedriver not found. Please install it or set BROWSER_DRIVER_PATH environment variable")
}

// findChromeBinary - finds Chrome/Chromium browser executable path
func findChromeBinary(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
	}

	chromePaths := []string{
		"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
		"/Applications/Chromium.app/Contents/MacOS/Chromium",
		"/usr/bin/google-chrome",
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
	}

	for _, path := range chromePaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	for _, name := range []string{"google-chrome", "chromium", "chromium-browser"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}

// freePort asks the kernel for an unused local port for chromedriver
func freePort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// NewSeleniumController - starts chromedriver and opens a Chrome session
func NewSeleniumController(opts Options, logger *logrus.Logger) (interfaces.Page, error) {
	driverPath, err := findChromeDriver(opts.DriverPath)
	if err != nil {
		return nil, fmt.Errorf("failed to find chromedriver: %w", err)
	}
	logger.Infof("Using ChromeDriver at: %s", driverPath)

	port, err := freePort()
	if err != nil {
		return nil, fmt.Errorf("failed to reserve chromedriver port: %w", err)
	}

	service, err := selenium.NewChromeDriverService(driverPath, port)
	if err != nil {
		return nil, fmt.Errorf("failed to start chromedriver: %w", err)
	}

	width, height := opts.viewport()
	args := []string{
		"--disable-blink-features=AutomationControlled",
		"--disable-dev-shm-usage",
		"--no-sandbox",
		fmt.Sprintf("--window-size=%d,%d", width, height),
	}
	if opts.Headless {
		args = append(args, "--headless=new")
	}

	chromeCaps := chrome.Capabilities{Args: args}
	if chromeBinary := findChromeBinary(opts.ChromeBinary); chromeBinary != "" {
		logger.Infof("Using Chrome binary at: %s", chromeBinary)
		chromeCaps.Path = chromeBinary
	}

	caps := selenium.Capabilities{"browserName": "chrome"}
	caps.AddChrome(chromeCaps)

	wd, err := selenium.NewRemote(caps, fmt.Sprintf("http://localhost:%d/wd/hub", port))
	if err != nil {
		service.Stop()
		if strings.Contains(err.Error(), "cannot find Chrome binary") {
			return nil, fmt.Errorf("failed to create webdriver: Chrome browser not found. Please install Google Chrome or set CHROME_BINARY_PATH environment variable. Error: %w", err)
		}
		return nil, fmt.Errorf("failed to create webdriver: %w", err)
	}

	return &seleniumController{wd: wd, service: service, logger: logger, slowMo: opts.SlowMo}, nil
}

func (s *seleniumController) Engine() string { return "selenium" }

// Navigate - navigates browser to specified URL
func (s *seleniumController) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

// Locator - returns a lazy element handle for the selector
func (s *seleniumController) Locator(sel entities.Selector) interfaces.Element {
	return &seleniumElement{ctrl: s, sel: sel}
}

// Screenshot - captures the viewport; webdriver has no full-page capture
func (s *seleniumController) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if fullPage {
		s.logger.Debug("selenium captures the viewport only; full page screenshot degraded")
	}
	return s.wd.Screenshot()
}

// WaitForIdle - webdriver exposes no network activity signal
func (s *seleniumController) WaitForIdle(ctx context.Context, timeout time.Duration) error {
	return interfaces.ErrIdleUnsupported
}

// URL - returns current page URL
func (s *seleniumController) URL(ctx context.Context) (string, error) {
	return s.wd.CurrentURL()
}

// Title - returns current page title
func (s *seleniumController) Title(ctx context.Context) (string, error) {
	return s.wd.Title()
}

// Reload - refreshes the current page
func (s *seleniumController) Reload(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.wd.Refresh()
}

// Close - closes browser and stops ChromeDriver service
func (s *seleniumController) Close() error {
	var closeErr error
	if s.wd != nil {
		closeErr = s.wd.Quit()
		s.wd = nil
	}
	if s.service != nil {
		if err := s.service.Stop(); err != nil && closeErr == nil {
			closeErr = err
		}
		s.service = nil
	}
	return closeErr
}

type seleniumElement struct {
	ctrl *seleniumController
	sel  entities.Selector
}

func (e *seleniumElement) Selector() entities.Selector { return e.sel }

func (e *seleniumElement) by() string {
	if e.sel.Strategy == entities.StrategyXPath {
		return selenium.ByXPATH
	}
	return selenium.ByCSSSelector
}

// find re-queries the DOM on every call
func (e *seleniumElement) find() ([]selenium.WebElement, error) {
	return e.ctrl.wd.FindElements(e.by(), e.sel.Value)
}

// first returns the first visible match, falling back to the first match
func (e *seleniumElement) first(op string) (selenium.WebElement, error) {
	elements, err := e.find()
	if err != nil {
		return nil, e.wrap(op, err)
	}
	if len(elements) == 0 {
		return nil, e.wrap(op, fmt.Errorf("no element matches"))
	}
	for _, el := range elements {
		if ok, err := el.IsDisplayed(); err == nil && ok {
			return el, nil
		}
	}
	return elements[0], nil
}

func (e *seleniumElement) WaitVisible(ctx context.Context, timeout time.Duration) error {
	err := pollUntil(ctx, timeout, defaultPollInterval, func() (bool, error) {
		elements, err := e.find()
		if err != nil {
			// an invalid selector never becomes valid
			if strings.Contains(err.Error(), "invalid selector") {
				return false, err
			}
			return false, nil
		}
		for _, el := range elements {
			if ok, err := el.IsDisplayed(); err == nil && ok {
				return true, nil
			}
		}
		return false, nil
	})
	switch {
	case err == nil:
		return nil
	case errors.Is(err, entities.ErrTimeout):
		return timeoutError(e.sel, timeout, err)
	case ctx.Err() != nil:
		return err
	default:
		return e.wrap("wait", err)
	}
}

func (e *seleniumElement) Click(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := e.first("click")
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return e.wrap("click", err)
	}
	return e.pace(ctx)
}

// DoubleClick clicks natively, then dispatches dblclick from the page;
// webdriver's legacy doubleclick endpoint is rejected in W3C mode
func (e *seleniumElement) DoubleClick(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := e.first("dblclick")
	if err != nil {
		return err
	}
	if err := el.Click(); err != nil {
		return e.wrap("dblclick", err)
	}
	script := `arguments[0].dispatchEvent(new MouseEvent('dblclick', { bubbles: true, cancelable: true, view: window })); return true;`
	if _, err := e.ctrl.wd.ExecuteScript(script, []interface{}{el}); err != nil {
		return e.wrap("dblclick", err)
	}
	return e.pace(ctx)
}

func (e *seleniumElement) Fill(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := e.first("fill")
	if err != nil {
		return err
	}
	if err := el.Clear(); err != nil {
		return e.wrap("fill", err)
	}
	if err := el.SendKeys(text); err != nil {
		return e.wrap("fill", err)
	}
	return e.pace(ctx)
}

// pace emulates playwright's slowMo after input actions
func (e *seleniumElement) pace(ctx context.Context) error {
	return sleepCtx(ctx, e.ctrl.slowMo)
}

func (e *seleniumElement) TextContent(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	el, err := e.first("textContent")
	if err != nil {
		return "", false, err
	}
	// Text() returns rendered text only; textContent keeps hidden descendants
	raw, err := e.ctrl.wd.ExecuteScript("return arguments[0].textContent;", []interface{}{el})
	if err != nil {
		return "", false, e.wrap("textContent", err)
	}
	text, ok := raw.(string)
	if !ok {
		return "", false, nil
	}
	return text, text != "", nil
}

func (e *seleniumElement) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	elements, err := e.find()
	if err != nil {
		return 0, e.wrap("count", err)
	}
	return len(elements), nil
}

func (e *seleniumElement) ScrollIntoView(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := e.first("scroll")
	if err != nil {
		return err
	}
	script := `arguments[0].scrollIntoView({ behavior: 'instant', block: 'center' }); return true;`
	_, err = e.ctrl.wd.ExecuteScript(script, []interface{}{el})
	return e.wrap("scroll", err)
}

func (e *seleniumElement) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &entities.InteractionError{Op: op, Selector: e.sel.String(), Err: err}
}
