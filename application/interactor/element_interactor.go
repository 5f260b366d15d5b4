package interactor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"

	"github.com/sirupsen/logrus"
)

const (
	DefaultTimeout     = 60 * time.Second
	DefaultDelay       = 2 * time.Second
	DefaultIdleTimeout = 5 * time.Second
)

// Options tunes waits and screenshot labelling
type Options struct {
	DefaultTimeout time.Duration
	DefaultDelay   time.Duration
	IdleTimeout    time.Duration
	Now            func() time.Time
}

func (o Options) withDefaults() Options {
	if o.DefaultTimeout <= 0 {
		o.DefaultTimeout = DefaultTimeout
	}
	if o.DefaultDelay <= 0 {
		o.DefaultDelay = DefaultDelay
	}
	if o.IdleTimeout <= 0 {
		o.IdleTimeout = DefaultIdleTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// ElementInteractor is the single point of contact between flow logic and the
// browser engine. Every operation waits before acting, logs, and mutating
// operations leave a screenshot behind.
type ElementInteractor struct {
	page   interfaces.Page
	store  interfaces.ArtifactStore
	logger *logrus.Logger
	opts   Options
}

// NewElementInteractor - creates an interactor over one page
func NewElementInteractor(page interfaces.Page, store interfaces.ArtifactStore, logger *logrus.Logger, opts Options) *ElementInteractor {
	return &ElementInteractor{
		page:   page,
		store:  store,
		logger: logger,
		opts:   opts.withDefaults(),
	}
}

// Page returns the page this interactor drives
func (u *ElementInteractor) Page() interfaces.Page {
	return u.page
}

// Resolve turns a target into a live element handle. Accepted targets are a
// raw selector string, an entities.Selector or an interfaces.Element, which
// is passed through unchanged. Nothing is cached.
func (u *ElementInteractor) Resolve(target interface{}) (interfaces.Element, error) {
	switch t := target.(type) {
	case interfaces.Element:
		return t, nil
	case entities.Selector:
		if err := t.Validate(); err != nil {
			return nil, fmt.Errorf("invalid selector: %w", err)
		}
		return u.page.Locator(t), nil
	case string:
		sel := entities.ParseSelector(t)
		if err := sel.Validate(); err != nil {
			return nil, fmt.Errorf("invalid selector: %w", err)
		}
		return u.page.Locator(sel), nil
	default:
		return nil, fmt.Errorf("unsupported element target %T", target)
	}
}

// WaitForElement blocks until at least one match is visible. A zero timeout
// uses the default budget.
func (u *ElementInteractor) WaitForElement(ctx context.Context, target interface{}, timeout time.Duration) error {
	el, err := u.Resolve(target)
	if err != nil {
		return err
	}
	return u.waitFor(ctx, el, timeout)
}

func (u *ElementInteractor) waitFor(ctx context.Context, el interfaces.Element, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = u.opts.DefaultTimeout
	}
	u.logger.Infof("Waiting for element: %s", el.Selector())
	if err := el.WaitVisible(ctx, timeout); err != nil {
		return err
	}
	u.logger.Debugf("Element visible: %s", el.Selector())
	return nil
}

// ClickElement waits for visibility, clicks once and captures a screenshot.
// Failures are returned as-is; there is no retry.
func (u *ElementInteractor) ClickElement(ctx context.Context, target interface{}) error {
	el, err := u.Resolve(target)
	if err != nil {
		return err
	}
	u.logger.Infof("Clicking element: %s", el.Selector())
	if err := u.waitFor(ctx, el, 0); err != nil {
		return err
	}
	if err := el.Click(ctx); err != nil {
		return err
	}
	u.capture(ctx, entities.ActionClick, "")
	u.logger.Debugf("Clicked element: %s", el.Selector())
	return nil
}

// SafeClick is ClickElement plus an error log line and a diagnostic
// screenshot on failure. The original error is returned unchanged.
func (u *ElementInteractor) SafeClick(ctx context.Context, target interface{}) error {
	err := u.ClickElement(ctx, target)
	if err == nil {
		return nil
	}
	u.logger.Errorf("Error clicking %s: %v", describe(target), err)
	u.capture(ctx, entities.ActionError, "")
	return err
}

// DoubleClickElement waits, scrolls the element into view and double clicks it
func (u *ElementInteractor) DoubleClickElement(ctx context.Context, target interface{}) error {
	el, err := u.Resolve(target)
	if err != nil {
		return err
	}
	u.logger.Infof("Double clicking element: %s", el.Selector())
	if err := u.waitFor(ctx, el, 0); err != nil {
		return err
	}
	if err := el.ScrollIntoView(ctx); err != nil {
		return err
	}
	if err := el.DoubleClick(ctx); err != nil {
		return err
	}
	u.capture(ctx, entities.ActionDoubleClick, "")
	u.logger.Debugf("Double clicked element: %s", el.Selector())
	return nil
}

// TypeText replaces the element value in one fill, not key by key
func (u *ElementInteractor) TypeText(ctx context.Context, target interface{}, text string) error {
	el, err := u.Resolve(target)
	if err != nil {
		return err
	}
	u.logger.Infof("Typing into %s: %q", el.Selector(), text)
	if err := u.waitFor(ctx, el, 0); err != nil {
		return err
	}
	if err := el.Fill(ctx, text); err != nil {
		return err
	}
	u.capture(ctx, entities.ActionTypeText, text)
	u.logger.Debugf("Typed text into %s", el.Selector())
	return nil
}

// SelectDropdownOption opens the dropdown and clicks the role=option entry
// whose text contains optionText
func (u *ElementInteractor) SelectDropdownOption(ctx context.Context, dropdown interface{}, optionText string) error {
	el, err := u.Resolve(dropdown)
	if err != nil {
		return err
	}
	u.logger.Infof("Selecting %q from dropdown: %s", optionText, el.Selector())
	if err := u.ClickElement(ctx, el); err != nil {
		return err
	}

	option := u.page.Locator(entities.OptionWithText(optionText))
	if err := u.waitFor(ctx, option, 0); err != nil {
		return err
	}
	if err := option.Click(ctx); err != nil {
		return err
	}
	u.capture(ctx, entities.ActionSelect, optionText)
	u.logger.Debugf("Selected option %q", optionText)
	return nil
}

// TakeScreenshot captures the full page as <label>.png. Failures are logged
// and swallowed so evidence capture never fails a flow.
func (u *ElementInteractor) TakeScreenshot(ctx context.Context, label string) {
	png, err := u.page.Screenshot(ctx, true)
	if err != nil {
		u.logger.Warnf("Screenshot %s failed: %v", label, err)
		return
	}
	path, err := u.store.SaveScreenshot(label, png)
	if err != nil {
		u.logger.Warnf("Screenshot %s not saved: %v", label, err)
		return
	}
	u.logger.Infof("Screenshot saved: %s", path)
}

func (u *ElementInteractor) capture(ctx context.Context, action entities.ActionType, detail string) {
	u.TakeScreenshot(ctx, entities.ScreenshotLabel(action, detail, u.opts.Now()))
}

// GetText waits for visibility and returns the trimmed text content, or ""
// when the element has none
func (u *ElementInteractor) GetText(ctx context.Context, target interface{}) (string, error) {
	el, err := u.Resolve(target)
	if err != nil {
		return "", err
	}
	u.logger.Infof("Getting text from: %s", el.Selector())
	if err := u.waitFor(ctx, el, 0); err != nil {
		return "", err
	}
	text, ok, err := el.TextContent(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		text = ""
	}
	text = strings.TrimSpace(text)
	u.logger.Debugf("Text from %s: %q", el.Selector(), text)
	return text, nil
}

// ElementExists reports whether the selector currently matches anything. It
// never waits.
func (u *ElementInteractor) ElementExists(ctx context.Context, target interface{}) (bool, error) {
	el, err := u.Resolve(target)
	if err != nil {
		return false, err
	}
	u.logger.Infof("Checking existence of: %s", el.Selector())
	count, err := el.Count(ctx)
	if err != nil {
		return false, err
	}
	exists := count > 0
	u.logger.Debugf("Element exists: %t", exists)
	return exists, nil
}

// WaitForDefaultDelay is an unconditional pause. Prefer WaitForSettled.
func (u *ElementInteractor) WaitForDefaultDelay(ctx context.Context) error {
	return sleep(ctx, u.opts.DefaultDelay)
}

// WaitForSettled waits for the page network to go idle. The fixed default
// delay is used only when the engine cannot report idleness or idle never
// arrives within the idle budget.
func (u *ElementInteractor) WaitForSettled(ctx context.Context) error {
	err := u.page.WaitForIdle(ctx, u.opts.IdleTimeout)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case errors.Is(err, interfaces.ErrIdleUnsupported):
		return u.WaitForDefaultDelay(ctx)
	default:
		u.logger.Debugf("Network idle not reached (%v), falling back to fixed delay", err)
		return u.WaitForDefaultDelay(ctx)
	}
}

// ExpectElementText asserts the trimmed text contains (or equals) expected
func (u *ElementInteractor) ExpectElementText(ctx context.Context, target interface{}, expected string, contains bool) error {
	el, err := u.Resolve(target)
	if err != nil {
		return err
	}
	if err := u.waitFor(ctx, el, 0); err != nil {
		return err
	}
	text, _, err := el.TextContent(ctx)
	if err != nil {
		return err
	}
	actual := strings.TrimSpace(text)

	if contains {
		if !strings.Contains(actual, expected) {
			return &entities.AssertionError{Selector: el.Selector().String(), Expected: expected, Actual: actual, Contains: true}
		}
		u.logger.Infof("Assertion passed: %q contains %q", actual, expected)
		return nil
	}
	if actual != expected {
		return &entities.AssertionError{Selector: el.Selector().String(), Expected: expected, Actual: actual}
	}
	u.logger.Infof("Assertion passed: %q equals %q", actual, expected)
	return nil
}

func describe(target interface{}) string {
	switch t := target.(type) {
	case interfaces.Element:
		return t.Selector().String()
	case entities.Selector:
		return t.String()
	case string:
		return t
	default:
		return fmt.Sprintf("%T", target)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
