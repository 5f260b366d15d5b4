package interfaces

import (
	"context"
	"errors"
	"time"

	"quote_automation/domain/entities"
)

// ErrIdleUnsupported is returned by engines that cannot report network idleness
var ErrIdleUnsupported = errors.New("engine cannot wait for network idle")

// Page defines the browser engine capability the suite drives
type Page interface {
	// Navigate loads a URL in the current page
	Navigate(ctx context.Context, url string) error

	// Locator returns a lazy handle; nothing is queried until an element method runs
	Locator(selector entities.Selector) Element

	// Screenshot captures the page as PNG bytes
	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)

	// WaitForIdle waits for network idle or returns ErrIdleUnsupported
	WaitForIdle(ctx context.Context, timeout time.Duration) error

	// URL returns the current page URL
	URL(ctx context.Context) (string, error)

	// Title returns the current page title
	Title(ctx context.Context) (string, error)

	// Reload refreshes the current page
	Reload(ctx context.Context) error

	// Engine names the implementation (playwright, selenium, ...)
	Engine() string

	// Close releases the page and the browser behind it
	Close() error
}

// Element is a live reference to zero or more DOM nodes matched by a selector.
// Implementations re-resolve the selector on every call.
type Element interface {
	Selector() entities.Selector

	// WaitVisible blocks until at least one match is visible, failing with
	// *entities.TimeoutError once timeout elapses
	WaitVisible(ctx context.Context, timeout time.Duration) error

	Click(ctx context.Context) error
	DoubleClick(ctx context.Context) error

	// Fill replaces the element value in one step
	Fill(ctx context.Context, text string) error

	// TextContent returns the raw text and whether any content was present
	TextContent(ctx context.Context) (string, bool, error)

	// Count returns the number of current matches without waiting
	Count(ctx context.Context) (int, error)

	ScrollIntoView(ctx context.Context) error
}
