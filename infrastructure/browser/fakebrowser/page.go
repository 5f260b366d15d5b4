// Package fakebrowser is a scripted, in-memory browser engine for tests.
// Waits run on virtual time: an element is visible for a wait when it is not
// hidden and its VisibleAfter delay is shorter than the wait budget.
package fakebrowser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"quote_automation/domain/entities"
	"quote_automation/domain/interfaces"
)

// Node is the scripted state behind one selector
type Node struct {
	Text         string
	Count        int
	Hidden       bool
	VisibleAfter time.Duration
	ClickErr     error
	FillErr      error
	Value        string
	// OnClick runs after a successful click, e.g. to reveal a dropdown
	OnClick func(p *Page)
}

// Page implements interfaces.Page
type Page struct {
	mu            sync.Mutex
	nodes         map[string]*Node
	events        []string
	url           string
	title         string
	screenshots   int
	ScreenshotErr error
	IdleErr       error
	closed        bool
}

var _ interfaces.Page = (*Page)(nil)

// New creates an empty page
func New() *Page {
	return &Page{nodes: make(map[string]*Node), title: "fake"}
}

// Set registers or replaces the node for sel. A zero Count means one match.
func (p *Page) Set(sel entities.Selector, n *Node) *Node {
	p.mu.Lock()
	defer p.mu.Unlock()
	if n.Count == 0 {
		n.Count = 1
	}
	p.nodes[sel.String()] = n
	return n
}

// Node returns the node registered for sel
func (p *Page) Node(sel entities.Selector) (*Node, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n, ok := p.nodes[sel.String()]
	return n, ok
}

// Events returns the recorded operations in call order
func (p *Page) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

// Screenshots returns how many screenshots were taken
func (p *Page) Screenshots() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.screenshots
}

// Closed reports whether Close was called
func (p *Page) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *Page) record(format string, args ...interface{}) {
	p.events = append(p.events, fmt.Sprintf(format, args...))
}

func (p *Page) Engine() string { return "fake" }

func (p *Page) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.url = url
	p.record("navigate %s", url)
	return nil
}

func (p *Page) Locator(sel entities.Selector) interfaces.Element {
	return &element{page: p, sel: sel}
}

func (p *Page) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ScreenshotErr != nil {
		return nil, p.ScreenshotErr
	}
	p.screenshots++
	return []byte("\x89PNG"), nil
}

func (p *Page) WaitForIdle(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("idle")
	return p.IdleErr
}

func (p *Page) URL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url, nil
}

func (p *Page) Title(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.title, nil
}

func (p *Page) Reload(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("reload")
	return nil
}

func (p *Page) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

type element struct {
	page *Page
	sel  entities.Selector
}

var errDetached = errors.New("element is not attached to the DOM")

func (e *element) Selector() entities.Selector { return e.sel }

// lookup re-reads the node on every call; callers hold page.mu
func (e *element) lookup() (*Node, bool) {
	n, ok := e.page.nodes[e.sel.String()]
	return n, ok
}

func (e *element) WaitVisible(ctx context.Context, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.record("wait %s", e.sel)
	n, ok := e.lookup()
	if !ok || n.Hidden || n.VisibleAfter >= timeout {
		return &entities.TimeoutError{Selector: e.sel.String(), State: "visible", Timeout: timeout, Err: entities.ErrTimeout}
	}
	return nil
}

func (e *element) Click(ctx context.Context) error {
	return e.click(ctx, "click")
}

func (e *element) DoubleClick(ctx context.Context) error {
	return e.click(ctx, "dblclick")
}

func (e *element) click(ctx context.Context, op string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	n, ok := e.lookup()
	if !ok {
		e.page.mu.Unlock()
		return &entities.InteractionError{Op: op, Selector: e.sel.String(), Err: errDetached}
	}
	if n.ClickErr != nil {
		e.page.mu.Unlock()
		return &entities.InteractionError{Op: op, Selector: e.sel.String(), Err: n.ClickErr}
	}
	e.page.record("%s %s", op, e.sel)
	hook := n.OnClick
	e.page.mu.Unlock()

	if hook != nil {
		hook(e.page)
	}
	return nil
}

func (e *element) Fill(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	n, ok := e.lookup()
	if !ok {
		return &entities.InteractionError{Op: "fill", Selector: e.sel.String(), Err: errDetached}
	}
	if n.FillErr != nil {
		return &entities.InteractionError{Op: "fill", Selector: e.sel.String(), Err: n.FillErr}
	}
	n.Value = text
	e.page.record("fill %s %s", e.sel, text)
	return nil
}

func (e *element) TextContent(ctx context.Context) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	n, ok := e.lookup()
	if !ok {
		return "", false, &entities.InteractionError{Op: "textContent", Selector: e.sel.String(), Err: errDetached}
	}
	return n.Text, n.Text != "", nil
}

func (e *element) Count(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	n, ok := e.lookup()
	if !ok {
		return 0, nil
	}
	return n.Count, nil
}

func (e *element) ScrollIntoView(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.page.mu.Lock()
	defer e.page.mu.Unlock()
	e.page.record("scroll %s", e.sel)
	return nil
}
